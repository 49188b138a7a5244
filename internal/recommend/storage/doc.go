// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

// Package storage persists trained recommendation checkpoints.
//
// A checkpoint bundles everything needed to serve or resume a model:
// the model configuration, named parameter tensors, optional re-ranker
// parameters, a graph snapshot with the id-to-index mappings, and run
// metadata (epoch, validation loss, evaluation metrics).
//
// # Storage Format
//
// Each checkpoint is one file named model_v{version}.gob.gz. The file is a
// gob-encoded header carrying the format version and metadata, followed by
// the gzip-compressed gob payload. The header records the SHA-256 checksum
// of the uncompressed payload; loading verifies it and rejects unknown
// format versions.
//
// Files are written to a temporary name and renamed into place, so a
// reader polling the directory never observes a partial checkpoint.
//
// # Thread Safety
//
// Store methods are safe for concurrent use within one process.
package storage
