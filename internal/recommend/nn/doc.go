// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

// Package nn provides the small dense-math toolkit shared by the embedding
// propagation model and the contextual re-ranker: row-major matrices, affine
// layers with explicit backward passes, activations, dropout, the logistic
// loss and an AdamW optimizer.
//
// Everything operates on float64 and is single-threaded. Callers own
// concurrency: a Param set is mutated only by the goroutine that trains it,
// and read-only inference may share parameters freely.
package nn
