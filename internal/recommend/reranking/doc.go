// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

// Package reranking implements the contextual re-ranker.
//
// Re-ranking is applied after the base affinity ranking when a request
// carries live context:
//
//	Model -> base scores -> top N candidates -> Reranker -> top K
//	                        (N = multiplier x K)
//
// # Context Features
//
// Encoder turns a (request, recipe) pair into a fixed-length vector:
//
//	[0] coverage       matched / recipe ingredients (0 if none)
//	[1] missing ratio  unmatched / max(recipe ingredients, 1)
//	[2] overlap ratio  matched / max(available ingredients, 1)
//	[3] time ratio     prep / max_time (1 if max_time <= 0, 0 if absent)
//	[4] feasible       1 if prep <= max_time or max_time absent
//	[5] prep hours     prep / 60
//	[6:] dietary flags one per requested preference, or four zeros
//
// The vector is zero-padded or truncated to the configured dimension.
// Encoding is a pure function of its inputs.
//
// # Network
//
// Reranker is a feed-forward network over [base score, context]: one
// affine layer, ReLU and dropout per hidden width, then a single-output
// affine layer with no output activation.
//
// # Failure Handling
//
// Apply reports an error instead of returning a partial ordering when the
// network output is not finite. Callers keep the base ordering in that case.
package reranking
