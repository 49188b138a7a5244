// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

// Package recommend defines the shared vocabulary of the recipe
// recommendation engine: typed recipe, interaction and profile records,
// the request/response contract of Recommend, and the hyperparameter
// configuration consumed by the subpackages.
//
// # Architecture
//
// The engine is split into leaf packages that only depend on this one:
//
//   - graph: builds the user/recipe/ingredient graph and id mappings
//   - model: embedding tables plus message-passing propagation
//   - training: negative-sampling training loop with early stopping
//   - evaluation: NDCG@k, Recall@k and MRR
//   - reranking: context encoder and feed-forward contextual re-ranker
//   - fallback: ingredient-match and popularity heuristic scorer
//   - constraints: allergy, diet, nutrition, dislike and prep-time filters
//   - storage: versioned checkpoint bundles
//
// The engine package composes them behind an atomically swapped serving
// bundle and dispatches each request either to the model path or to the
// fallback path after an explicit capability check.
//
// # Determinism
//
// All randomness is drawn from seeded sources. Identical requests against
// the same bundle produce identical ordered output; ties are broken by
// ascending recipe ID.
package recommend
