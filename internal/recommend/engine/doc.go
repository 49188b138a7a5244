// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

// Package engine serves recommendations from an immutable serving bundle.
//
// A Bundle holds everything a request needs: final user and recipe
// embeddings computed once in eval mode, the graph mappings, the optional
// re-ranker, and a catalogue snapshot with mean ratings. Bundles are built
// off the request path and published with Engine.Swap; readers always see
// either the old or the new bundle in full.
//
// # Dispatch
//
// Each request is routed by an explicit capability check:
//
//	if bundle.IsUsable(userID) -> model path (under a circuit breaker)
//	else                       -> fallback path
//
// The model path ranks the catalogue by affinity, applies the constraint
// pipeline, re-ranks a candidate pool when the request carries context,
// and maps scores through the logistic function. The fallback path scores
// by ingredient match and popularity. Both paths produce explanations.
//
// A model path that errors, trips the breaker, or yields no candidates
// degrades to the fallback path; nothing on either path surfaces a
// non-finite score.
package engine
