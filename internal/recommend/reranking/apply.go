// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package reranking

import (
	"slices"

	"github.com/tomtom215/saveeat/internal/recommend"
)

// PoolSize returns how many base-ranked candidates feed a re-rank to topK.
func PoolSize(topK, multiplier int) int {
	return topK * max(multiplier, 1)
}

// Apply re-scores candidates, which must already be the base-ranked pool,
// and returns the best topK ordered by adjusted score with ties broken by
// ascending recipe ID. On error the candidates are left untouched.
func Apply(r *Reranker, enc Encoder, rc RequestContext, candidates []recommend.Candidate, topK int) ([]recommend.Candidate, error) {
	if len(candidates) == 0 {
		return candidates, nil
	}
	base := make([]float64, len(candidates))
	contexts := make([][]float64, len(candidates))
	for i := range candidates {
		base[i] = candidates[i].Score
		contexts[i] = enc.Encode(rc, candidates[i].Recipe)
	}
	adjusted, err := r.Score(base, contexts)
	if err != nil {
		return nil, err
	}

	out := slices.Clone(candidates)
	for i := range out {
		out[i].Score = adjusted[i]
	}
	recommend.SortCandidates(out)
	return recommend.TopK(out, topK), nil
}
