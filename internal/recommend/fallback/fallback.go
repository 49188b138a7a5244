// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

// Package fallback implements the heuristic recipe scorer used when the
// embedding model cannot serve a request.
//
// With available ingredients the score of a recipe is
//
//	coverage_weight   * used / available
//	+ match_weight    * used / recipe ingredients
//	+ popularity_weight * mean rating / max mean rating among candidates
//	+ completeness_bonus if every recipe ingredient is available
//
// clamped to [0, 1]. Only recipes using at least one available ingredient
// with a match ratio of at least min_match_ratio are candidates. Without
// ingredients the score is normalized popularity alone.
package fallback

import (
	"github.com/tomtom215/saveeat/internal/recommend"
)

// Scorer computes heuristic scores.
type Scorer struct {
	cfg recommend.FallbackConfig
}

// New creates a scorer with the given weights.
func New(cfg recommend.FallbackConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// MeanRatings returns the mean explicit rating of every rated recipe.
func MeanRatings(interactions []recommend.Interaction) map[int64]float64 {
	sum := make(map[int64]float64)
	count := make(map[int64]int)
	for i := range interactions {
		if r := interactions[i].Rating; r != nil {
			sum[interactions[i].RecipeID] += *r
			count[interactions[i].RecipeID]++
		}
	}
	means := make(map[int64]float64, len(sum))
	for id, s := range sum {
		means[id] = s / float64(count[id])
	}
	return means
}

// Score returns the qualifying candidates among recipes, ordered by
// descending score then ascending recipe ID. maxTime, when non-nil and
// positive, drops recipes whose known prep time exceeds it.
func (s *Scorer) Score(recipes []*recommend.Recipe, popularity map[int64]float64, available []string, maxTime *int) []recommend.Candidate {
	avail := recommend.IngredientSet(available)
	candidates := make([]recommend.Candidate, 0, len(recipes))

	for _, r := range recipes {
		if maxTime != nil && *maxTime > 0 && r.PrepTimeMinutes != nil && *r.PrepTimeMinutes > *maxTime {
			continue
		}
		c := recommend.Candidate{Recipe: r}
		if len(avail) > 0 {
			m := recommend.MatchIngredients(r.Ingredients, avail)
			if m.Used == 0 || m.Ratio() < s.cfg.MinMatchRatio {
				continue
			}
			c.Match = &m
		}
		candidates = append(candidates, c)
	}

	maxPop := 0.0
	for i := range candidates {
		maxPop = max(maxPop, popularity[candidates[i].Recipe.ID])
	}
	if maxPop <= 0 {
		maxPop = s.cfg.DefaultPopularityMax
	}

	for i := range candidates {
		c := &candidates[i]
		pop := popularity[c.Recipe.ID] / maxPop
		if c.Match == nil {
			c.Score = recommend.Clamp01(pop)
			continue
		}
		score := s.cfg.CoverageWeight*float64(c.Match.Used)/float64(c.Match.AvailableTotal) +
			s.cfg.MatchWeight*c.Match.Ratio() +
			s.cfg.PopularityWeight*pop
		if c.Match.Complete() {
			score += s.cfg.CompletenessBonus
		}
		c.Score = recommend.Clamp01(score)
	}

	recommend.SortCandidates(candidates)
	return candidates
}
