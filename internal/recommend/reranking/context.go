// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package reranking

import (
	"github.com/tomtom215/saveeat/internal/recommend"
)

// DefaultPrepTime is assumed for recipes without a known prep time.
const DefaultPrepTime = 30

// emptyDietarySlots is the number of zero slots written when no dietary
// preference is given.
const emptyDietarySlots = 4

// RequestContext is the live situation of one recommendation request.
type RequestContext struct {
	// Available is the normalized available ingredient set.
	Available map[string]struct{}

	// MaxTime is the time budget in minutes, nil when absent.
	MaxTime *int

	// Dietary lists requested dietary preference tags.
	Dietary []string
}

// NewRequestContext builds the context of a request.
func NewRequestContext(req *recommend.Request) RequestContext {
	return RequestContext{
		Available: recommend.IngredientSet(req.AvailableIngredients),
		MaxTime:   req.MaxTime,
		Dietary:   req.DietaryPreferences,
	}
}

// Encoder builds context vectors of a fixed dimension.
type Encoder struct {
	Dim int
}

// NewEncoder creates an encoder producing vectors of length dim.
func NewEncoder(dim int) Encoder {
	return Encoder{Dim: dim}
}

// Encode returns the context vector of recipe under rc.
func (e Encoder) Encode(rc RequestContext, recipe *recommend.Recipe) []float64 {
	features := make([]float64, 0, max(e.Dim, 6+len(rc.Dietary)))

	m := recommend.MatchIngredients(recipe.Ingredients, rc.Available)
	denomRecipe := float64(max(m.RecipeTotal, 1))
	features = append(features,
		m.Ratio(),
		float64(m.RecipeTotal-m.Used)/denomRecipe,
		float64(m.Used)/float64(max(len(rc.Available), 1)),
	)

	prep := float64(DefaultPrepTime)
	if recipe.PrepTimeMinutes != nil {
		prep = float64(*recipe.PrepTimeMinutes)
	}
	if rc.MaxTime != nil {
		budget := float64(*rc.MaxTime)
		ratio := 1.0
		if budget > 0 {
			ratio = prep / budget
		}
		feasible := 0.0
		if prep <= budget {
			feasible = 1
		}
		features = append(features, ratio, feasible, prep/60)
	} else {
		features = append(features, 0, 1, prep/60)
	}

	if len(rc.Dietary) > 0 {
		for range rc.Dietary {
			features = append(features, 1)
		}
	} else {
		features = append(features, make([]float64, emptyDietarySlots)...)
	}

	if len(features) > e.Dim {
		return features[:e.Dim]
	}
	return append(features, make([]float64, e.Dim-len(features))...)
}
