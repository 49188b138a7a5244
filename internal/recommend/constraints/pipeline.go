// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package constraints

import (
	"github.com/rs/zerolog"

	"github.com/tomtom215/saveeat/internal/recommend"
)

// Stage names, in pipeline order.
const (
	StageAllergies = "allergies"
	StageDiet      = "dietary_restrictions"
	StageNutrition = "nutrition"
	StageDislikes  = "disliked_ingredients"
	StagePrepTime  = "max_prep_time"
)

// Stages lists the stage names in the order they run.
var Stages = []string{StageAllergies, StageDiet, StageNutrition, StageDislikes, StagePrepTime}

// Constraints is the effective constraint set of one request: the stored
// profile merged with request-level dietary preferences.
type Constraints struct {
	Allergies   []string
	Diets       []string
	Dislikes    []string
	MaxCalories *float64
	MinProtein  *float64
	MaxCarbs    *float64
	MaxFat      *float64
	MaxPrepTime *int
}

// FromProfile builds constraints from an optional profile and extra diet
// tags. A nil profile contributes nothing.
func FromProfile(p *recommend.Profile, extraDiets []string) Constraints {
	var c Constraints
	if p != nil {
		c = Constraints{
			Allergies:   p.Allergies,
			Diets:       append([]string(nil), p.DietaryRestrictions...),
			Dislikes:    p.DislikedIngredients,
			MaxCalories: p.MaxCalories,
			MinProtein:  p.MinProtein,
			MaxCarbs:    p.MaxCarbs,
			MaxFat:      p.MaxFat,
			MaxPrepTime: p.MaxPrepTime,
		}
	}
	seen := make(map[string]struct{}, len(c.Diets)+len(extraDiets))
	var diets []string
	for _, tag := range append(c.Diets, extraDiets...) {
		n := NormalizeTag(tag)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		diets = append(diets, n)
	}
	c.Diets = diets
	return c
}

// Empty reports whether no constraint is set.
func (c *Constraints) Empty() bool {
	return len(c.Allergies) == 0 && len(c.Diets) == 0 && len(c.Dislikes) == 0 &&
		c.MaxCalories == nil && c.MinProtein == nil && c.MaxCarbs == nil && c.MaxFat == nil &&
		c.MaxPrepTime == nil
}

// Result is the outcome of running the pipeline.
type Result struct {
	Candidates []recommend.Candidate

	// Relaxed lists stages that were skipped because they emptied the set.
	Relaxed []string

	// Removed counts candidates removed per applied stage.
	Removed map[string]int

	// AllergyExhausted is set when allergy filtering removed every candidate.
	AllergyExhausted bool
}

// Pipeline applies constraint stages in order.
type Pipeline struct {
	diets  map[string]Diet
	logger zerolog.Logger

	// OnRelax, when set, is called with the name of each relaxed stage.
	OnRelax func(stage string)
}

// NewPipeline creates a pipeline with the built-in diet catalog.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewPipeline(logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		diets:  DefaultDiets(),
		logger: logger.With().Str("component", "constraints").Logger(),
	}
}

type stage struct {
	name   string
	safety bool
	active bool
	keep   func(r *recommend.Recipe) bool
}

// Apply filters candidates, preserving their order.
func (p *Pipeline) Apply(candidates []recommend.Candidate, c Constraints) Result {
	res := Result{Candidates: candidates, Removed: make(map[string]int)}
	if c.Empty() || len(candidates) == 0 {
		return res
	}

	diets := p.resolveDiets(c.Diets)
	stages := []stage{
		{
			name: StageAllergies, safety: true, active: len(c.Allergies) > 0,
			keep: func(r *recommend.Recipe) bool {
				_, hit := recommend.ContainsAny(r.Ingredients, c.Allergies)
				return !hit
			},
		},
		{
			name: StageDiet, active: len(diets) > 0,
			keep: func(r *recommend.Recipe) bool {
				for i := range diets {
					for _, ing := range r.Ingredients {
						if _, bad := diets[i].Violates(ing); bad {
							return false
						}
					}
				}
				return true
			},
		},
		{
			name:   StageNutrition,
			active: c.MaxCalories != nil || c.MinProtein != nil || c.MaxCarbs != nil || c.MaxFat != nil,
			keep: func(r *recommend.Recipe) bool {
				n := r.Nutrition
				return !exceeds(n.Calories, c.MaxCalories) && !below(n.Protein, c.MinProtein) &&
					!exceeds(n.Carbohydrates, c.MaxCarbs) && !exceeds(n.Fat, c.MaxFat)
			},
		},
		{
			name: StageDislikes, active: len(c.Dislikes) > 0,
			keep: func(r *recommend.Recipe) bool {
				_, hit := recommend.ContainsAny(r.Ingredients, c.Dislikes)
				return !hit
			},
		},
		{
			name: StagePrepTime, active: c.MaxPrepTime != nil,
			keep: func(r *recommend.Recipe) bool {
				return r.PrepTimeMinutes == nil || *r.PrepTimeMinutes <= *c.MaxPrepTime
			},
		},
	}

	current := candidates
	for _, st := range stages {
		if !st.active || len(current) == 0 {
			continue
		}
		kept := make([]recommend.Candidate, 0, len(current))
		for i := range current {
			if st.keep(current[i].Recipe) {
				kept = append(kept, current[i])
			}
		}

		if len(kept) == 0 {
			if st.safety {
				res.AllergyExhausted = true
				res.Removed[st.name] = len(current)
				p.logger.Warn().Int("candidates", len(current)).Msg("Allergy filter removed every candidate; returning no results")
				current = kept
				break
			}
			res.Relaxed = append(res.Relaxed, st.name)
			p.logger.Warn().Str("stage", st.name).Int("candidates", len(current)).Msg("Constraint stage relaxed: it would remove every candidate")
			if p.OnRelax != nil {
				p.OnRelax(st.name)
			}
			continue
		}
		res.Removed[st.name] = len(current) - len(kept)
		current = kept
	}
	res.Candidates = current
	return res
}

// resolveDiets maps tags to catalog diets, skipping unknown tags.
func (p *Pipeline) resolveDiets(tags []string) []Diet {
	var out []Diet
	for _, tag := range tags {
		d, ok := p.diets[tag]
		if !ok {
			p.logger.Warn().Str("diet", tag).Msg("Ignoring unknown dietary restriction")
			continue
		}
		out = append(out, d)
	}
	return out
}

// exceeds reports whether a known value is above a set upper bound.
func exceeds(v, bound *float64) bool {
	return v != nil && bound != nil && *v > *bound
}

// below reports whether a known value is under a set lower bound.
func below(v, bound *float64) bool {
	return v != nil && bound != nil && *v < *bound
}
