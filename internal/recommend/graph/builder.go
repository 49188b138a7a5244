// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package graph

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/saveeat/internal/recommend"
)

// Options controls graph construction.
type Options struct {
	// DefaultRating weights interactions without a rating.
	// Default: recommend.DefaultRating
	DefaultRating float64

	// Logger receives warnings about dropped edges.
	Logger zerolog.Logger
}

// Build constructs a graph from interaction and recipe tables.
//
// Users are the sorted unique user ids of interactions; recipes are the
// sorted unique ids of the recipe table. Interactions referencing a recipe
// outside the recipe table are dropped. A nil table is a structural error;
// an empty table yields an empty node set.
//
//nolint:gocritic // Options carries a zerolog.Logger, which is designed to be passed by value
func Build(interactions []recommend.Interaction, recipes []recommend.Recipe, opts Options) (*Graph, error) {
	if interactions == nil {
		return nil, fmt.Errorf("interactions: %w", ErrMissingTable)
	}
	if recipes == nil {
		return nil, fmt.Errorf("recipes: %w", ErrMissingTable)
	}
	if opts.DefaultRating == 0 {
		opts.DefaultRating = recommend.DefaultRating
	}

	userIDs := make([]int64, 0, len(interactions))
	for i := range interactions {
		userIDs = append(userIDs, interactions[i].UserID)
	}
	recipeIDs := make([]int64, 0, len(recipes))
	for i := range recipes {
		recipeIDs = append(recipeIDs, recipes[i].ID)
	}

	g := &Graph{
		Users:   NewMapping(userIDs),
		Recipes: NewMapping(recipeIDs),
	}

	// Vocabulary from every recipe, including recipes no interaction touches.
	var tokens []string
	for i := range recipes {
		for _, raw := range recipes[i].Ingredients {
			if tok := recommend.NormalizeIngredient(raw); tok != "" {
				tokens = append(tokens, tok)
			}
		}
	}
	g.Ingredients = NewVocabulary(tokens)

	g.Interacts = EdgeSet{
		Src:    make([]int32, 0, len(interactions)),
		Dst:    make([]int32, 0, len(interactions)),
		Weight: make([]float64, 0, len(interactions)),
	}
	for i := range interactions {
		it := &interactions[i]
		u, okU := g.Users.Index(it.UserID)
		r, okR := g.Recipes.Index(it.RecipeID)
		if !okU || !okR {
			g.Stats.DroppedInteractions++
			continue
		}
		if it.Rating == nil {
			g.Stats.DefaultedRatings++
		}
		g.Interacts.Src = append(g.Interacts.Src, int32(u))
		g.Interacts.Dst = append(g.Interacts.Dst, int32(r))
		g.Interacts.Weight = append(g.Interacts.Weight, it.RatingOr(opts.DefaultRating))
	}
	g.Stats.Interactions = g.Interacts.Len()

	for i := range recipes {
		r, _ := g.Recipes.Index(recipes[i].ID)
		seen := make(map[int]struct{}, len(recipes[i].Ingredients))
		for _, raw := range recipes[i].Ingredients {
			tok := recommend.NormalizeIngredient(raw)
			if tok == "" {
				continue
			}
			ing, _ := g.Ingredients.Index(tok)
			if _, dup := seen[ing]; dup {
				continue
			}
			seen[ing] = struct{}{}
			g.Contains.Src = append(g.Contains.Src, int32(r))
			g.Contains.Dst = append(g.Contains.Dst, int32(ing))
		}
		if len(seen) == 0 {
			g.Stats.RecipesNoIngredient++
		}
	}
	g.Stats.ContainsEdges = g.Contains.Len()

	if g.Stats.DroppedInteractions > 0 {
		opts.Logger.Warn().
			Int("dropped", g.Stats.DroppedInteractions).
			Int("kept", g.Stats.Interactions).
			Msg("Dropped interactions referencing unmapped recipes")
	}

	g.index()
	return g, nil
}
