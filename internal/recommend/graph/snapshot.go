// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package graph

import (
	"fmt"
	"slices"
)

// Snapshot is the serializable form of a Graph. Mappings are stored in
// index order so a restored graph addresses exactly the same nodes.
type Snapshot struct {
	UserIDs     []int64
	RecipeIDs   []int64
	Ingredients []string
	InteractSrc []int32
	InteractDst []int32
	InteractWt  []float64
	ContainsSrc []int32
	ContainsDst []int32
	Stats       BuildStats
}

// Snapshot returns a copy of the graph suitable for encoding.
func (g *Graph) Snapshot() *Snapshot {
	return &Snapshot{
		UserIDs:     g.Users.IDs(),
		RecipeIDs:   g.Recipes.IDs(),
		Ingredients: g.Ingredients.Tokens(),
		InteractSrc: slices.Clone(g.Interacts.Src),
		InteractDst: slices.Clone(g.Interacts.Dst),
		InteractWt:  slices.Clone(g.Interacts.Weight),
		ContainsSrc: slices.Clone(g.Contains.Src),
		ContainsDst: slices.Clone(g.Contains.Dst),
		Stats:       g.Stats,
	}
}

// FromSnapshot restores a graph and validates every edge endpoint.
func FromSnapshot(s *Snapshot) (*Graph, error) {
	users, err := mappingFromOrdered(s.UserIDs)
	if err != nil {
		return nil, fmt.Errorf("users: %w", err)
	}
	recipes, err := mappingFromOrdered(s.RecipeIDs)
	if err != nil {
		return nil, fmt.Errorf("recipes: %w", err)
	}
	vocab := NewVocabulary(s.Ingredients)
	if vocab.Len() != len(s.Ingredients) || !slices.Equal(vocab.tokens, s.Ingredients) {
		return nil, fmt.Errorf("ingredient vocabulary is not sorted and unique")
	}

	g := &Graph{
		Users:       users,
		Recipes:     recipes,
		Ingredients: vocab,
		Interacts: EdgeSet{
			Src:    slices.Clone(s.InteractSrc),
			Dst:    slices.Clone(s.InteractDst),
			Weight: slices.Clone(s.InteractWt),
		},
		Contains: EdgeSet{
			Src: slices.Clone(s.ContainsSrc),
			Dst: slices.Clone(s.ContainsDst),
		},
		Stats: s.Stats,
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	g.index()
	return g, nil
}
