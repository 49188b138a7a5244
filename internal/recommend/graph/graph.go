// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package graph

import (
	"errors"
	"fmt"
)

// NodeType identifies one of the three entity index spaces.
type NodeType int

const (
	NodeUser NodeType = iota
	NodeRecipe
	NodeIngredient
)

// String returns the node type name.
func (t NodeType) String() string {
	switch t {
	case NodeUser:
		return "user"
	case NodeRecipe:
		return "recipe"
	case NodeIngredient:
		return "ingredient"
	default:
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
}

// ErrMissingTable is returned when a required input table is absent.
var ErrMissingTable = errors.New("graph: required table missing")

// ErrIndexOutOfRange is returned when a snapshot references an invalid node.
var ErrIndexOutOfRange = errors.New("graph: edge index out of range")

// EdgeSet holds the edges of one relation as parallel index arrays.
// Weight is nil for unweighted relations.
type EdgeSet struct {
	Src    []int32
	Dst    []int32
	Weight []float64
}

// Len returns the number of edges.
func (e *EdgeSet) Len() int {
	return len(e.Src)
}

// Adjacency is a compressed sparse row neighbor list: the neighbors of node
// i are Idx[Ptr[i]:Ptr[i+1]].
type Adjacency struct {
	Ptr []int32
	Idx []int32
}

// Neighbors returns the neighbor indices of node i.
func (a *Adjacency) Neighbors(i int) []int32 {
	return a.Idx[a.Ptr[i]:a.Ptr[i+1]]
}

// Degree returns the number of neighbors of node i.
func (a *Adjacency) Degree(i int) int {
	return int(a.Ptr[i+1] - a.Ptr[i])
}

// NumNodes returns the number of rows.
func (a *Adjacency) NumNodes() int {
	return len(a.Ptr) - 1
}

// incoming groups edges by destination. When reverse is set the roles of
// Src and Dst are swapped. Duplicate edges are kept.
func incoming(e *EdgeSet, numDst int, reverse bool) Adjacency {
	src, dst := e.Src, e.Dst
	if reverse {
		src, dst = dst, src
	}
	ptr := make([]int32, numDst+1)
	for _, d := range dst {
		ptr[d+1]++
	}
	for i := 1; i <= numDst; i++ {
		ptr[i] += ptr[i-1]
	}
	fill := make([]int32, numDst)
	idx := make([]int32, len(src))
	for k, d := range dst {
		idx[ptr[d]+fill[d]] = src[k]
		fill[d]++
	}
	return Adjacency{Ptr: ptr, Idx: idx}
}

// BuildStats reports what construction kept and dropped.
type BuildStats struct {
	Interactions        int `json:"interactions"`
	DroppedInteractions int `json:"dropped_interactions"`
	DefaultedRatings    int `json:"defaulted_ratings"`
	ContainsEdges       int `json:"contains_edges"`
	RecipesNoIngredient int `json:"recipes_without_ingredients"`
}

// Graph is an immutable typed multigraph over users, recipes and ingredients.
type Graph struct {
	Users       *Mapping
	Recipes     *Mapping
	Ingredients *Vocabulary

	// Interacts holds user -> recipe edges weighted by rating.
	Interacts EdgeSet

	// Contains holds recipe -> ingredient edges.
	Contains EdgeSet

	Stats BuildStats

	userRecipes       Adjacency // per user, interacted recipes
	recipeUsers       Adjacency // per recipe, interacting users
	recipeIngredients Adjacency // per recipe, contained ingredients
	ingredientRecipes Adjacency // per ingredient, containing recipes
}

// NumUsers returns the size of the user index space.
func (g *Graph) NumUsers() int { return g.Users.Len() }

// NumRecipes returns the size of the recipe index space.
func (g *Graph) NumRecipes() int { return g.Recipes.Len() }

// NumIngredients returns the size of the ingredient index space.
func (g *Graph) NumIngredients() int { return g.Ingredients.Len() }

// NumNodes returns the total number of nodes across all types.
func (g *Graph) NumNodes() int {
	return g.NumUsers() + g.NumRecipes() + g.NumIngredients()
}

// Offset returns the start of t's range in the flat global index space.
func (g *Graph) Offset(t NodeType) int {
	switch t {
	case NodeRecipe:
		return g.NumUsers()
	case NodeIngredient:
		return g.NumUsers() + g.NumRecipes()
	default:
		return 0
	}
}

// Size returns the number of nodes of type t.
func (g *Graph) Size(t NodeType) int {
	switch t {
	case NodeUser:
		return g.NumUsers()
	case NodeRecipe:
		return g.NumRecipes()
	case NodeIngredient:
		return g.NumIngredients()
	default:
		return 0
	}
}

// UserRecipes returns per-user interacted recipe indices.
func (g *Graph) UserRecipes() *Adjacency { return &g.userRecipes }

// RecipeUsers returns per-recipe interacting user indices.
func (g *Graph) RecipeUsers() *Adjacency { return &g.recipeUsers }

// RecipeIngredients returns per-recipe ingredient indices.
func (g *Graph) RecipeIngredients() *Adjacency { return &g.recipeIngredients }

// IngredientRecipes returns per-ingredient recipe indices.
func (g *Graph) IngredientRecipes() *Adjacency { return &g.ingredientRecipes }

// GlobalEdges returns both relations as one flat 2 x E edge index with
// recipe and ingredient indices offset into disjoint ranges. Interaction
// edges come first.
func (g *Graph) GlobalEdges() (src, dst []int32) {
	n := g.Interacts.Len() + g.Contains.Len()
	src = make([]int32, 0, n)
	dst = make([]int32, 0, n)
	recipeOff := int32(g.Offset(NodeRecipe))
	ingOff := int32(g.Offset(NodeIngredient))
	for k := range g.Interacts.Src {
		src = append(src, g.Interacts.Src[k])
		dst = append(dst, g.Interacts.Dst[k]+recipeOff)
	}
	for k := range g.Contains.Src {
		src = append(src, g.Contains.Src[k]+recipeOff)
		dst = append(dst, g.Contains.Dst[k]+ingOff)
	}
	return src, dst
}

// Validate checks that every edge endpoint lies inside its node range.
func (g *Graph) Validate() error {
	if err := checkRange(&g.Interacts, g.NumUsers(), g.NumRecipes(), "interacts"); err != nil {
		return err
	}
	if g.Interacts.Weight != nil && len(g.Interacts.Weight) != g.Interacts.Len() {
		return fmt.Errorf("interacts: %d weights for %d edges", len(g.Interacts.Weight), g.Interacts.Len())
	}
	return checkRange(&g.Contains, g.NumRecipes(), g.NumIngredients(), "contains")
}

func checkRange(e *EdgeSet, nSrc, nDst int, name string) error {
	if len(e.Src) != len(e.Dst) {
		return fmt.Errorf("%s: src/dst length mismatch %d != %d", name, len(e.Src), len(e.Dst))
	}
	for k := range e.Src {
		if e.Src[k] < 0 || int(e.Src[k]) >= nSrc || e.Dst[k] < 0 || int(e.Dst[k]) >= nDst {
			return fmt.Errorf("%s edge %d (%d -> %d): %w", name, k, e.Src[k], e.Dst[k], ErrIndexOutOfRange)
		}
	}
	return nil
}

// index builds the adjacency lists once edges are final.
func (g *Graph) index() {
	g.userRecipes = incoming(&g.Interacts, g.NumUsers(), true)
	g.recipeUsers = incoming(&g.Interacts, g.NumRecipes(), false)
	g.recipeIngredients = incoming(&g.Contains, g.NumRecipes(), true)
	g.ingredientRecipes = incoming(&g.Contains, g.NumIngredients(), false)
}
