// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package model

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/tomtom215/saveeat/internal/recommend"
	"github.com/tomtom215/saveeat/internal/recommend/graph"
	"github.com/tomtom215/saveeat/internal/recommend/nn"
)

// ErrShapeMismatch is returned when a graph or input does not match the
// model's entity counts or dimension.
var ErrShapeMismatch = errors.New("model: shape mismatch")

// relation describes one message-passing direction.
type relation struct {
	name string
	src  graph.NodeType
	dst  graph.NodeType
	adj  func(*graph.Graph) *graph.Adjacency
}

var relations = [...]relation{
	{"recipe_to_user", graph.NodeRecipe, graph.NodeUser, (*graph.Graph).UserRecipes},
	{"user_to_recipe", graph.NodeUser, graph.NodeRecipe, (*graph.Graph).RecipeUsers},
	{"ingredient_to_recipe", graph.NodeIngredient, graph.NodeRecipe, (*graph.Graph).RecipeIngredients},
	{"recipe_to_ingredient", graph.NodeRecipe, graph.NodeIngredient, (*graph.Graph).IngredientRecipes},
}

const numTypes = 3

var nodeTypes = [numTypes]graph.NodeType{graph.NodeUser, graph.NodeRecipe, graph.NodeIngredient}

// conv is one relation's transform inside a layer.
type conv struct {
	nbr  *nn.Linear
	self *nn.Linear
}

// Model holds embedding tables, propagation layers and output projections.
type Model struct {
	cfg   recommend.ModelConfig
	act   nn.Activation
	sizes [numTypes]int

	// Embeddings are the base tables indexed by node type.
	Embeddings [numTypes]*nn.Param

	layers [][len(relations)]conv
	proj   [numTypes]*nn.Linear
}

// New creates a model for the given entity counts, initialized from the
// configured seed.
func New(cfg recommend.ModelConfig, numUsers, numRecipes, numIngredients int) (*Model, error) {
	act, err := nn.ParseActivation(cfg.Activation)
	if err != nil {
		return nil, err
	}
	if cfg.EmbeddingDim < 1 || cfg.HiddenDim < 1 || cfg.NumLayers < 1 {
		return nil, fmt.Errorf("invalid model dimensions d=%d h=%d layers=%d", cfg.EmbeddingDim, cfg.HiddenDim, cfg.NumLayers)
	}

	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // deterministic initialization, not security-sensitive
	m := &Model{
		cfg:   cfg,
		act:   act,
		sizes: [numTypes]int{numUsers, numRecipes, numIngredients},
	}

	names := [numTypes]string{"user", "recipe", "ingredient"}
	for t := range nodeTypes {
		p := nn.NewParam(names[t]+"_embedding", m.sizes[t], cfg.EmbeddingDim)
		p.Value.FillNormal(rng, cfg.InitStd)
		m.Embeddings[t] = p
	}

	in := cfg.EmbeddingDim
	for l := 0; l < cfg.NumLayers; l++ {
		var layer [len(relations)]conv
		for r, rel := range relations {
			prefix := fmt.Sprintf("convs.%d.%s", l, rel.name)
			layer[r] = conv{
				nbr:  nn.NewLinear(prefix+".lin_neighbor", in, cfg.HiddenDim, true, rng),
				self: nn.NewLinear(prefix+".lin_self", in, cfg.HiddenDim, false, rng),
			}
		}
		m.layers = append(m.layers, layer)
		in = cfg.HiddenDim
	}

	for t := range nodeTypes {
		m.proj[t] = nn.NewLinear("projection."+names[t], cfg.HiddenDim, cfg.EmbeddingDim, true, rng)
	}
	return m, nil
}

// Config returns the model configuration.
func (m *Model) Config() recommend.ModelConfig {
	return m.cfg
}

// Params returns every trainable parameter in a stable order.
func (m *Model) Params() []*nn.Param {
	params := make([]*nn.Param, 0, numTypes+len(m.layers)*len(relations)*3+numTypes*2)
	params = append(params, m.Embeddings[:]...)
	for _, layer := range m.layers {
		for _, c := range layer {
			params = append(params, c.nbr.Params()...)
			params = append(params, c.self.Params()...)
		}
	}
	for _, p := range m.proj {
		params = append(params, p.Params()...)
	}
	return params
}

// StateDict returns a copy of all parameters keyed by name.
func (m *Model) StateDict() map[string]nn.Tensor {
	return nn.StateDict(m.Params())
}

// LoadStateDict replaces all parameters from state.
func (m *Model) LoadStateDict(state map[string]nn.Tensor) error {
	return nn.LoadStateDict(m.Params(), state)
}

// Matches reports whether g has the entity counts the model was built for.
func (m *Model) Matches(g *graph.Graph) bool {
	return g.NumUsers() == m.sizes[0] && g.NumRecipes() == m.sizes[1] && g.NumIngredients() == m.sizes[2]
}
