// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package model

import (
	"fmt"
	"math/rand"

	"github.com/tomtom215/saveeat/internal/recommend/graph"
	"github.com/tomtom215/saveeat/internal/recommend/nn"
)

// Embeddings are the final per-type embedding matrices, each n x d.
type Embeddings struct {
	User       *nn.Matrix
	Recipe     *nn.Matrix
	Ingredient *nn.Matrix
}

// Score returns the affinity of user index u for recipe index r.
func (e *Embeddings) Score(u, r int) float64 {
	return nn.Dot(e.User.Row(u), e.Recipe.Row(r))
}

// ScoreAll returns the affinity of user index u for every recipe.
func (e *Embeddings) ScoreAll(u int) []float64 {
	scores := make([]float64, e.Recipe.Rows)
	uv := e.User.Row(u)
	for r := range scores {
		scores[r] = nn.Dot(uv, e.Recipe.Row(r))
	}
	return scores
}

// AllFinite reports whether every embedding value is finite.
func (e *Embeddings) AllFinite() bool {
	return e.User.AllFinite() && e.Recipe.AllFinite() && e.Ingredient.AllFinite()
}

type layerCache struct {
	x    [numTypes]*nn.Matrix
	agg  [len(relations)]*nn.Matrix
	pre  [numTypes]*nn.Matrix
	mask [numTypes][]float64
}

// Pass is one forward propagation with the activations needed by Backward.
type Pass struct {
	model  *Model
	g      *graph.Graph
	layers []layerCache
	last   [numTypes]*nn.Matrix

	// Out holds the final embeddings.
	Out Embeddings
}

// Forward propagates the base embeddings over g. text, when non-nil, is an
// n_recipes x d matrix added to the recipe inputs. A non-nil rng enables
// dropout (training mode); nil means evaluation mode.
func (m *Model) Forward(g *graph.Graph, text *nn.Matrix, rng *rand.Rand) (*Pass, error) {
	if !m.Matches(g) {
		return nil, fmt.Errorf("graph %d/%d/%d vs model %v: %w",
			g.NumUsers(), g.NumRecipes(), g.NumIngredients(), m.sizes, ErrShapeMismatch)
	}

	var x [numTypes]*nn.Matrix
	for t := range nodeTypes {
		x[t] = m.Embeddings[t].Value.Clone()
	}
	if text != nil {
		if text.Rows != m.sizes[1] || text.Cols != m.cfg.EmbeddingDim {
			return nil, fmt.Errorf("text embeddings %dx%d: %w", text.Rows, text.Cols, ErrShapeMismatch)
		}
		x[1].AddInPlace(text)
	}

	p := &Pass{model: m, g: g, layers: make([]layerCache, len(m.layers))}
	for l, layer := range m.layers {
		c := &p.layers[l]
		c.x = x
		for t := range nodeTypes {
			c.pre[t] = nn.NewMatrix(m.sizes[t], m.cfg.HiddenDim)
		}
		for r, rel := range relations {
			c.agg[r] = meanAggregate(rel.adj(g), x[rel.src])
			layer[r].nbr.ForwardInto(c.pre[rel.dst], c.agg[r])
			layer[r].self.ForwardInto(c.pre[rel.dst], x[rel.dst])
		}

		var next [numTypes]*nn.Matrix
		for t := range nodeTypes {
			if l == len(m.layers)-1 {
				next[t] = c.pre[t]
				continue
			}
			h := m.act.ApplyMatrix(c.pre[t])
			if rng != nil {
				c.mask[t] = nn.DropoutMask(rng, len(h.Data), m.cfg.Dropout)
				nn.ApplyMask(h, c.mask[t])
			}
			next[t] = h
		}
		x = next
	}

	p.last = x
	p.Out = Embeddings{
		User:       m.proj[0].Forward(x[0]),
		Recipe:     m.proj[1].Forward(x[1]),
		Ingredient: m.proj[2].Forward(x[2]),
	}
	return p, nil
}

// Backward accumulates parameter gradients given the loss gradients with
// respect to the final user and recipe embeddings. Either may be nil.
func (p *Pass) Backward(dUser, dRecipe *nn.Matrix) {
	m := p.model
	var dx [numTypes]*nn.Matrix
	for t, d := range [numTypes]*nn.Matrix{dUser, dRecipe, nil} {
		if d == nil {
			dx[t] = nn.NewMatrix(m.sizes[t], m.cfg.HiddenDim)
			continue
		}
		dx[t] = m.proj[t].Backward(p.last[t], d)
	}

	for l := len(m.layers) - 1; l >= 0; l-- {
		c := &p.layers[l]
		layer := m.layers[l]

		var dPre [numTypes]*nn.Matrix
		for t := range nodeTypes {
			if l == len(m.layers)-1 {
				dPre[t] = dx[t]
				continue
			}
			d := dx[t]
			nn.ApplyMask(d, c.mask[t])
			for i, z := range c.pre[t].Data {
				d.Data[i] *= m.act.Derivative(z)
			}
			dPre[t] = d
		}

		var dIn [numTypes]*nn.Matrix
		for t := range nodeTypes {
			dIn[t] = nn.NewMatrix(m.sizes[t], c.x[t].Cols)
		}
		for r, rel := range relations {
			dAgg := layer[r].nbr.Backward(c.agg[r], dPre[rel.dst])
			meanScatter(rel.adj(p.g), dAgg, dIn[rel.src])
			dIn[rel.dst].AddInPlace(layer[r].self.Backward(c.x[rel.dst], dPre[rel.dst]))
		}
		dx = dIn
	}

	for t := range nodeTypes {
		m.Embeddings[t].Grad.AddInPlace(dx[t])
	}
}

// meanAggregate returns, for every destination row, the mean of its
// neighbors' source rows. Isolated destinations aggregate to zero.
func meanAggregate(adj *graph.Adjacency, src *nn.Matrix) *nn.Matrix {
	n := adj.NumNodes()
	out := nn.NewMatrix(n, src.Cols)
	for i := 0; i < n; i++ {
		nbrs := adj.Neighbors(i)
		if len(nbrs) == 0 {
			continue
		}
		row := out.Row(i)
		for _, j := range nbrs {
			nn.Axpy(1, src.Row(int(j)), row)
		}
		inv := 1 / float64(len(nbrs))
		for k := range row {
			row[k] *= inv
		}
	}
	return out
}

// meanScatter is the adjoint of meanAggregate: it adds dAgg[i]/deg(i) to
// every neighbor row of dSrc.
func meanScatter(adj *graph.Adjacency, dAgg, dSrc *nn.Matrix) {
	for i := 0; i < adj.NumNodes(); i++ {
		nbrs := adj.Neighbors(i)
		if len(nbrs) == 0 {
			continue
		}
		inv := 1 / float64(len(nbrs))
		row := dAgg.Row(i)
		for _, j := range nbrs {
			nn.Axpy(inv, row, dSrc.Row(int(j)))
		}
	}
}
