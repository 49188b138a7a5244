// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package model

import (
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"

	"github.com/tomtom215/saveeat/internal/recommend"
	"github.com/tomtom215/saveeat/internal/recommend/graph"
	"github.com/tomtom215/saveeat/internal/recommend/nn"
)

// TextEmbedder maps free text to a fixed-dimension vector.
type TextEmbedder interface {
	Embed(text string) []float64
	Dim() int
}

// HashingEmbedder is a deterministic feature-hashing bag-of-words embedder.
// Each lower-cased word and adjacent word pair is hashed to a signed
// bucket; the result is L2-normalized and scaled.
type HashingEmbedder struct {
	dim   int
	scale float64
}

// NewHashingEmbedder creates an embedder of the given dimension whose output
// vectors have L2 norm scale.
func NewHashingEmbedder(dim int, scale float64) *HashingEmbedder {
	return &HashingEmbedder{dim: dim, scale: scale}
}

// Dim returns the output dimension.
func (h *HashingEmbedder) Dim() int {
	return h.dim
}

// Embed returns the hashed embedding of text. Empty text embeds to zero.
func (h *HashingEmbedder) Embed(text string) []float64 {
	vec := make([]float64, h.dim)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	add := func(token string) {
		sum := xxhash.Sum64String(token)
		idx := int(sum % uint64(h.dim))
		if sum&(1<<63) != 0 {
			vec[idx]--
		} else {
			vec[idx]++
		}
	}
	for i, w := range words {
		add(w)
		if i > 0 {
			add(words[i-1] + " " + w)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	f := h.scale / math.Sqrt(norm)
	for i := range vec {
		vec[i] *= f
	}
	return vec
}

// RecipeTextMatrix embeds the text of every recipe in g's index order.
// Recipes absent from catalogue keep a zero row.
func RecipeTextMatrix(e TextEmbedder, g *graph.Graph, catalogue map[int64]*recommend.Recipe) *nn.Matrix {
	m := nn.NewMatrix(g.NumRecipes(), e.Dim())
	for i := 0; i < g.NumRecipes(); i++ {
		r, ok := catalogue[g.Recipes.ID(i)]
		if !ok {
			continue
		}
		copy(m.Row(i), e.Embed(r.Text()))
	}
	return m
}

// DefaultTextEmbedder returns the hashing embedder used for recipe text,
// scaled to the expected norm of a freshly initialized embedding row.
func DefaultTextEmbedder(cfg recommend.ModelConfig) *HashingEmbedder {
	return NewHashingEmbedder(cfg.EmbeddingDim, cfg.InitStd*math.Sqrt(float64(cfg.EmbeddingDim)))
}
