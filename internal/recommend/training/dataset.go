// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package training

import (
	"math/rand"

	"github.com/tomtom215/saveeat/internal/recommend"
	"github.com/tomtom215/saveeat/internal/recommend/graph"
)

// maxNegativeTries bounds rejection sampling before a linear scan.
const maxNegativeTries = 100

// Sample is one (user, recipe, label) training triple in graph indices.
type Sample struct {
	User   int32
	Recipe int32
	Label  float64
}

// Dataset holds mapped positive interactions and draws negatives.
type Dataset struct {
	positives []Sample
	pool      []int32
	seen      map[int32]map[int32]struct{}
	negatives int
}

// NewDataset maps interactions into g's index space. Interactions whose user
// or recipe is not in g are skipped. The negative pool is the set of recipes
// appearing in the mapped interactions.
func NewDataset(g *graph.Graph, interactions []recommend.Interaction, negatives int) *Dataset {
	d := &Dataset{
		seen:      make(map[int32]map[int32]struct{}),
		negatives: negatives,
	}
	var pool []int32
	for i := range interactions {
		u, okU := g.Users.Index(interactions[i].UserID)
		r, okR := g.Recipes.Index(interactions[i].RecipeID)
		if !okU || !okR {
			continue
		}
		s := Sample{User: int32(u), Recipe: int32(r), Label: 1}
		d.positives = append(d.positives, s)
		pool = append(pool, s.Recipe)
		set, ok := d.seen[s.User]
		if !ok {
			set = make(map[int32]struct{})
			d.seen[s.User] = set
		}
		set[s.Recipe] = struct{}{}
	}
	d.pool = sortedUnique(pool)
	return d
}

// Positives returns the number of mapped positive interactions.
func (d *Dataset) Positives() int {
	return len(d.positives)
}

// Len returns the number of samples per epoch.
func (d *Dataset) Len() int {
	return len(d.positives) * (1 + d.negatives)
}

// Epoch draws fresh negatives and returns a shuffled sample list.
func (d *Dataset) Epoch(rng *rand.Rand) []Sample {
	samples := make([]Sample, 0, d.Len())
	for _, pos := range d.positives {
		samples = append(samples, pos)
		for k := 0; k < d.negatives; k++ {
			samples = append(samples, Sample{User: pos.User, Recipe: d.negative(rng, pos.User), Label: 0})
		}
	}
	rng.Shuffle(len(samples), func(i, j int) {
		samples[i], samples[j] = samples[j], samples[i]
	})
	return samples
}

// negative draws a recipe the user has not interacted with. When the user
// has interacted with the whole pool any pool recipe is returned.
func (d *Dataset) negative(rng *rand.Rand, user int32) int32 {
	seen := d.seen[user]
	if len(seen) >= len(d.pool) {
		return d.pool[rng.Intn(len(d.pool))]
	}
	for try := 0; try < maxNegativeTries; try++ {
		r := d.pool[rng.Intn(len(d.pool))]
		if _, ok := seen[r]; !ok {
			return r
		}
	}
	start := rng.Intn(len(d.pool))
	for k := range d.pool {
		r := d.pool[(start+k)%len(d.pool)]
		if _, ok := seen[r]; !ok {
			return r
		}
	}
	return d.pool[start]
}
