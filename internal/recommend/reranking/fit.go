// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package reranking

import (
	"context"
	"errors"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/tomtom215/saveeat/internal/recommend"
	"github.com/tomtom215/saveeat/internal/recommend/nn"
)

// ErrTooFewSamples is returned when there is not enough logged data to fit.
var ErrTooFewSamples = errors.New("reranking: too few training samples")

// Sample is one supervised re-ranker example.
type Sample struct {
	Base    float64
	Context []float64
	Label   float64
}

// LabelFor maps a logged interaction to a training label. Likes and ratings
// of at least 4 are positive; views and lower ratings are negative. Clicks
// carry no label.
func LabelFor(it *recommend.LoggedInteraction) (float64, bool) {
	switch it.Type {
	case recommend.InteractionLike:
		return 1, true
	case recommend.InteractionRate:
		if it.Rating != nil && *it.Rating >= 4 {
			return 1, true
		}
		return 0, true
	case recommend.InteractionView:
		return 0, true
	default:
		return 0, false
	}
}

// BaseScorer returns the base affinity of a user for a recipe.
type BaseScorer func(userID, recipeID int64) (float64, bool)

// BuildSamples turns logged interactions that carry available ingredients
// into training samples. Rows without a recipe, base score or label are
// skipped.
func BuildSamples(enc Encoder, logs []recommend.LoggedInteraction, catalogue map[int64]*recommend.Recipe, base BaseScorer) []Sample {
	var samples []Sample
	for i := range logs {
		it := &logs[i]
		if len(it.AvailableIngredients) == 0 {
			continue
		}
		label, ok := LabelFor(it)
		if !ok {
			continue
		}
		recipe, ok := catalogue[it.RecipeID]
		if !ok {
			continue
		}
		score, ok := base(it.UserID, it.RecipeID)
		if !ok {
			continue
		}
		rc := RequestContext{Available: recommend.IngredientSet(it.AvailableIngredients)}
		samples = append(samples, Sample{Base: score, Context: enc.Encode(rc, recipe), Label: label})
	}
	return samples
}

// FitOptions controls re-ranker fitting.
type FitOptions struct {
	Epochs       int
	BatchSize    int
	LearningRate float64
	WeightDecay  float64
	MinSamples   int
	Seed         int64
	Logger       zerolog.Logger
}

// Fit trains r on samples with binary cross-entropy and returns the mean
// loss of each epoch.
//
//nolint:gocritic // FitOptions carries a zerolog.Logger, which is designed to be passed by value
func Fit(ctx context.Context, r *Reranker, samples []Sample, opts FitOptions) ([]float64, error) {
	if len(samples) == 0 || len(samples) < opts.MinSamples {
		return nil, ErrTooFewSamples
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = 64
	}
	rng := rand.New(rand.NewSource(opts.Seed)) //nolint:gosec // deterministic shuffling, not security-sensitive
	opt := nn.NewAdamW(r.Params(), nn.AdamWConfig{LearningRate: opts.LearningRate, WeightDecay: opts.WeightDecay})

	order := make([]int, len(samples))
	for i := range order {
		order[i] = i
	}

	var history []float64
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		var total float64
		for start := 0; start < len(order); start += opts.BatchSize {
			if err := ctx.Err(); err != nil {
				return history, err
			}
			idx := order[start:min(start+opts.BatchSize, len(order))]
			base := make([]float64, len(idx))
			contexts := make([][]float64, len(idx))
			for k, i := range idx {
				base[k] = samples[i].Base
				contexts[k] = samples[i].Context
			}
			x, err := r.input(base, contexts)
			if err != nil {
				return history, err
			}
			out, cache := r.forward(x, rng)
			dOut := nn.NewMatrix(len(idx), 1)
			inv := 1 / float64(len(idx))
			for k, i := range idx {
				l, g := nn.BCEWithLogits(out.Data[k], samples[i].Label)
				total += l
				dOut.Data[k] = g * inv
			}
			opt.ZeroGrad()
			r.backward(cache, dOut)
			opt.Step()
		}
		mean := total / float64(len(samples))
		history = append(history, mean)
		opts.Logger.Debug().Int("epoch", epoch+1).Float64("loss", mean).Msg("Reranker epoch complete")
	}
	return history, nil
}
