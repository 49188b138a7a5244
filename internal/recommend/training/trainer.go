// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package training

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/saveeat/internal/recommend"
	"github.com/tomtom215/saveeat/internal/recommend/graph"
	"github.com/tomtom215/saveeat/internal/recommend/model"
	"github.com/tomtom215/saveeat/internal/recommend/nn"
)

// Data is the input of a training run.
type Data struct {
	Graph *graph.Graph
	Train []recommend.Interaction
	Val   []recommend.Interaction

	// Text holds optional recipe text embeddings in graph order.
	Text *nn.Matrix
}

// EpochStats summarizes one epoch.
type EpochStats struct {
	Epoch        int           `json:"epoch"`
	TrainLoss    float64       `json:"train_loss"`
	ValLoss      float64       `json:"val_loss"`
	LearningRate float64       `json:"learning_rate"`
	Batches      int           `json:"batches"`
	Duration     time.Duration `json:"duration"`
	Improved     bool          `json:"improved"`
}

// Result summarizes a training run.
type Result struct {
	Epochs       int          `json:"epochs"`
	BestEpoch    int          `json:"best_epoch"`
	BestValLoss  float64      `json:"best_val_loss"`
	StoppedEarly bool         `json:"stopped_early"`
	History      []EpochStats `json:"history"`
}

// Trainer trains a model in place.
type Trainer struct {
	cfg    recommend.TrainingConfig
	model  *model.Model
	opt    *nn.AdamW
	rng    *rand.Rand
	logger zerolog.Logger

	// OnEpoch, when set, is called after every epoch.
	OnEpoch func(EpochStats)
}

// NewTrainer creates a trainer for m.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewTrainer(m *model.Model, cfg recommend.TrainingConfig, logger zerolog.Logger) *Trainer {
	return &Trainer{
		cfg:   cfg,
		model: m,
		opt: nn.NewAdamW(m.Params(), nn.AdamWConfig{
			LearningRate: cfg.LearningRate,
			WeightDecay:  cfg.WeightDecay,
		}),
		rng:    rand.New(rand.NewSource(cfg.Seed)), //nolint:gosec // deterministic sampling, not security-sensitive
		logger: logger.With().Str("component", "trainer").Logger(),
	}
}

// Train runs the epoch loop. It returns ctx.Err() if cancelled, leaving the
// model at its best parameters so far.
func (t *Trainer) Train(ctx context.Context, data *Data) (*Result, error) {
	if data.Graph == nil {
		return nil, fmt.Errorf("training data has no graph")
	}
	ds := NewDataset(data.Graph, data.Train, t.cfg.NegativeSamples)
	if ds.Positives() == 0 {
		return nil, ErrNoTrainingData
	}
	val := newValidationSet(data.Graph, data.Val, t.cfg.MaxValidationUsers)
	earlyStopping := val.size() > 0
	if !earlyStopping {
		t.logger.Warn().Msg("No validation interactions in graph; early stopping disabled")
	}

	result := &Result{BestValLoss: math.Inf(1), BestEpoch: -1}
	var best map[string]nn.Tensor
	sincePlateau, patience := 0, 0

	defer func() {
		if best != nil {
			if err := t.model.LoadStateDict(best); err != nil {
				t.logger.Error().Err(err).Msg("Failed to restore best parameters")
			}
		}
	}()

	for epoch := 0; epoch < t.cfg.Epochs; epoch++ {
		start := time.Now()
		trainLoss, batches, err := t.trainEpoch(ctx, data, ds)
		if err != nil {
			return result, err
		}
		valLoss, err := t.validate(data, val)
		if err != nil {
			return result, err
		}

		stats := EpochStats{
			Epoch:        epoch,
			TrainLoss:    trainLoss,
			ValLoss:      valLoss,
			LearningRate: t.opt.LearningRate(),
			Batches:      batches,
			Duration:     time.Since(start),
		}
		if earlyStopping && valLoss < result.BestValLoss {
			stats.Improved = true
			result.BestValLoss = valLoss
			result.BestEpoch = epoch
			best = t.model.StateDict()
			patience, sincePlateau = 0, 0
		} else {
			patience++
			sincePlateau++
		}
		result.History = append(result.History, stats)
		result.Epochs = epoch + 1

		t.logger.Info().
			Int("epoch", epoch+1).
			Float64("train_loss", trainLoss).
			Float64("val_loss", valLoss).
			Dur("duration", stats.Duration).
			Msg("Epoch complete")
		if t.OnEpoch != nil {
			t.OnEpoch(stats)
		}

		if !earlyStopping {
			continue
		}
		if t.cfg.LRScheduler && sincePlateau >= t.cfg.SchedulerPatience {
			t.opt.SetLearningRate(t.opt.LearningRate() * t.cfg.SchedulerFactor)
			sincePlateau = 0
			t.logger.Info().Float64("learning_rate", t.opt.LearningRate()).Msg("Reduced learning rate")
		}
		if patience >= t.cfg.Patience {
			result.StoppedEarly = true
			t.logger.Info().Int("best_epoch", result.BestEpoch+1).Msg("Early stopping triggered")
			break
		}
	}
	return result, nil
}

func (t *Trainer) trainEpoch(ctx context.Context, data *Data, ds *Dataset) (loss float64, batches int, err error) {
	pass, err := t.model.Forward(data.Graph, data.Text, t.rng)
	if err != nil {
		return 0, 0, err
	}
	samples := ds.Epoch(t.rng)

	d := t.model.Config().EmbeddingDim
	dUser := nn.NewMatrix(data.Graph.NumUsers(), d)
	dRecipe := nn.NewMatrix(data.Graph.NumRecipes(), d)
	emb := &pass.Out

	var total float64
	for start := 0; start < len(samples); start += t.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return 0, batches, err
		}
		batch := samples[start:min(start+t.cfg.BatchSize, len(samples))]
		inv := 1 / float64(len(batch))

		var batchLoss float64
		for _, s := range batch {
			u, r := int(s.User), int(s.Recipe)
			l, g := nn.BCEWithLogits(emb.Score(u, r), s.Label)
			batchLoss += l
			g *= inv
			nn.Axpy(g, emb.Recipe.Row(r), dUser.Row(u))
			nn.Axpy(g, emb.User.Row(u), dRecipe.Row(r))
		}

		t.opt.ZeroGrad()
		pass.Backward(dUser, dRecipe)
		t.opt.Step()

		for _, s := range batch {
			clear(dUser.Row(int(s.User)))
			clear(dRecipe.Row(int(s.Recipe)))
		}
		total += batchLoss * inv
		batches++
	}
	if batches == 0 {
		return 0, 0, nil
	}
	return total / float64(batches), batches, nil
}

// validationSet holds mapped validation recipes for a bounded user subset.
type validationSet struct {
	users   []int
	recipes [][]int
}

func (v *validationSet) size() int {
	return len(v.users)
}

func newValidationSet(g *graph.Graph, interactions []recommend.Interaction, maxUsers int) *validationSet {
	ids, items := GroupByUser(interactions)
	v := &validationSet{}
	for _, id := range ids {
		if maxUsers > 0 && len(v.users) >= maxUsers {
			break
		}
		u, ok := g.Users.Index(id)
		if !ok {
			continue
		}
		var recipes []int
		for _, rid := range items[id] {
			if r, ok := g.Recipes.Index(rid); ok {
				recipes = append(recipes, r)
			}
		}
		if len(recipes) == 0 {
			continue
		}
		v.users = append(v.users, u)
		v.recipes = append(v.recipes, recipes)
	}
	return v
}

// validate returns the mean over validation users of each user's mean BCE
// against label 1, or +Inf when there are no validation users.
func (t *Trainer) validate(data *Data, val *validationSet) (float64, error) {
	if val.size() == 0 {
		return math.Inf(1), nil
	}
	pass, err := t.model.Forward(data.Graph, data.Text, nil)
	if err != nil {
		return 0, err
	}
	var total float64
	for i, u := range val.users {
		var userLoss float64
		for _, r := range val.recipes[i] {
			l, _ := nn.BCEWithLogits(pass.Out.Score(u, r), 1)
			userLoss += l
		}
		total += userLoss / float64(len(val.recipes[i]))
	}
	return total / float64(val.size()), nil
}
