// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package training

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/saveeat/internal/metrics"
	"github.com/tomtom215/saveeat/internal/recommend"
	"github.com/tomtom215/saveeat/internal/recommend/evaluation"
	"github.com/tomtom215/saveeat/internal/recommend/graph"
	"github.com/tomtom215/saveeat/internal/recommend/model"
	"github.com/tomtom215/saveeat/internal/recommend/nn"
	"github.com/tomtom215/saveeat/internal/recommend/reranking"
	"github.com/tomtom215/saveeat/internal/recommend/storage"
)

// Source provides the store tables a run trains on.
type Source interface {
	ListRecipes(ctx context.Context) ([]recommend.Recipe, error)
	ListInteractions(ctx context.Context) ([]recommend.Interaction, error)
}

// LogSource returns logged interactions that carry available ingredients.
type LogSource func(ctx context.Context) ([]recommend.LoggedInteraction, error)

// CheckpointSaver persists a checkpoint and drops old ones. *storage.Store
// implements it.
type CheckpointSaver interface {
	Save(ctx context.Context, cp *storage.Checkpoint) (*storage.Metadata, error)
	Prune(ctx context.Context, keep int) (int, error)
}

// Pipeline runs a complete offline training job.
type Pipeline struct {
	Config *recommend.Config
	Source Source
	Saver  CheckpointSaver

	// Logs is optional. When nil the checkpoint carries no re-ranker.
	Logs LogSource

	Logger zerolog.Logger
}

// RunResult summarizes a pipeline run.
type RunResult struct {
	Checkpoint   *storage.Metadata  `json:"checkpoint"`
	Training     *Result            `json:"training"`
	Evaluation   *evaluation.Report `json:"evaluation"`
	RerankerLoss []float64          `json:"reranker_loss,omitempty"`
	Pruned       int                `json:"pruned_checkpoints"`
}

// Run prepares data, builds the graph from the train split, trains the
// model, evaluates it on the test split, optionally fits the re-ranker and
// saves the resulting checkpoint.
func (p *Pipeline) Run(ctx context.Context) (result *RunResult, err error) {
	start := time.Now()
	runID := uuid.New().String()
	logger := p.Logger.With().Str("component", "training_pipeline").Str("run_id", runID).Logger()
	defer func() { metrics.RecordTrainingRun(time.Since(start), err) }()

	cfg := p.Config
	recipes, err := p.Source.ListRecipes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	interactions, err := p.Source.ListInteractions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}

	split, kept, err := Prepare(interactions, recipes, cfg.Training)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Int("train", len(split.Train)).
		Int("val", len(split.Val)).
		Int("test", len(split.Test)).
		Int("recipes", len(kept)).
		Msg("Prepared training data")

	g, err := graph.Build(split.Train, kept, graph.Options{DefaultRating: cfg.Model.DefaultRating, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}
	m, err := model.New(cfg.Model, g.NumUsers(), g.NumRecipes(), g.NumIngredients())
	if err != nil {
		return nil, fmt.Errorf("create model: %w", err)
	}

	catalogue := make(map[int64]*recommend.Recipe, len(kept))
	for i := range kept {
		catalogue[kept[i].ID] = &kept[i]
	}
	var text *nn.Matrix
	if cfg.Model.UseTextEmbeddings {
		text = model.RecipeTextMatrix(model.DefaultTextEmbedder(cfg.Model), g, catalogue)
	}

	tr := NewTrainer(m, cfg.Training, logger)
	tr.OnEpoch = func(s EpochStats) { metrics.RecordTrainingEpoch(s.TrainLoss, s.ValLoss) }
	trained, err := tr.Train(ctx, &Data{Graph: g, Train: split.Train, Val: split.Val, Text: text})
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}

	pass, err := m.Forward(g, text, nil)
	if err != nil {
		return nil, fmt.Errorf("compute embeddings: %w", err)
	}
	emb := &pass.Out
	report, err := evaluation.New(cfg.Training.EvalTopK).Evaluate(ctx, emb, g, split.Test)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	metrics.SetEvaluationMetrics(report.Metrics)
	logger.Info().Int("users", report.Users).Interface("metrics", report.Metrics).Msg("Evaluation complete")

	result = &RunResult{Training: trained, Evaluation: report}
	rr, err := p.fitReranker(ctx, g, emb, catalogue, logger)
	if err != nil {
		return nil, err
	}
	if rr != nil {
		result.RerankerLoss = rr.loss
	}

	meta := storage.Metadata{
		RunID:              runID,
		Epoch:              trained.Epochs,
		BestEpoch:          trained.BestEpoch,
		ValidationLoss:     trained.BestValLoss,
		Metrics:            report.Metrics,
		TrainedAt:          time.Now().UTC(),
		TrainingDurationMS: time.Since(start).Milliseconds(),
	}
	var reranker *reranking.Reranker
	if rr != nil {
		reranker = rr.model
	}
	saved, err := p.Saver.Save(ctx, storage.NewCheckpoint(m, g, reranker, meta))
	if err != nil {
		return nil, fmt.Errorf("save checkpoint: %w", err)
	}
	result.Checkpoint = saved
	logger.Info().Int("version", saved.Version).Dur("duration", time.Since(start)).Msg("Checkpoint saved")

	// The new checkpoint is already durable; a failed prune only leaves
	// extra files behind.
	removed, err := p.Saver.Prune(ctx, p.Config.Serving.KeepCheckpoints)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to prune old checkpoints")
	}
	result.Pruned = removed
	if removed > 0 {
		logger.Info().Int("removed", removed).Int("keep", p.Config.Serving.KeepCheckpoints).Msg("Pruned old checkpoints")
	}
	return result, nil
}

type fittedReranker struct {
	model *reranking.Reranker
	loss  []float64
}

// fitReranker returns nil without error when there is no log source or too
// little logged data.
func (p *Pipeline) fitReranker(ctx context.Context, g *graph.Graph, emb *model.Embeddings, catalogue map[int64]*recommend.Recipe, logger zerolog.Logger) (*fittedReranker, error) { //nolint:gocritic // zerolog.Logger is designed to be passed by value
	if p.Logs == nil {
		return nil, nil
	}
	logs, err := p.Logs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list logged interactions: %w", err)
	}

	cfg := p.Config
	rr := reranking.New(cfg.Reranker, cfg.Training.Seed)
	base := func(userID, recipeID int64) (float64, bool) {
		u, ok := g.Users.Index(userID)
		if !ok {
			return 0, false
		}
		r, ok := g.Recipes.Index(recipeID)
		if !ok {
			return 0, false
		}
		return recommend.SafeScore(emb.Score(u, r)), true
	}
	samples := reranking.BuildSamples(reranking.NewEncoder(rr.ContextDim()), logs, catalogue, base)
	loss, err := reranking.Fit(ctx, rr, samples, reranking.FitOptions{
		Epochs:       cfg.Reranker.Epochs,
		BatchSize:    cfg.Training.BatchSize,
		LearningRate: cfg.Reranker.LearningRate,
		WeightDecay:  cfg.Training.WeightDecay,
		MinSamples:   cfg.Reranker.MinSamples,
		Seed:         cfg.Training.Seed,
		Logger:       logger,
	})
	if errors.Is(err, reranking.ErrTooFewSamples) {
		logger.Info().Int("samples", len(samples)).Int("min_samples", cfg.Reranker.MinSamples).Msg("Skipping re-ranker, not enough logged context")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fit re-ranker: %w", err)
	}
	logger.Info().Int("samples", len(samples)).Msg("Re-ranker fitted")
	return &fittedReranker{model: rr, loss: loss}, nil
}
