// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/saveeat/internal/config"
	"github.com/tomtom215/saveeat/internal/database"
	"github.com/tomtom215/saveeat/internal/logging"
	"github.com/tomtom215/saveeat/internal/recommend"
	"github.com/tomtom215/saveeat/internal/recommend/engine"
	"github.com/tomtom215/saveeat/internal/recommend/storage"
	"github.com/tomtom215/saveeat/internal/recommend/training"
	"github.com/tomtom215/saveeat/internal/supervisor"
	"github.com/tomtom215/saveeat/internal/supervisor/services"
)

// recommendComponents holds the serving engine and the services that keep
// its bundle current.
type recommendComponents struct {
	engine   *engine.Engine
	loader   *engine.Loader
	reloader *services.BundleReloadService
	trainer  *services.TrainingService
}

// initRecommend creates the engine, the checkpoint store and the bundle
// loader. The engine serves the fallback path until the first reload.
func initRecommend(cfg *config.Config, db *database.DB) (*recommendComponents, error) {
	rc := &cfg.Recommend
	logger := logging.Logger()

	store, err := storage.NewStore(rc.Serving.CheckpointDir)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint store: %w", err)
	}

	eng := engine.New(rc, db, logger)
	loader := engine.NewLoader(eng, db, store, rc.Serving, logger)
	c := &recommendComponents{
		engine:   eng,
		loader:   loader,
		reloader: services.NewBundleReloadService(loader, rc.Serving.ReloadInterval, logger),
	}

	latest, err := store.Latest()
	switch {
	case errors.Is(err, storage.ErrNoCheckpoint):
		logging.Warn().Str("dir", store.Dir()).Msg("No model checkpoint found, serving heuristic fallback until one is trained")
	case err != nil:
		logging.Warn().Err(err).Msg("Failed to inspect checkpoint directory")
	default:
		logging.Info().Int("version", latest).Str("dir", store.Dir()).Msg("Model checkpoint available")
	}

	if rc.Training.Enabled {
		pipeline := &training.Pipeline{
			Config: rc,
			Source: db,
			Saver:  store,
			Logs: func(ctx context.Context) ([]recommend.LoggedInteraction, error) {
				return db.LoggedInteractions(ctx, database.LoggedFilter{WithIngredients: true})
			},
			Logger: logger,
		}
		c.trainer = services.NewTrainingService(pipeline, loader, services.TrainingServiceConfig{
			TrainOnStartup: errors.Is(err, storage.ErrNoCheckpoint),
			Interval:       rc.Training.Interval,
			Timeout:        rc.Training.Timeout,
		}, logger)
		logging.Info().
			Dur("interval", rc.Training.Interval).
			Dur("timeout", rc.Training.Timeout).
			Msg("In-process training enabled")
	}
	return c, nil
}

// addToTree registers the bundle reloader and the optional training
// service in the model layer.
func (c *recommendComponents) addToTree(tree *supervisor.SupervisorTree) {
	tree.Add(supervisor.LayerModel, c.reloader)
	if c.trainer != nil {
		tree.Add(supervisor.LayerModel, c.trainer)
	}
	logging.Info().Bool("training", c.trainer != nil).Msg("Model services added to supervisor tree")
}
