// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/saveeat/internal/recommend/training"
)

// TrainingRunner runs one offline training job and writes a checkpoint.
// *training.Pipeline implements it.
type TrainingRunner interface {
	Run(ctx context.Context) (*training.RunResult, error)
}

// TrainingServiceConfig holds configuration for the training service.
type TrainingServiceConfig struct {
	// TrainOnStartup runs a job as soon as the service starts.
	TrainOnStartup bool

	// Interval between runs.
	// Default: 24h
	Interval time.Duration

	// Timeout bounds a single run.
	// Default: 30m
	Timeout time.Duration
}

// TrainingService retrains the model in-process on a schedule. A run
// trains its own model copy and writes a checkpoint; the serving bundle
// only changes when the reloader picks that checkpoint up.
type TrainingService struct {
	runner   TrainingRunner
	reloader BundleReloader
	config   TrainingServiceConfig
	logger   zerolog.Logger
	name     string
}

// NewTrainingService creates a training service. reloader may be nil, in
// which case the periodic bundle reloader picks up new checkpoints.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewTrainingService(runner TrainingRunner, reloader BundleReloader, cfg TrainingServiceConfig, logger zerolog.Logger) *TrainingService {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Minute
	}
	return &TrainingService{
		runner:   runner,
		reloader: reloader,
		config:   cfg,
		logger:   logger.With().Str("service", "training").Logger(),
		name:     "training-service",
	}
}

// Serve implements suture.Service. Failed runs are logged and retried on
// the next tick; they never restart the service.
func (s *TrainingService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("train_on_startup", s.config.TrainOnStartup).
		Dur("interval", s.config.Interval).
		Msg("Training service starting")

	if s.config.TrainOnStartup {
		s.train(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Training service shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.train(ctx)
		}
	}
}

func (s *TrainingService) train(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	res, err := s.runner.Run(runCtx)
	if err != nil {
		s.logger.Warn().Err(err).Dur("duration", time.Since(start)).Msg("Training run failed")
		return
	}
	event := s.logger.Info().Dur("duration", time.Since(start))
	if res != nil && res.Checkpoint != nil {
		event = event.Int("version", res.Checkpoint.Version)
	}
	event.Msg("Training run complete")

	if s.reloader == nil {
		return
	}
	if _, err := s.reloader.Reload(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Bundle reload after training failed")
	}
}

// String implements fmt.Stringer for suture event logs.
func (s *TrainingService) String() string {
	return s.name
}
