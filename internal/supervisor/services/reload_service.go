// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/saveeat/internal/recommend/engine"
)

// BundleReloader rebuilds the serving bundle when its inputs changed.
// *engine.Loader implements it.
type BundleReloader interface {
	Reload(ctx context.Context) (*engine.ReloadResult, error)
}

// BundleReloadService polls the checkpoint directory and the store and
// swaps in a new serving bundle when either changed.
type BundleReloadService struct {
	reloader BundleReloader
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewBundleReloadService creates the reload poller. A non-positive
// interval defaults to one minute.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewBundleReloadService(reloader BundleReloader, interval time.Duration, logger zerolog.Logger) *BundleReloadService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &BundleReloadService{
		reloader: reloader,
		interval: interval,
		logger:   logger.With().Str("service", "bundle-reloader").Logger(),
		name:     "bundle-reloader",
	}
}

// Serve implements suture.Service. It reloads once immediately, then on
// every tick. A failed reload keeps the current bundle serving.
func (s *BundleReloadService) Serve(ctx context.Context) error {
	s.reload(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.reload(ctx)
		}
	}
}

func (s *BundleReloadService) reload(ctx context.Context) {
	res, err := s.reloader.Reload(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn().Err(err).Msg("Bundle reload failed, keeping current bundle")
		}
		return
	}
	if res.Swapped {
		s.logger.Info().
			Int("version", res.Version).
			Str("data_version", res.DataVersion).
			Msg("Serving bundle swapped")
		return
	}
	s.logger.Debug().Str("reason", res.Reason).Msg("Serving bundle unchanged")
}

// String implements fmt.Stringer for suture event logs.
func (s *BundleReloadService) String() string {
	return s.name
}
