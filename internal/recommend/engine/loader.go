// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/saveeat/internal/metrics"
	"github.com/tomtom215/saveeat/internal/recommend"
	"github.com/tomtom215/saveeat/internal/recommend/storage"
)

// ErrReloadThrottled is returned when forced reloads exceed their rate.
var ErrReloadThrottled = errors.New("bundle reload throttled")

// DataSource provides the store contents a bundle is built from.
type DataSource interface {
	ListRecipes(ctx context.Context) ([]recommend.Recipe, error)
	ListInteractions(ctx context.Context) ([]recommend.Interaction, error)
	DataVersion(ctx context.Context) (string, error)
}

// CheckpointSource provides checkpoints. *storage.Store implements it.
type CheckpointSource interface {
	Latest() (int, error)
	Load(ctx context.Context, version int) (*storage.Checkpoint, error)
}

// ReloadResult describes one reload attempt.
type ReloadResult struct {
	Swapped     bool   `json:"swapped"`
	Version     int    `json:"version"`
	DataVersion string `json:"data_version"`
	Reason      string `json:"reason,omitempty"`
}

// Loader builds bundles from the store and checkpoint directory and swaps
// them into an engine when either changed.
type Loader struct {
	engine      *Engine
	data        DataSource
	checkpoints CheckpointSource
	limiter     *rate.Limiter
	logger      zerolog.Logger

	// mu serializes reloads so two builds never race to Swap.
	mu sync.Mutex

	// badVersion is the last checkpoint version that failed to load.
	badVersion int
}

// NewLoader creates a loader. checkpoints may be nil to serve fallback only.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewLoader(e *Engine, data DataSource, checkpoints CheckpointSource, cfg recommend.ServingConfig, logger zerolog.Logger) *Loader {
	perSecond := rate.Limit(cfg.ReloadPerMinute / 60)
	return &Loader{
		engine:      e,
		data:        data,
		checkpoints: checkpoints,
		limiter:     rate.NewLimiter(perSecond, max(cfg.ReloadBurst, 1)),
		logger:      logger.With().Str("component", "bundle_loader").Logger(),
	}
}

// Reload rebuilds the bundle when the latest checkpoint version or the
// store fingerprint differs from the serving bundle.
func (l *Loader) Reload(ctx context.Context) (*ReloadResult, error) {
	return l.reload(ctx, false)
}

// ForceReload rebuilds the bundle unconditionally, subject to the reload
// rate limit.
func (l *Loader) ForceReload(ctx context.Context) (*ReloadResult, error) {
	if !l.limiter.Allow() {
		return nil, ErrReloadThrottled
	}
	return l.reload(ctx, true)
}

func (l *Loader) reload(ctx context.Context, force bool) (*ReloadResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.engine.Bundle()

	version, err := l.latestVersion()
	if err != nil {
		metrics.RecordBundleReload("error", 0)
		return nil, err
	}
	dataVersion, err := l.data.DataVersion(ctx)
	if err != nil {
		metrics.RecordBundleReload("error", 0)
		return nil, fmt.Errorf("read data version: %w", err)
	}

	modelCurrent := version == current.version || version == l.badVersion
	if !force && modelCurrent && dataVersion == current.dataVersion {
		metrics.RecordBundleReload("unchanged", current.version)
		if n := l.engine.PruneCache(); n > 0 {
			l.logger.Debug().Int("expired", n).Msg("Pruned cached responses")
		}
		return &ReloadResult{Version: current.version, DataVersion: dataVersion, Reason: "unchanged"}, nil
	}

	recipes, err := l.data.ListRecipes(ctx)
	if err != nil {
		metrics.RecordBundleReload("error", 0)
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	interactions, err := l.data.ListInteractions(ctx)
	if err != nil {
		metrics.RecordBundleReload("error", 0)
		return nil, fmt.Errorf("list interactions: %w", err)
	}

	in := &BundleInput{Recipes: recipes, Interactions: interactions, DataVersion: dataVersion}
	var reason string
	if version > 0 {
		cp, err := l.checkpoints.Load(ctx, version)
		if err == nil {
			in.Checkpoint = cp
		} else if current.HasModel() {
			metrics.RecordBundleReload("error", 0)
			return nil, fmt.Errorf("load checkpoint v%d: %w", version, err)
		} else {
			reason = "checkpoint unreadable, serving fallback only"
			l.badVersion = version
			l.logger.Warn().Err(err).Int("version", version).Msg("Checkpoint unreadable, building fallback-only bundle")
		}
	}

	b, err := NewBundle(in)
	if err != nil {
		if current.HasModel() {
			metrics.RecordBundleReload("error", 0)
			return nil, err
		}
		l.logger.Warn().Err(err).Msg("Checkpoint could not be restored, building fallback-only bundle")
		in.Checkpoint = nil
		reason = "checkpoint invalid, serving fallback only"
		l.badVersion = version
		if b, err = NewBundle(in); err != nil {
			metrics.RecordBundleReload("error", 0)
			return nil, err
		}
	}

	l.engine.Swap(b)
	metrics.RecordBundleReload("swapped", b.version)
	info := b.Info()
	event := l.logger.Info()
	if info.ModelIssue != "" && info.Version > 0 {
		event = l.logger.Warn().Str("model_issue", info.ModelIssue)
	}
	event.Int("version", info.Version).
		Str("data_version", dataVersion).
		Bool("has_model", info.HasModel).
		Bool("has_reranker", info.HasReranker).
		Int("catalogue", info.Catalogue).
		Msg("Serving bundle swapped")

	return &ReloadResult{Swapped: true, Version: b.version, DataVersion: dataVersion, Reason: reason}, nil
}

// latestVersion returns 0 when there is no checkpoint source or checkpoint.
func (l *Loader) latestVersion() (int, error) {
	if l.checkpoints == nil {
		return 0, nil
	}
	v, err := l.checkpoints.Latest()
	if errors.Is(err, storage.ErrNoCheckpoint) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("find latest checkpoint: %w", err)
	}
	return v, nil
}
