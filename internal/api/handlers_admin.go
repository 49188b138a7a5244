// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/saveeat/internal/cache"
	"github.com/tomtom215/saveeat/internal/logging"
	"github.com/tomtom215/saveeat/internal/models"
	"github.com/tomtom215/saveeat/internal/recommend/engine"
)

// reloadTimeout bounds a forced bundle rebuild.
const reloadTimeout = 2 * time.Minute

// BundleStatus describes the serving bundle and the model path.
type BundleStatus struct {
	Bundle       engine.BundleInfo `json:"bundle"`
	BreakerState string            `json:"breaker_state"`
	Cache        cache.Stats       `json:"cache"`
	CacheHitRate float64           `json:"cache_hit_rate"`
}

// AdminBundle describes the serving bundle.
//
// @Summary Get serving bundle status
// @Description Returns the checkpoint version, store fingerprint, model availability, circuit breaker state and response cache counters.
// @Tags Admin
// @Produce json
// @Success 200 {object} models.APIResponse{data=BundleStatus} "Bundle status"
// @Router /admin/bundle [get]
func (h *Handler) AdminBundle(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	stats := h.recommender.CacheStats()
	respondSuccess(w, r, start, BundleStatus{
		Bundle:       h.recommender.Bundle().Info(),
		BreakerState: h.recommender.BreakerState(),
		Cache:        stats,
		CacheHitRate: stats.HitRate(),
	})
}

// AdminReload rebuilds the serving bundle from the latest checkpoint and
// store contents.
//
// @Summary Reload serving bundle
// @Description Forces a rebuild of the serving bundle. Forced reloads are rate limited.
// @Tags Admin
// @Produce json
// @Success 200 {object} models.APIResponse{data=engine.ReloadResult} "Reload result"
// @Failure 429 {object} models.APIResponse "Reload throttled"
// @Failure 500 {object} models.APIResponse "Reload failed"
// @Failure 503 {object} models.APIResponse "Reload not available"
// @Router /admin/reload [post]
func (h *Handler) AdminReload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.reloader == nil {
		respondError(w, r, http.StatusServiceUnavailable, models.ErrCodeUnavailable, "Bundle reload is not configured", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), reloadTimeout)
	defer cancel()

	res, err := h.reloader.ForceReload(ctx)
	switch {
	case errors.Is(err, engine.ErrReloadThrottled):
		respondError(w, r, http.StatusTooManyRequests, models.ErrCodeRateLimited, "Reload rate limit exceeded, try again later", nil)
		return
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Bundle reload failed", err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Bool("swapped", res.Swapped).
		Int("version", res.Version).
		Str("data_version", res.DataVersion).
		Msg("Bundle reload requested")
	respondSuccess(w, r, start, res)
}
