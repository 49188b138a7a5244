// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/saveeat/internal/models"
)

// healthCheckTimeout bounds dependency checks in health endpoints.
const healthCheckTimeout = 2 * time.Second

// Health status values.
const (
	healthHealthy  = "healthy"
	healthDegraded = "degraded"
)

// Health handles health check requests.
//
// The service is degraded when the store is unreachable or the event bus
// is disconnected. Serving without a trained model is healthy: the
// fallback path answers every request.
//
// @Summary Get system health status
// @Description Returns database connectivity, model availability, bundle version, event bus state and uptime.
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthStatus} "Health status"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, time.Time{}, h.healthStatus(r.Context()))
}

func (h *Handler) healthStatus(ctx context.Context) models.HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	dbOK := h.store != nil && h.store.Ping(ctx) == nil
	bundle := h.recommender.Bundle()

	status := models.HealthStatus{
		Status:        healthHealthy,
		Version:       h.version,
		Uptime:        time.Since(h.startTime).Seconds(),
		DatabaseOK:    dbOK,
		ModelLoaded:   bundle.HasModel(),
		BundleVersion: bundle.Version(),
		Components: map[string]string{
			"circuit_breaker": h.recommender.BreakerState(),
		},
	}
	if !dbOK {
		status.Status = healthDegraded
	}
	if h.bus != nil {
		bs := h.bus.Status()
		status.Components["event_bus"] = bs.Mode
		if !bs.Connected {
			status.Components["event_bus"] = bs.Mode + " (disconnected)"
			status.Status = healthDegraded
		}
	}
	return status
}

// HealthLive handles liveness probe requests.
// Returns 200 OK if the process is alive, regardless of dependencies.
//
// @Summary Liveness probe
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse "Service is alive"
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, time.Time{}, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness probe requests.
// Returns 200 OK only if the store is reachable.
//
// @Summary Readiness probe
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse "Service is ready"
// @Failure 503 {object} models.APIResponse "Service is not ready"
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if h.store == nil || h.store.Ping(ctx) != nil {
		respondError(w, r, http.StatusServiceUnavailable, models.ErrCodeUnavailable, "Database not ready", nil)
		return
	}
	respondSuccess(w, r, time.Time{}, map[string]interface{}{
		"ready":          true,
		"bundle_version": h.recommender.Bundle().Version(),
	})
}
