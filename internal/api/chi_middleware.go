// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/saveeat/internal/metrics"
	"github.com/tomtom215/saveeat/internal/models"
)

// Rate limit groups, also used as the metrics label of throttled requests.
const (
	GroupAPI    = "api"
	GroupHealth = "health"
	GroupAdmin  = "admin"
)

// RateLimit is a per-client request budget. Requests <= 0 disables it.
type RateLimit struct {
	Requests int
	Window   time.Duration
}

// MiddlewareConfig configures CORS and the per-group rate limits.
type MiddlewareConfig struct {
	// CORSOrigins must be set explicitly; empty allows no cross-origin use.
	CORSOrigins []string

	API    RateLimit
	Health RateLimit
	// Admin is strict since every forced reload rebuilds a bundle.
	Admin RateLimit

	DisableRateLimit bool

	// KeyFunc identifies a client; nil keys by remote IP.
	KeyFunc httprate.KeyFunc
}

// DefaultMiddlewareConfig allows 100 API, 1000 health and 10 admin requests
// per minute and client.
func DefaultMiddlewareConfig() MiddlewareConfig {
	return MiddlewareConfig{
		API:    RateLimit{Requests: 100, Window: time.Minute},
		Health: RateLimit{Requests: 1000, Window: time.Minute},
		Admin:  RateLimit{Requests: 10, Window: time.Minute},
	}
}

// Middleware builds the CORS handler and rate limiters for the router.
type Middleware struct {
	config MiddlewareConfig
	cors   func(http.Handler) http.Handler
}

// NewMiddleware creates the middleware set for config.
func NewMiddleware(config MiddlewareConfig) *Middleware {
	if config.KeyFunc == nil {
		config.KeyFunc = httprate.KeyByIP
	}
	return &Middleware{
		config: config,
		cors: cors.Handler(cors.Options{
			AllowedOrigins: config.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         int((24 * time.Hour).Seconds()),
		}),
	}
}

// CORS returns the go-chi/cors handler.
func (m *Middleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit returns the limiter of group. Unknown groups and disabled
// limits pass requests through.
func (m *Middleware) RateLimit(group string) func(http.Handler) http.Handler {
	var limit RateLimit
	switch group {
	case GroupAPI:
		limit = m.config.API
	case GroupHealth:
		limit = m.config.Health
	case GroupAdmin:
		limit = m.config.Admin
	}
	if m.config.DisableRateLimit || limit.Requests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(limit.Requests, limit.Window,
		httprate.WithKeyFuncs(m.config.KeyFunc),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.RecordRateLimitHit(group)
			respondError(w, r, http.StatusTooManyRequests, models.ErrCodeRateLimited, "Rate limit exceeded, try again later", nil)
		}),
	)
}

// securityHeaders sets nosniff, frame denial and a referrer policy on API
// responses, plus HSTS on TLS connections.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if r.TLS != nil {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}
