// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/saveeat/internal/middleware"
	"github.com/tomtom215/saveeat/internal/models"
)

// Router wires handlers and middleware into a chi router.
type Router struct {
	handler *Handler
	mw      *Middleware
}

// NewRouter creates a router. A nil mw uses DefaultMiddlewareConfig.
func NewRouter(handler *Handler, mw *Middleware) *Router {
	if mw == nil {
		mw = NewMiddleware(DefaultMiddlewareConfig())
	}
	return &Router{handler: handler, mw: mw}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Applied to all routes in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.mw.CORS())
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Compression)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusNotFound, models.ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Route("/health", func(r chi.Router) {
		r.Use(router.mw.RateLimit(GroupHealth))
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(securityHeaders)

		r.Group(func(r chi.Router) {
			r.Use(router.mw.RateLimit(GroupAPI))

			r.Post("/recommend", router.handler.Recommend)
			r.Get("/recipe/{id}", router.handler.Recipe)
			r.Get("/recipe/{id}/reviews", router.handler.RecipeReviews)
			r.Get("/ingredients", router.handler.Ingredients)
			r.Post("/log_interaction", router.handler.LogInteraction)
			r.Get("/user/{id}/interactions", router.handler.UserInteractions)
			r.Get("/user/{id}/profile", router.handler.GetProfile)
			r.Put("/user/{id}/profile", router.handler.PutProfile)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(router.mw.RateLimit(GroupAdmin))
			r.Get("/bundle", router.handler.AdminBundle)
			r.Post("/reload", router.handler.AdminReload)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	return r
}
