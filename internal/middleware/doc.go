// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

/*
Package middleware provides HTTP middleware components for the API.

All middleware use the chi signature func(http.Handler) http.Handler and are
mounted by the router in internal/api:

  - RequestID: X-Request-ID propagation into the logging context
  - PrometheusMetrics: request count, latency and in-flight gauges labelled
    by chi route pattern
  - Compression: gzip for clients sending Accept-Encoding: gzip

CORS and rate limiting come from go-chi/cors and go-chi/httprate and are
configured in the router.

Usage Example:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Compression)
*/
package middleware
