// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

/*
Package api provides the HTTP REST API of SaveEat.

Routes (chi):

	POST /api/v1/recommend                 recommendations for a user
	GET  /api/v1/recipe/{id}               recipe details
	GET  /api/v1/recipe/{id}/reviews       most recent reviews (?limit=5)
	GET  /api/v1/ingredients               ingredient names by usage (?limit=500)
	POST /api/v1/log_interaction           accept a view/click/like/rate event
	GET  /api/v1/user/{id}/interactions    logged interaction history (?limit=100)
	GET  /api/v1/user/{id}/profile         dietary profile
	PUT  /api/v1/user/{id}/profile         replace dietary profile
	GET  /api/v1/admin/bundle              serving bundle status
	POST /api/v1/admin/reload              force a bundle rebuild
	GET  /health, /health/live, /health/ready
	GET  /metrics                          Prometheus exposition
	GET  /swagger/*                        OpenAPI UI

Every JSON response uses the models.APIResponse envelope. Errors carry a
machine-readable code (VALIDATION_ERROR, NOT_FOUND, DATABASE_ERROR,
RATE_LIMIT_EXCEEDED, SERVICE_UNAVAILABLE, INTERNAL_ERROR) and never expose
internal error text for server-side failures.

Middleware order: request ID, real IP, panic recovery, CORS, Prometheus
metrics, gzip compression, then per-group rate limits (httprate) and
security headers.

The handlers depend on small interfaces (Store, Recommender, Reloader,
InteractionLogger, BusStatusProvider) implemented by the database,
recommend/engine and events packages, so tests can substitute fakes.
*/
package api
