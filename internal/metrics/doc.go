// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

/*
Package metrics provides Prometheus metrics collection and export for observability.

Collectors are registered with the default registry through promauto and
exposed at /metrics in Prometheus text format:

	curl http://localhost:8000/metrics

# Available Metrics

Recommendation Metrics:
  - recommend_requests_total, recommend_duration_seconds: by source (model, fallback)
  - recommend_fallbacks_total: by reason (no_model, cold_start, breaker_open, model_error)
  - recommend_cache_hits_total, recommend_cache_misses_total
  - constraint_relaxations_total: by stage
  - constraint_allergy_exhaustions_total
  - recommend_nonfinite_scores_total
  - circuit_breaker_state, circuit_breaker_transitions_total

Serving Bundle Metrics:
  - serving_bundle_version, serving_bundle_reloads_total, serving_bundle_last_swap_timestamp

Training Metrics:
  - training_runs_total, training_duration_seconds, training_epochs_total
  - training_loss: by split (train, validation)
  - evaluation_metric: by metric (ndcg@k, recall@k, mrr)

Database Metrics:
  - duckdb_query_duration_seconds, duckdb_query_errors_total
  - recipe_parse_failures_total: by field

API Metrics:
  - api_requests_total, api_request_duration_seconds, api_active_requests
  - api_rate_limit_hits_total

Event Metrics:
  - events_published_total, events_consumed_total, event_processing_duration_seconds

WAL metrics are defined in the wal package.
*/
package metrics
