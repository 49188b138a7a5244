// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package metrics

import (
	"math"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	RecipeParseFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_parse_failures_total",
			Help: "Total number of recipe fields that failed to parse and were defaulted",
		},
		[]string{"field"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)
)

// Recommendation Metrics
var (
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation responses by scoring path",
		},
		[]string{"source"}, // "model", "fallback"
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "Recommendation latency in seconds by scoring path",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"source"},
	)

	RecommendFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_fallbacks_total",
			Help: "Total number of requests dispatched to the fallback scorer",
		},
		[]string{"reason"}, // "no_model", "cold_start", "breaker_open", "model_error"
	)

	RecommendCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_hits_total",
			Help: "Total number of recommendation response cache hits",
		},
	)

	RecommendCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_misses_total",
			Help: "Total number of recommendation response cache misses",
		},
	)

	ConstraintRelaxations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "constraint_relaxations_total",
			Help: "Total number of constraint stages skipped because they removed every candidate",
		},
		[]string{"stage"},
	)

	AllergyExhaustions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "constraint_allergy_exhaustions_total",
			Help: "Total number of requests where allergy filtering removed every candidate",
		},
	)

	NonFiniteScores = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_nonfinite_scores_total",
			Help: "Total number of NaN or infinite scores coerced to zero",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

// Serving Bundle Metrics
var (
	BundleVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "serving_bundle_version",
			Help: "Checkpoint version of the active serving bundle (0 when serving fallback only)",
		},
	)

	BundleReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "serving_bundle_reloads_total",
			Help: "Total number of serving bundle reload attempts",
		},
		[]string{"result"}, // "swapped", "unchanged", "error"
	)

	BundleLastSwap = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "serving_bundle_last_swap_timestamp",
			Help: "Unix timestamp of the last serving bundle swap",
		},
	)
)

// Training Metrics
var (
	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "training_runs_total",
			Help: "Total number of training runs",
		},
		[]string{"result"}, // "success", "error"
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "training_duration_seconds",
			Help:    "Duration of training runs in seconds",
			Buckets: []float64{1, 5, 15, 60, 300, 900, 1800, 3600},
		},
	)

	TrainingEpochs = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "training_epochs_total",
			Help: "Total number of completed training epochs",
		},
	)

	TrainingLoss = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "training_loss",
			Help: "Most recent epoch loss by split",
		},
		[]string{"split"}, // "train", "validation"
	)

	EvaluationMetric = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "evaluation_metric",
			Help: "Most recent offline evaluation results",
		},
		[]string{"metric"}, // "ndcg@10", "recall@20", "mrr"
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of events published",
		},
		[]string{"topic", "result"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_consumed_total",
			Help: "Total number of events consumed",
		},
		[]string{"topic", "result"},
	)

	EventProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "event_processing_duration_seconds",
			Help:    "Duration of event handler execution in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"topic"},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordParseFailure records a defaulted recipe field.
func RecordParseFailure(field string) {
	RecipeParseFailures.WithLabelValues(field).Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit records a throttled request.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordRecommendation records a served response.
func RecordRecommendation(source string, duration time.Duration) {
	RecommendRequests.WithLabelValues(source).Inc()
	RecommendDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordFallback records a dispatch to the fallback scorer.
func RecordFallback(reason string) {
	RecommendFallbacks.WithLabelValues(reason).Inc()
}

// RecordRecommendCache records a response cache lookup.
func RecordRecommendCache(hit bool) {
	if hit {
		RecommendCacheHits.Inc()
	} else {
		RecommendCacheMisses.Inc()
	}
}

// RecordConstraintRelaxation records a skipped constraint stage.
func RecordConstraintRelaxation(stage string) {
	ConstraintRelaxations.WithLabelValues(stage).Inc()
}

// RecordAllergyExhaustion records an allergy stage that emptied the result.
func RecordAllergyExhaustion() {
	AllergyExhaustions.Inc()
}

// RecordNonFiniteScores records n scores coerced to zero.
func RecordNonFiniteScores(n int) {
	if n > 0 {
		NonFiniteScores.Add(float64(n))
	}
}

// RecordBreakerTransition records a circuit breaker state change. States
// are the gobreaker state names.
func RecordBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	var v float64
	switch to {
	case "half-open":
		v = 1
	case "open":
		v = 2
	}
	CircuitBreakerState.WithLabelValues(name).Set(v)
}

// RecordBundleReload records a reload attempt. A swap updates the version
// gauge and swap timestamp.
func RecordBundleReload(result string, version int) {
	BundleReloads.WithLabelValues(result).Inc()
	if result == "swapped" {
		BundleVersion.Set(float64(version))
		BundleLastSwap.Set(float64(time.Now().Unix()))
	}
}

// RecordTrainingRun records a finished training run.
func RecordTrainingRun(duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	TrainingRuns.WithLabelValues(result).Inc()
	TrainingDuration.Observe(duration.Seconds())
}

// RecordTrainingEpoch records losses of a completed epoch. A non-finite
// validation loss leaves the validation gauge untouched.
func RecordTrainingEpoch(trainLoss, valLoss float64) {
	TrainingEpochs.Inc()
	TrainingLoss.WithLabelValues("train").Set(trainLoss)
	if !math.IsNaN(valLoss) && !math.IsInf(valLoss, 0) {
		TrainingLoss.WithLabelValues("validation").Set(valLoss)
	}
}

// SetEvaluationMetrics publishes offline evaluation results.
func SetEvaluationMetrics(results map[string]float64) {
	for name, v := range results {
		EvaluationMetric.WithLabelValues(name).Set(v)
	}
}

// RecordEventPublished records a publish attempt.
func RecordEventPublished(topic string, err error) {
	EventsPublished.WithLabelValues(topic, resultLabel(err)).Inc()
}

// RecordEventConsumed records a handled event.
func RecordEventConsumed(topic string, duration time.Duration, err error) {
	EventsConsumed.WithLabelValues(topic, resultLabel(err)).Inc()
	EventProcessingDuration.WithLabelValues(topic).Observe(duration.Seconds())
}

// StatusLabel formats an HTTP status code as a label value.
func StatusLabel(code int) string {
	return strconv.Itoa(code)
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
