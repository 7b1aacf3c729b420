// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the Larder backend:
// - HTTP endpoint latency and throughput
// - Prediction pipeline (local estimator vs remote model service)
// - Feedback ingestion and personalization activity
// - Profile and inventory store performance
// - Expiry sweep runs

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_requests",
			Help: "Current number of in-flight HTTP requests",
		},
	)

	HTTPRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Prediction Pipeline Metrics
	PredictorRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictor_requests_total",
			Help: "Total number of expiry predictions by source and outcome",
		},
		[]string{"source", "outcome"}, // source: "local", "remote"
	)

	PredictionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prediction_duration_seconds",
			Help:    "End-to-end prediction pipeline duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	PredictionDaysAdjustment = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prediction_days_adjustment",
			Help:    "Absolute shift in days applied by personalization deltas",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 3, 5, 7},
		},
	)

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"breaker"},
	)

	// Feedback and Personalization Metrics
	FeedbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_total",
			Help: "Total number of feedback submissions by label",
		},
		[]string{"label"}, // "early", "on_time", "late"
	)

	PersonalizationActivations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "personalization_activations_total",
			Help: "Total number of items crossing the personalization threshold",
		},
	)

	DeltaMagnitude = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "personalization_delta_days",
			Help:    "Absolute magnitude of learned adjustment deltas in days",
			Buckets: []float64{0.25, 0.5, 1, 2, 3, 5, 7},
		},
		[]string{"scope"}, // "item", "category"
	)

	// Store Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB inventory queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	ProfileStoreOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_store_operations_total",
			Help: "Total number of profile store transactions by outcome",
		},
		[]string{"operation", "outcome"}, // operation: "get", "apply_feedback", "put"
	)

	// Sweep Metrics
	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sweep_duration_seconds",
			Help:    "Duration of expiry sweep runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60},
		},
	)

	SweepItemsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sweep_items_processed_total",
			Help: "Total number of inventory items rescored during sweeps",
		},
	)

	SweepLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sweep_last_success_timestamp",
			Help: "Unix timestamp of the last successful expiry sweep",
		},
	)

	SweepErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sweep_errors_total",
			Help: "Total number of failed expiry sweep runs",
		},
	)

	// Event Bus Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of domain events published",
		},
		[]string{"topic"},
	)
)

// RecordHTTPRequest records a completed HTTP request.
func RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordDBQuery records an inventory query and its outcome.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordFeedback records a feedback submission and the resulting deltas.
func RecordFeedback(label string, itemDelta, categoryDelta float64) {
	FeedbackTotal.WithLabelValues(label).Inc()
	DeltaMagnitude.WithLabelValues("item").Observe(abs(itemDelta))
	DeltaMagnitude.WithLabelValues("category").Observe(abs(categoryDelta))
}

// RecordSweep records a completed sweep run.
func RecordSweep(duration time.Duration, itemsProcessed int, err error) {
	SweepDuration.Observe(duration.Seconds())
	SweepItemsProcessed.Add(float64(itemsProcessed))
	if err != nil {
		SweepErrors.Inc()
		return
	}
	SweepLastSuccess.Set(float64(time.Now().Unix()))
}

// TrackActiveRequest tracks in-flight HTTP requests.
func TrackActiveRequest(inc bool) {
	if inc {
		HTTPActiveRequests.Inc()
	} else {
		HTTPActiveRequests.Dec()
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
