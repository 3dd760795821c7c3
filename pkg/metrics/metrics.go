// Package metrics provides the Prometheus instrumentation for cinedeck.
//
// All collectors register on the default registry through promauto, so the
// server package only needs promhttp.Handler() to expose them.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CatalogRequests counts catalog calls by endpoint and outcome (ok, error, breaker_open).
	CatalogRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinedeck_catalog_requests_total",
			Help: "Total number of catalog API requests",
		},
		[]string{"endpoint", "outcome"},
	)

	CatalogRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinedeck_catalog_request_duration_seconds",
			Help:    "Duration of catalog API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cinedeck_circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	SamplerAdmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinedeck_sampler_admitted_total",
			Help: "Candidates admitted into a sample",
		},
		[]string{"content_type"},
	)

	// SamplerDiscarded counts dropped candidates by reason (no_poster, hidden, duplicate).
	SamplerDiscarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinedeck_sampler_discarded_total",
			Help: "Candidates discarded while sampling",
		},
		[]string{"content_type", "reason"},
	)

	SamplerPageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinedeck_sampler_page_failures_total",
			Help: "Catalog pages that failed during sampling",
		},
		[]string{"content_type"},
	)

	FeedbackEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinedeck_feedback_events_total",
			Help: "Feedback events recorded by action",
		},
		[]string{"action"},
	)

	StorageRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinedeck_storage_retries_total",
			Help: "Retried key-value store writes",
		},
		[]string{"key"},
	)

	DeckRefills = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinedeck_deck_refills_total",
			Help: "Number of presentation queue refills",
		},
	)
)

// RecordCatalogRequest records the outcome and latency of one catalog call.
func RecordCatalogRequest(endpoint, outcome string, duration time.Duration) {
	CatalogRequests.WithLabelValues(endpoint, outcome).Inc()
	CatalogRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}
