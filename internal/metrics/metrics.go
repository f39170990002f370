// Package metrics holds the Prometheus collectors of the engine. They register on the
// default registry and are served by promhttp at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch kinds and outcomes used as label values.
const (
	KindQuote   = "quote"
	KindHistory = "history"

	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeNotFound = "not_found"
	OutcomeStale    = "stale"
)

var (
	// FetchTotal counts quote and history fetches by outcome.
	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_fetch_total",
			Help: "Total number of quote and history fetches",
		},
		[]string{"kind", "outcome"},
	)

	PersistFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "portfolio_persist_failures_total",
			Help: "Total number of allocation snapshots that failed to save",
		},
	)

	HoldingsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "portfolio_holdings",
			Help: "Number of holdings currently in the portfolio",
		},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portfolio_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "portfolio_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"service"},
	)
)

// RecordFetch counts one fetch of kind with outcome.
func RecordFetch(kind, outcome string) {
	FetchTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordPersistFailure counts one failed snapshot save.
func RecordPersistFailure() {
	PersistFailuresTotal.Inc()
}

// SetHoldings publishes the current store size.
func SetHoldings(n int) {
	HoldingsGauge.Set(float64(n))
}

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, statusCode string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method).Observe(duration)
}

// UpdateCircuitBreakerState records circuit breaker state changes
func UpdateCircuitBreakerState(service string, state float64) {
	CircuitBreakerState.WithLabelValues(service).Set(state)
}
