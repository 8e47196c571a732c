// Package metrics provides Prometheus metrics for the courtside rating service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Rating pipeline metrics.
	matchesApplied      prometheus.Counter
	matchesDuplicate    prometheus.Counter
	matchesRejected     prometheus.Counter
	ratingUpdateLatency prometheus.Histogram
	playersTotal        prometheus.Gauge

	// Matchmaker metrics.
	matchmakerSearchDuration  prometheus.Histogram
	matchmakerCandidates      prometheus.Histogram
	matchmakerBudgetExhausted prometheus.Counter

	// Store metrics.
	storeLatency *prometheus.HistogramVec

	// HTTP performance metrics.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "courtside",
		subsystem:        "rating",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.matchesApplied = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_applied_total",
		Help:      "Total number of matches applied to player ratings",
	})

	m.matchesDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_duplicate_total",
		Help:      "Total number of replayed match submissions ignored",
	})

	m.matchesRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_rejected_total",
		Help:      "Total number of match submissions rejected as invalid",
	})

	m.ratingUpdateLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rating_update_latency_milliseconds",
		Help:      "Histogram of full rating update latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.playersTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "players_total",
		Help:      "Total number of players tracked by the rating store",
	})

	m.matchmakerSearchDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matchmaker_search_duration_milliseconds",
		Help:      "Histogram of matchmaker search duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.matchmakerCandidates = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matchmaker_candidates_evaluated",
		Help:      "Histogram of candidate assignments evaluated per search",
		Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
	})

	m.matchmakerBudgetExhausted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matchmaker_budget_exhausted_total",
		Help:      "Total number of searches that hit the evaluation budget",
	})

	m.storeLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "store_latency_milliseconds",
			Help:      "Rating store operation latency in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"op"},
	)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// RecordMatchApplied increments the applied matches counter.
func RecordMatchApplied() {
	globalManager.matchesApplied.Inc()
}

// RecordMatchDuplicate increments the duplicate matches counter.
func RecordMatchDuplicate() {
	globalManager.matchesDuplicate.Inc()
}

// RecordMatchRejected increments the rejected matches counter.
func RecordMatchRejected() {
	globalManager.matchesRejected.Inc()
}

// RecordRatingUpdateLatency records one full rating update in milliseconds.
func RecordRatingUpdateLatency(latencyMs float64) {
	globalManager.ratingUpdateLatency.Observe(latencyMs)
}

// UpdatePlayersTotal sets the tracked player count.
func UpdatePlayersTotal(count int) {
	globalManager.playersTotal.Set(float64(count))
}

// RecordMatchmakerSearchDuration records one matchmaker search in milliseconds.
func RecordMatchmakerSearchDuration(latencyMs float64) {
	globalManager.matchmakerSearchDuration.Observe(latencyMs)
}

// RecordMatchmakerCandidates records the candidate count of one search.
func RecordMatchmakerCandidates(count int) {
	globalManager.matchmakerCandidates.Observe(float64(count))
}

// RecordMatchmakerBudgetExhausted increments the budget exhaustion counter.
func RecordMatchmakerBudgetExhausted() {
	globalManager.matchmakerBudgetExhausted.Inc()
}

// RecordStoreLatency records one store operation with its op label.
func RecordStoreLatency(op string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Handler returns an http.Handler serving the custom registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}
