package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// weather data service.
type Metrics struct {
	ToolCalls    *prometheus.CounterVec   // labels: tool, outcome={success,error}
	ToolDuration *prometheus.HistogramVec // labels: tool

	// Upstream provider metrics.
	ProviderRequests *prometheus.CounterVec   // labels: provider, operation, outcome={success,error}
	ProviderDuration *prometheus.HistogramVec // labels: provider, operation
	Failovers        *prometheus.CounterVec   // labels: operation

	// Cache metrics.
	CacheLookups *prometheus.CounterVec // labels: category, result={hit,miss}
	CacheEntries *prometheus.GaugeVec   // labels: category

	// Best-effort alerts subsystem.
	AlertFetches *prometheus.CounterVec // labels: outcome={success,error,disabled}
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.ToolCalls,
		m.ToolDuration,
		m.ProviderRequests,
		m.ProviderDuration,
		m.Failovers,
		m.CacheLookups,
		m.CacheEntries,
		m.AlertFetches,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ToolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "raws",
			Name:      "tool_calls_total",
			Help:      "Tool invocations by tool name and outcome.",
		}, []string{"tool", "outcome"}),
		ToolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "raws",
			Name:      "tool_duration_seconds",
			Help:      "End-to-end tool call duration.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}, []string{"tool"}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "raws",
			Name:      "provider_requests_total",
			Help:      "Upstream provider requests by provider, operation, and outcome.",
		}, []string{"provider", "operation", "outcome"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "raws",
			Name:      "provider_request_duration_seconds",
			Help:      "Upstream provider request duration including retries.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"provider", "operation"}),
		Failovers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "raws",
			Name:      "provider_failovers_total",
			Help:      "Requests served by a non-primary provider after failover.",
		}, []string{"operation"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "raws",
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by data category and result.",
		}, []string{"category", "result"}),
		CacheEntries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "raws",
			Name:      "cache_entries",
			Help:      "Live cache entries by data category, updated on sweep.",
		}, []string{"category"}),
		AlertFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "raws",
			Name:      "alert_fetches_total",
			Help:      "Best-effort alert fetches by outcome.",
		}, []string{"outcome"}),
	}
}
