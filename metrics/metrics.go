// Package metrics provides Prometheus metrics collection for the lookup service.
// It exports HTTP request metrics for the server plus domain metrics:
//   - label_lookup_total: Counter with strategy and outcome labels
//   - label_lookup_duration_seconds: Histogram of remote label calls
//   - search_outcome_total: Counter of orchestrated searches by final phase
//   - search_history_entries: Gauge with the current history size
//
// All metrics are automatically registered with the Prometheus default registry
// during package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of inbound rate limiter buckets",
		},
	)

	LabelLookupTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "label_lookup_total",
			Help: "Remote label lookups by strategy and outcome",
		},
		[]string{"strategy", "outcome"},
	)

	LabelLookupDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "label_lookup_duration_seconds",
			Help:    "Remote label lookup latency",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		},
		[]string{"strategy"},
	)

	SearchOutcomeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_outcome_total",
			Help: "Orchestrated searches by final phase",
		},
		[]string{"phase"},
	)

	SearchHistoryEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "search_history_entries",
			Help: "Entries currently held in the search history",
		},
	)
)

// Lookup outcomes recorded on LabelLookupTotal.
const (
	OutcomeSuccess  = "success"
	OutcomeEmpty    = "empty"
	OutcomeUpstream = "upstream_error"
	OutcomeNetwork  = "network_error"
	OutcomeDecode   = "decode_error"
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(LabelLookupTotal)
	prometheus.MustRegister(LabelLookupDuration)
	prometheus.MustRegister(SearchOutcomeTotal)
	prometheus.MustRegister(SearchHistoryEntries)
}
