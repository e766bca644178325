// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// SimulatedResponseDuration tracks how long a simulated response took to stream.
	SimulatedResponseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "simulated_response_duration_seconds",
			Help:    "Simulated assistant response duration",
			Buckets: []float64{.1, .25, .5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"action", "outcome"},
	)

	// SimulatedResponsesTotal counts simulated responses by action and outcome.
	SimulatedResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simulated_responses_total",
			Help: "Total simulated assistant responses",
		},
		[]string{"action", "outcome"},
	)

	// StreamedCharactersTotal counts characters emitted as text deltas.
	StreamedCharactersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamed_characters_total",
			Help: "Total characters streamed as text deltas",
		},
		[]string{"action"},
	)

	// InjectedFailuresTotal counts simulated failures by injection point.
	InjectedFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "injected_failures_total",
			Help: "Total simulated failures injected",
		},
		[]string{"point"},
	)

	// SSEConnectionsActive tracks active SSE connections.
	SSEConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sse_connections_active",
			Help: "Number of active SSE connections",
		},
	)

	// TapPublishErrorsTotal counts failed response tap publishes.
	TapPublishErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "response_tap_publish_errors_total",
			Help: "Total response summaries that could not be published",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordSimulatedResponse records metrics for one simulated response.
func RecordSimulatedResponse(action, outcome string, duration float64, characters int) {
	SimulatedResponseDuration.WithLabelValues(action, outcome).Observe(duration)
	SimulatedResponsesTotal.WithLabelValues(action, outcome).Inc()
	StreamedCharactersTotal.WithLabelValues(action).Add(float64(characters))
}

// RecordInjectedFailure records a simulated failure at the named point.
func RecordInjectedFailure(point string) {
	InjectedFailuresTotal.WithLabelValues(point).Inc()
}

// IncrementSSEConnections increments the active SSE connection count.
func IncrementSSEConnections() {
	SSEConnectionsActive.Inc()
}

// DecrementSSEConnections decrements the active SSE connection count.
func DecrementSSEConnections() {
	SSEConnectionsActive.Dec()
}
