package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var _ Gateway = (*gatewayMetrics)(nil)

type gatewayMetrics struct {
	calls         *prometheus.CounterVec
	callDuration  *prometheus.HistogramVec
	breakerStates *prometheus.CounterVec
}

func newGatewayMetrics(registry *promRegistry) *gatewayMetrics {
	calls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_calls_total",
			Help: "Total number of outbound calls to external collaborators",
		},
		[]string{"target", "outcome"},
	)

	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_call_duration_seconds",
			Help:    "Outbound call duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"target", "outcome"},
	)

	breakerStates := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_breaker_transitions_total",
			Help: "Circuit breaker state transitions by target",
		},
		[]string{"target", "state"},
	)

	registry.registry.MustRegister(calls, duration, breakerStates)

	return &gatewayMetrics{
		calls:         calls,
		callDuration:  duration,
		breakerStates: breakerStates,
	}
}

func (m *gatewayMetrics) Call(target, outcome string, duration time.Duration) {
	m.calls.WithLabelValues(target, outcome).Add(1)
	m.callDuration.WithLabelValues(target, outcome).Observe(duration.Seconds())
}

func (m *gatewayMetrics) BreakerStateChange(target, state string) {
	m.breakerStates.WithLabelValues(target, state).Add(1)
}
