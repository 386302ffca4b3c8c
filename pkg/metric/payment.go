package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

var _ Payment = (*paymentMetrics)(nil)

type paymentMetrics struct {
	initiated *prometheus.CounterVec
	settled   *prometheus.CounterVec
	amounts   prometheus.Histogram
}

func newPaymentMetrics(registry *promRegistry) *paymentMetrics {
	initiated := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_checkouts_initiated_total",
			Help: "Total number of checkouts handed off to the gateway by plan",
		},
		[]string{"plan"},
	)

	settled := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_checkouts_settled_total",
			Help: "Total number of return trips settled by final status",
		},
		[]string{"status"},
	)

	amounts := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "payment_amount_inr",
			Help:    "Checkout amounts in INR",
			Buckets: prometheus.ExponentialBuckets(100, 4, 8),
		},
	)

	registry.registry.MustRegister(initiated, settled, amounts)

	return &paymentMetrics{
		initiated: initiated,
		settled:   settled,
		amounts:   amounts,
	}
}

func (m *paymentMetrics) Initiated(plan string) {
	m.initiated.WithLabelValues(plan).Add(1)
}

func (m *paymentMetrics) Settled(status string) {
	m.settled.WithLabelValues(status).Add(1)
}

func (m *paymentMetrics) ObserveAmount(amount float64) {
	m.amounts.Observe(amount)
}
