package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

var _ OTP = (*otpMetrics)(nil)

type otpMetrics struct {
	issued   *prometheus.CounterVec
	verified prometheus.Counter
	rejected *prometheus.CounterVec
}

func newOTPMetrics(registry *promRegistry) *otpMetrics {
	issued := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otp_codes_issued_total",
			Help: "Total number of verification codes issued by delivery channel",
		},
		[]string{"channel"},
	)

	verified := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "otp_codes_verified_total",
			Help: "Total number of successfully verified codes",
		},
	)

	rejected := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otp_codes_rejected_total",
			Help: "Total number of rejected verification attempts by reason",
		},
		[]string{"reason"},
	)

	registry.registry.MustRegister(issued, verified, rejected)

	return &otpMetrics{
		issued:   issued,
		verified: verified,
		rejected: rejected,
	}
}

func (m *otpMetrics) Issued(channel string) {
	m.issued.WithLabelValues(channel).Add(1)
}

func (m *otpMetrics) Verified() {
	m.verified.Add(1)
}

func (m *otpMetrics) Rejected(reason string) {
	m.rejected.WithLabelValues(reason).Add(1)
}
