package metric

import (
	"net/http"
	"time"
)

//go:generate mockgen -source=metrics.go -destination=mock/metrics.go -package=mock_metric

type (
	Factory interface {
		HTTP() HTTP
		Transaction() Transaction
		Cache() Cache
		OTP() OTP
		Payment() Payment
		Gateway() Gateway
		Handler() http.Handler
	}

	HTTP interface {
		Request(method, path string, status int, duration time.Duration)
		SlowRequest(method, path string, status int, duration time.Duration)
	}

	Transaction interface {
		ObserveDuration(operation string, duration time.Duration)
		IncrementRetries(operation string)
		IncrementFailures(operation string)
	}

	Cache interface {
		Hit(cacheType string)
		Miss(cacheType string)
		Eviction(cacheType string, reason string)
		Size(cacheType string, size int)
	}

	OTP interface {
		Issued(channel string)
		Verified()
		Rejected(reason string)
	}

	Payment interface {
		Initiated(plan string)
		Settled(status string)
		ObserveAmount(amount float64)
	}

	Gateway interface {
		Call(target, outcome string, duration time.Duration)
		BreakerStateChange(target, state string)
	}
)
