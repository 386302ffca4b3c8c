package client

import (
	"context"
	"fmt"
	"time"

	"wfconsole/internal/config"
	"wfconsole/internal/entity"
	"wfconsole/pkg/logger"
	"wfconsole/pkg/metric"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
)

const (
	_generateHashPath = "/api/payment/generate-hash"
	_verifyHashPath   = "/api/payment/verify-hash"

	_signerTarget = "hash-signer"
)

type (
	generateHashResponse struct {
		Hash string `json:"hash"`
	}

	verifyHashResponse struct {
		Valid bool `json:"valid"`
	}
)

// HashSignerClient talks to the backend that holds the gateway salt. The
// console never computes or checks a payment hash itself: both directions go
// through this client, and the parameters stay opaque on this side.
type HashSignerClient struct {
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker
	baseURL string
	log     logger.Logger
	metrics metric.Gateway
}

func NewHashSignerClient(
	cfg *config.Payment,
	log logger.Logger,
	metrics metric.Gateway,
) *HashSignerClient {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        _signerTarget,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerStateChange(name, to.String())
			log.Warnw("signer circuit state changed",
				"target", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &HashSignerClient{
		client: resty.New().
			SetTimeout(cfg.SignerTimeout).
			SetRetryCount(0),
		breaker: breaker,
		baseURL: cfg.SignerBaseURL,
		log:     log,
		metrics: metrics,
	}
}

// GenerateHash requests a signature for the exact parameter set (hash field
// excluded by the wire contract).
func (c *HashSignerClient) GenerateHash(
	ctx context.Context,
	params *entity.PaymentParams,
) (string, error) {
	const op = "client.signer.GenerateHash"

	start := time.Now()
	result, err := c.breaker.Execute(func() (any, error) {
		var out generateHashResponse
		resp, httpErr := c.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(params).
			SetResult(&out).
			Post(c.baseURL + _generateHashPath)
		if httpErr != nil {
			return nil, fmt.Errorf("%s: http: %w", op, httpErr)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("%s: signer returned status %d", op, resp.StatusCode())
		}
		if out.Hash == "" {
			return nil, fmt.Errorf("%s: signer returned empty hash", op)
		}
		return out.Hash, nil
	})
	if err != nil {
		c.metrics.Call(_signerTarget, "error", time.Since(start))
		return "", fmt.Errorf("%s: %w", op, err)
	}
	c.metrics.Call(_signerTarget, "ok", time.Since(start))

	hash, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("%s: unexpected result type %T", op, result)
	}
	return hash, nil
}

// VerifyHash submits the gateway's full return-trip parameter set for
// re-validation. Any transport failure is an error distinct from a clean
// "not valid" verdict; callers collapse both into a generic user outcome.
func (c *HashSignerClient) VerifyHash(
	ctx context.Context,
	params map[string]string,
) (bool, error) {
	const op = "client.signer.VerifyHash"

	start := time.Now()
	result, err := c.breaker.Execute(func() (any, error) {
		var out verifyHashResponse
		resp, httpErr := c.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(params).
			SetResult(&out).
			Post(c.baseURL + _verifyHashPath)
		if httpErr != nil {
			return nil, fmt.Errorf("%s: http: %w", op, httpErr)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("%s: verifier returned status %d", op, resp.StatusCode())
		}
		return out.Valid, nil
	})
	if err != nil {
		c.metrics.Call(_signerTarget, "error", time.Since(start))
		return false, fmt.Errorf("%s: %w", op, err)
	}
	c.metrics.Call(_signerTarget, "ok", time.Since(start))

	valid, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("%s: unexpected result type %T", op, result)
	}
	return valid, nil
}
