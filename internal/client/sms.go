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
)

const _smsTarget = "sms-gateway"

// SMSClient dispatches verification codes through the external SMS API. The
// message and destination travel as query parameters per the provider's
// contract.
type SMSClient struct {
	client   *resty.Client
	baseURL  string
	senderID string
	apiKey   string
	log      logger.Logger
	metrics  metric.Gateway
}

func NewSMSClient(cfg *config.SMS, log logger.Logger, metrics metric.Gateway) *SMSClient {
	return &SMSClient{
		client: resty.New().
			SetTimeout(cfg.Timeout).
			SetRetryCount(0),
		baseURL:  cfg.BaseURL,
		senderID: cfg.SenderID,
		apiKey:   cfg.APIKey,
		log:      log,
		metrics:  metrics,
	}
}

// Configured reports whether a transport credential is present. Without one
// every Send fails, which the OTP service may convert into the demo fallback.
func (c *SMSClient) Configured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

func (c *SMSClient) Send(ctx context.Context, phone, countryCode, message string) error {
	const op = "client.sms.Send"

	if !c.Configured() {
		return fmt.Errorf("%s: %w: transport not configured", op, entity.ErrSMSDispatchFailed)
	}

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"to":           phone,
			"country_code": countryCode,
			"message":      message,
			"sender_id":    c.senderID,
			"api_key":      c.apiKey,
		}).
		Get(c.baseURL)
	if err != nil {
		c.metrics.Call(_smsTarget, "error", time.Since(start))
		return fmt.Errorf("%s: %w: %w", op, entity.ErrSMSDispatchFailed, err)
	}
	if resp.IsError() {
		c.metrics.Call(_smsTarget, "error", time.Since(start))
		return fmt.Errorf("%s: %w: provider returned status %d",
			op, entity.ErrSMSDispatchFailed, resp.StatusCode())
	}
	c.metrics.Call(_smsTarget, "ok", time.Since(start))

	return nil
}
