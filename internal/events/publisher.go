package events

import (
	"context"
	"encoding/json"
	"time"

	"wfconsole/internal/entity"
	"wfconsole/pkg/logger"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Event types carried on the billing topic.
const (
	EventPhoneVerified  = "otp.verified"
	EventPaymentSettled = "payment.settled"
)

type envelope struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

type phoneVerifiedPayload struct {
	PhoneKey string `json:"phone_key"`
}

// KafkaPublisher emits billing events for downstream analytics. Publishing is
// best effort: a failed write is logged and dropped, never surfaced to the
// user flow that triggered it.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger logger.Logger
}

func NewKafkaPublisher(writer *kafka.Writer, log logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, logger: log}
}

func (p *KafkaPublisher) PhoneVerified(ctx context.Context, phoneKey string) {
	p.publish(ctx, EventPhoneVerified, phoneKey, phoneVerifiedPayload{PhoneKey: phoneKey})
}

func (p *KafkaPublisher) PaymentSettled(ctx context.Context, txn *entity.PaymentTransaction) {
	p.publish(ctx, EventPaymentSettled, txn.TxnID, txn)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func (p *KafkaPublisher) publish(ctx context.Context, eventType, key string, payload any) {
	const op = "events.publish"

	body, err := json.Marshal(envelope{
		EventID:    uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now(),
		Payload:    payload,
	})
	if err != nil {
		p.logger.Ctx(ctx).Errorw("marshaling event failed",
			"op", op, "type", eventType, "error", err)
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(eventType)},
		},
	})
	if err != nil {
		p.logger.Ctx(ctx).Errorw("publishing event failed",
			"op", op, "type", eventType, "key", key, "error", err)
		return
	}

	p.logger.Ctx(ctx).Debugw("event published", "type", eventType, "key", key)
}

// NopPublisher satisfies the publisher capability when events are disabled.
type NopPublisher struct{}

func (NopPublisher) PhoneVerified(context.Context, string) {}

func (NopPublisher) PaymentSettled(context.Context, *entity.PaymentTransaction) {}
