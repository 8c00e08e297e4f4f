// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"time"

	"culqi-payments-be/internal/pkg/logger"
	"culqi-payments-be/internal/pkg/mailer"
	"culqi-payments-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// mailEnvelope mirrors what EventEmitter puts on the mail topic.
type mailEnvelope struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload"`
	At      time.Time              `json:"at"`
}

// MailConsumer turns domain events into customer emails. It runs on the
// in-process bus so a payment request never waits on SMTP.
type MailConsumer struct {
	subscriber message.Subscriber
	mailer     mailer.IEmailService
	logger     logger.ILogger
}

func NewMailConsumer(subscriber message.Subscriber, emailService mailer.IEmailService, log logger.ILogger) *MailConsumer {
	return &MailConsumer{
		subscriber: subscriber,
		mailer:     emailService,
		logger:     log,
	}
}

// Start consumes the mail topic until the context is cancelled.
func (c *MailConsumer) Start(ctx context.Context) error {
	messages, err := c.subscriber.Subscribe(ctx, MailTopic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			c.handle(msg)
			msg.Ack()
		}
	}()
	return nil
}

func (c *MailConsumer) handle(msg *message.Message) {
	var envelope mailEnvelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		c.logger.Warn("MailConsumer", "Dropping malformed mail event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	email := stringField(envelope.Payload, "email")
	if email == "" {
		return
	}

	var err error
	switch envelope.Type {
	case events.TypePaymentSucceeded:
		err = c.mailer.SendPaymentReceipt(email,
			stringField(envelope.Payload, "reference"),
			intField(envelope.Payload, "amount_cents"),
			stringField(envelope.Payload, "currency"))
	case events.TypePaymentFailed:
		err = c.mailer.SendPaymentFailed(email,
			stringField(envelope.Payload, "reference"),
			stringField(envelope.Payload, "state_message"))
	case events.TypeSubscriptionPastDue:
		err = c.mailer.SendDunningNotice(email,
			stringField(envelope.Payload, "plan"),
			int(intField(envelope.Payload, "attempt")))
	case events.TypeSubscriptionExpired:
		err = c.mailer.SendSubscriptionExpired(email,
			stringField(envelope.Payload, "plan"))
	case events.TypeRefundSucceeded:
		err = c.mailer.SendRefundConfirmation(email,
			stringField(envelope.Payload, "reference"),
			intField(envelope.Payload, "amount_cents"),
			stringField(envelope.Payload, "currency"))
	default:
		return
	}

	if err != nil {
		c.logger.Warn("MailConsumer", "Email delivery failed", map[string]interface{}{
			"event_type": envelope.Type,
			"to":         email,
			"error":      err.Error(),
		})
	}
}

func stringField(payload map[string]interface{}, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}

// intField tolerates the float64 JSON numbers decode into.
func intField(payload map[string]interface{}, key string) int64 {
	switch v := payload[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}
