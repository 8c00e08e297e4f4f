// FILE: internal/service/event_emitter.go
package service

import (
	"context"
	"encoding/json"

	"culqi-payments-be/internal/entity"
	"culqi-payments-be/internal/pkg/logger"
	"culqi-payments-be/pkg/events"
	pktNats "culqi-payments-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// MailTopic is the in-process topic the mail consumer listens on.
const MailTopic = "payments.mail"

// EventEmitter fans domain events out to the durable NATS stream (for
// external consumers) and the in-process bus (for the mail consumer).
// Publishing is best effort: a broker hiccup never fails the payment.
type EventEmitter struct {
	natsPublisher *pktNats.Publisher
	bus           message.Publisher
	logger        logger.ILogger
}

func NewEventEmitter(natsPublisher *pktNats.Publisher, bus message.Publisher, log logger.ILogger) *EventEmitter {
	return &EventEmitter{
		natsPublisher: natsPublisher,
		bus:           bus,
		logger:        log,
	}
}

func (e *EventEmitter) Emit(ctx context.Context, event events.Event) {
	if e == nil {
		return
	}

	if e.natsPublisher != nil {
		if err := e.natsPublisher.Publish(ctx, event); err != nil {
			e.logger.Warn("EventEmitter", "Failed to publish event to NATS", map[string]interface{}{
				"event_type": event.EventType(),
				"error":      err.Error(),
			})
		}
	}

	if e.bus != nil {
		payload, err := json.Marshal(map[string]interface{}{
			"type":    event.EventType(),
			"payload": event.Payload(),
			"at":      event.Timestamp(),
		})
		if err != nil {
			return
		}
		msg := message.NewMessage(uuid.NewString(), payload)
		if err := e.bus.Publish(MailTopic, msg); err != nil {
			e.logger.Warn("EventEmitter", "Failed to publish event to mail bus", map[string]interface{}{
				"event_type": event.EventType(),
				"error":      err.Error(),
			})
		}
	}
}

// emitTransactionStateEvent publishes the event matching a transaction's
// final state. Non-final states emit nothing.
func emitTransactionStateEvent(ctx context.Context, emitter *EventEmitter, tx *entity.Transaction) {
	data := map[string]interface{}{
		"transaction_id": tx.Id.String(),
		"reference":      tx.Reference,
		"amount_cents":   tx.AmountCents,
		"currency":       tx.Currency,
		"email":          tx.Email,
		"state":          string(tx.State),
		"state_message":  tx.StateMessage,
	}

	switch tx.State {
	case entity.TransactionStateDone:
		emitter.Emit(ctx, events.New(events.TypePaymentSucceeded, data))
	case entity.TransactionStateError:
		emitter.Emit(ctx, events.New(events.TypePaymentFailed, data))
	}
}
