// FILE: pkg/events/event.go
package events

import "time"

// Event defines the contract for all domain events emitted by the
// payment core.
type Event interface {
	// EventType returns the unique code for this event (e.g., "PAYMENT_SUCCEEDED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event codes emitted by the lifecycle, billing and refund engines.
const (
	TypePaymentSucceeded    = "PAYMENT_SUCCEEDED"
	TypePaymentFailed       = "PAYMENT_FAILED"
	TypeSubscriptionCreated = "SUBSCRIPTION_CREATED"
	TypeSubscriptionBilled  = "SUBSCRIPTION_BILLED"
	TypeSubscriptionPastDue = "SUBSCRIPTION_PAST_DUE"
	TypeSubscriptionExpired = "SUBSCRIPTION_EXPIRED"
	TypeSubscriptionCancel  = "SUBSCRIPTION_CANCELLED"
	TypeRefundSucceeded     = "REFUND_SUCCEEDED"
	TypeRefundFailed        = "REFUND_FAILED"
)

// BaseEvent is the concrete envelope used across the service.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// New builds an event stamped with the current time.
func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
}
