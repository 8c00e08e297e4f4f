// FILE: internal/entity/webhook_event_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type WebhookEventStatus string

const (
	WebhookEventStatusProcessed WebhookEventStatus = "processed"
	WebhookEventStatusSkipped   WebhookEventStatus = "skipped"
	WebhookEventStatusFailed    WebhookEventStatus = "failed"
)

// WebhookEvent is the idempotency ledger. One row per gateway notification,
// keyed by the gateway's event or charge id, so replays are recognized and
// answered without touching the transaction again.
type WebhookEvent struct {
	Id             uuid.UUID
	ProviderCode   string
	EventId        string
	EventType      string
	TransactionId  *uuid.UUID
	Status         WebhookEventStatus
	FailureMessage string
	Payload        []byte
	ReceivedAt     time.Time
}
