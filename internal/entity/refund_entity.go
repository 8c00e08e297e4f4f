// FILE: internal/entity/refund_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type RefundState string
type RefundReason string

// RefundKind records where a refund originated: an operator request through
// the API, or a gateway-side refund reported over the webhook channel.
type RefundKind string

const (
	RefundKindManual  RefundKind = "manual"
	RefundKindWebhook RefundKind = "webhook"
)

const (
	RefundStateDraft      RefundState = "draft"
	RefundStatePending    RefundState = "pending"
	RefundStateProcessing RefundState = "processing"
	RefundStateSucceeded  RefundState = "succeeded"
	RefundStateFailed     RefundState = "failed"
	RefundStateCanceled   RefundState = "canceled"

	RefundReasonBuyerRequest RefundReason = "solicitud_comprador"
	RefundReasonFraudulent   RefundReason = "fraudulento"
	RefundReasonDuplicate    RefundReason = "duplicado"
)

func ValidRefundReason(r RefundReason) bool {
	switch r {
	case RefundReasonBuyerRequest, RefundReasonFraudulent, RefundReasonDuplicate:
		return true
	}
	return false
}

type Refund struct {
	Id              uuid.UUID
	TransactionId   uuid.UUID
	GatewayRefundId *string
	AmountCents     int64
	Currency        string
	Reason          RefundReason
	Kind            RefundKind
	State           RefundState
	FailureMessage  string
	CreditNoteId    *uuid.UUID
	RequestedBy     string
	ProcessedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Actionable reports whether the refund can still be submitted or cancelled.
func (r *Refund) Actionable() bool {
	return r.State == RefundStateDraft || r.State == RefundStatePending
}

func (r *Refund) IsFinal() bool {
	switch r.State {
	case RefundStateSucceeded, RefundStateFailed, RefundStateCanceled:
		return true
	}
	return false
}
