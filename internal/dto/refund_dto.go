// FILE: internal/dto/refund_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateRefundRequest struct {
	TransactionId uuid.UUID `json:"transaction_id" validate:"required"`
	// AmountCents of 0 means refund the full remaining amount.
	AmountCents int64  `json:"amount_cents" validate:"gte=0"`
	Reason      string `json:"reason" validate:"required,oneof=solicitud_comprador fraudulento duplicado"`
	RequestedBy string `json:"requested_by"`
}

type RefundResponse struct {
	Id             uuid.UUID  `json:"id"`
	TransactionId  uuid.UUID  `json:"transaction_id"`
	RefundId       *string    `json:"refund_id,omitempty"`
	AmountCents    int64      `json:"amount_cents"`
	Currency       string     `json:"currency"`
	Reason         string     `json:"reason"`
	Kind           string     `json:"kind"`
	State          string     `json:"state"`
	FailureMessage string     `json:"failure_message,omitempty"`
	CreditNoteId   *uuid.UUID `json:"credit_note_id,omitempty"`
	ProcessedAt    *time.Time `json:"processed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
