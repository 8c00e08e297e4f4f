// FILE: internal/dto/payment_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

// --- Charge DTOs ---

type CreateChargeRequest struct {
	Reference    string            `json:"reference" validate:"required,min=3"`
	AmountCents  int64             `json:"amount_cents" validate:"required,gt=0"`
	Currency     string            `json:"currency" validate:"required,len=3"`
	Email        string            `json:"email" validate:"required,email"`
	Description  string            `json:"description"`
	TokenId      string            `json:"token_id"`
	CardId       *uuid.UUID        `json:"card_id"`
	Method       string            `json:"method" validate:"omitempty,oneof=card wallet cash_network bank_transfer"`
	Installments int               `json:"installments" validate:"omitempty,gte=0"`
	Metadata     map[string]string `json:"metadata"`
}

type TransactionResponse struct {
	Id            uuid.UUID         `json:"id"`
	Reference     string            `json:"reference"`
	Provider      string            `json:"provider"`
	ChargeId      *string           `json:"charge_id,omitempty"`
	AmountCents   int64             `json:"amount_cents"`
	Currency      string            `json:"currency"`
	FeeCents      int64             `json:"fee_cents"`
	NetCents      int64             `json:"net_cents"`
	RefundedCents int64             `json:"refunded_cents"`
	RefundStatus  string            `json:"refund_status"`
	Installments  int               `json:"installments"`
	Method        string            `json:"method"`
	State         string            `json:"state"`
	StateMessage  string            `json:"state_message,omitempty"`
	CheckoutURL   string            `json:"checkout_url,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

type TransactionListQuery struct {
	State  string `query:"state"`
	Email  string `query:"email"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

// --- Webhook DTOs ---

// WebhookAck is what the gateway receives back. Always 200 with a body, so
// the gateway stops retrying once we have recorded the event.
type WebhookAck struct {
	Received bool   `json:"received"`
	Result   string `json:"result"`
}
