// FILE: internal/entity/invoice_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type InvoiceKind string
type InvoiceState string

const (
	InvoiceKindInvoice    InvoiceKind = "invoice"
	InvoiceKindCreditNote InvoiceKind = "credit_note"

	InvoiceStateDraft  InvoiceState = "draft"
	InvoiceStatePosted InvoiceState = "posted"
	InvoiceStatePaid   InvoiceState = "paid"
)

type Invoice struct {
	Id             uuid.UUID
	Number         string
	Kind           InvoiceKind
	State          InvoiceState
	CustomerId     uuid.UUID
	SubscriptionId *uuid.UUID
	// ReversedId points a credit note back at the invoice it reverses.
	ReversedId  *uuid.UUID
	Currency    string
	TotalCents  int64
	IssuedAt    time.Time
	PeriodStart *time.Time
	PeriodEnd   *time.Time
	Lines       []InvoiceLine
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type InvoiceLine struct {
	Id             uuid.UUID
	InvoiceId      uuid.UUID
	ProductId      *uuid.UUID
	Description    string
	Quantity       float64
	UnitPriceCents int64
	CreatedAt      time.Time
}

func (l *InvoiceLine) AmountCents() int64 {
	return int64(l.Quantity*float64(l.UnitPriceCents) + 0.5)
}
