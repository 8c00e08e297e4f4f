// FILE: internal/entity/transaction_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type TransactionState string
type RefundProgress string
type PaymentMethod string

const (
	TransactionStateDraft      TransactionState = "draft"
	TransactionStatePending    TransactionState = "pending"
	TransactionStateAuthorized TransactionState = "authorized"
	TransactionStateDone       TransactionState = "done"
	TransactionStateError      TransactionState = "error"
	TransactionStateCancel     TransactionState = "cancel"

	RefundProgressNone    RefundProgress = "none"
	RefundProgressPartial RefundProgress = "partial"
	RefundProgressFull    RefundProgress = "full"

	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodWallet       PaymentMethod = "wallet"
	PaymentMethodCashNetwork  PaymentMethod = "cash_network"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

type Transaction struct {
	Id              uuid.UUID
	Reference       string
	ProviderCode    string
	GatewayChargeId *string
	CustomerId      *uuid.UUID
	CardId          *uuid.UUID
	SubscriptionId  *uuid.UUID
	InvoiceId       *uuid.UUID
	AmountCents     int64
	Currency        string
	FeeCents        int64
	NetCents        int64
	RefundedCents   int64
	Installments    int
	PaymentMethod   PaymentMethod
	State           TransactionState
	StateMessage    string
	CheckoutURL     string
	Email           string
	Metadata        map[string]string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	LastStateChange time.Time
}

// IsFinal reports whether the transaction can no longer move to another state
// through gateway activity. Final transactions only change through refunds.
func (t *Transaction) IsFinal() bool {
	switch t.State {
	case TransactionStateDone, TransactionStateError, TransactionStateCancel:
		return true
	}
	return false
}

func (t *Transaction) CanRefund() bool {
	return t.State == TransactionStateDone && t.RefundedCents < t.AmountCents
}

// RemainingRefundableCents is the ceiling for any new refund request.
func (t *Transaction) RemainingRefundableCents() int64 {
	remaining := t.AmountCents - t.RefundedCents
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RefundProgressState derives the refund marker from the captured and
// refunded amounts rather than storing it.
func (t *Transaction) RefundProgressState() RefundProgress {
	switch {
	case t.RefundedCents <= 0:
		return RefundProgressNone
	case t.RefundedCents >= t.AmountCents:
		return RefundProgressFull
	default:
		return RefundProgressPartial
	}
}
