package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransactionFinality(t *testing.T) {
	final := []TransactionState{TransactionStateDone, TransactionStateError, TransactionStateCancel}
	open := []TransactionState{TransactionStateDraft, TransactionStatePending, TransactionStateAuthorized}

	for _, state := range final {
		assert.True(t, (&Transaction{State: state}).IsFinal(), string(state))
	}
	for _, state := range open {
		assert.False(t, (&Transaction{State: state}).IsFinal(), string(state))
	}
}

func TestTransactionRefundAccounting(t *testing.T) {
	tx := &Transaction{State: TransactionStateDone, AmountCents: 10000}

	assert.True(t, tx.CanRefund())
	assert.Equal(t, int64(10000), tx.RemainingRefundableCents())
	assert.Equal(t, RefundProgressNone, tx.RefundProgressState())

	tx.RefundedCents = 4000
	assert.True(t, tx.CanRefund())
	assert.Equal(t, int64(6000), tx.RemainingRefundableCents())
	assert.Equal(t, RefundProgressPartial, tx.RefundProgressState())

	tx.RefundedCents = 10000
	assert.False(t, tx.CanRefund())
	assert.Equal(t, int64(0), tx.RemainingRefundableCents())
	assert.Equal(t, RefundProgressFull, tx.RefundProgressState())
}

func TestTransactionCanRefundNeedsDoneState(t *testing.T) {
	tx := &Transaction{State: TransactionStatePending, AmountCents: 10000}
	assert.False(t, tx.CanRefund())
}

func TestCardExpired(t *testing.T) {
	now := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		month int
		year  int
		want  bool
	}{
		{"future year", 1, 2030, false},
		{"current month still valid", 8, 2026, false},
		{"last month expired", 7, 2026, true},
		{"past year", 12, 2025, true},
		{"no expiry recorded", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Card{ExpMonth: tt.month, ExpYear: tt.year}
			assert.Equal(t, tt.want, c.Expired(now))
		})
	}
}

func TestInvoiceLineAmountCents(t *testing.T) {
	l := &InvoiceLine{Quantity: 1, UnitPriceCents: 4900}
	assert.Equal(t, int64(4900), l.AmountCents())

	// Fractional quantities come from proportional credit notes.
	l = &InvoiceLine{Quantity: 0.5, UnitPriceCents: 4900}
	assert.Equal(t, int64(2450), l.AmountCents())
}
