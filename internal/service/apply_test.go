package service

import (
	"testing"
	"time"

	"culqi-payments-be/internal/entity"
	"culqi-payments-be/internal/pkg/apperrors"
	"culqi-payments-be/pkg/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyChargeOutcome(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	chargeId := "chr_abc"

	tests := []struct {
		name       string
		tx         entity.Transaction
		charge     *gateway.Charge
		wantState  entity.TransactionState
		wantResult ApplyResult
		wantErr    bool
	}{
		{
			name: "successful sale moves draft to done",
			tx:   entity.Transaction{State: entity.TransactionStateDraft, AmountCents: 10000},
			charge: &gateway.Charge{
				ID:       chargeId,
				FeeCents: 400,
				NetCents: 9600,
				Outcome:  gateway.Outcome{Type: gateway.OutcomeSaleSuccessful},
			},
			wantState:  entity.TransactionStateDone,
			wantResult: ApplyUpdated,
		},
		{
			name: "declined sale moves pending to error",
			tx:   entity.Transaction{State: entity.TransactionStatePending},
			charge: &gateway.Charge{
				ID: chargeId,
				Outcome: gateway.Outcome{
					Type:            gateway.OutcomeSaleDeclined,
					MerchantMessage: "insufficient funds",
				},
			},
			wantState:  entity.TransactionStateError,
			wantResult: ApplyUpdated,
		},
		{
			name: "invalid parameter is a final error",
			tx:   entity.Transaction{State: entity.TransactionStateDraft},
			charge: &gateway.Charge{
				ID:      chargeId,
				Outcome: gateway.Outcome{Type: gateway.OutcomeInvalidParameter, MerchantMessage: "bad token"},
			},
			wantState:  entity.TransactionStateError,
			wantResult: ApplyUpdated,
		},
		{
			name: "pending outcome stays pending",
			tx:   entity.Transaction{State: entity.TransactionStateDraft},
			charge: &gateway.Charge{
				ID:          chargeId,
				Outcome:     gateway.Outcome{Type: gateway.OutcomePending},
				CheckoutURL: "https://checkout.example/123",
			},
			wantState:  entity.TransactionStatePending,
			wantResult: ApplyUpdated,
		},
		{
			name: "uncaptured charge becomes authorized",
			tx:   entity.Transaction{State: entity.TransactionStateDraft},
			charge: &gateway.Charge{
				ID:    chargeId,
				State: "authorized",
			},
			wantState:  entity.TransactionStateAuthorized,
			wantResult: ApplyUpdated,
		},
		{
			name: "replay of final state is skipped",
			tx: entity.Transaction{
				State:           entity.TransactionStateDone,
				GatewayChargeId: &chargeId,
			},
			charge: &gateway.Charge{
				ID:      chargeId,
				Outcome: gateway.Outcome{Type: gateway.OutcomeSaleSuccessful},
			},
			wantState:  entity.TransactionStateDone,
			wantResult: ApplySkipped,
		},
		{
			name: "conflicting final transition is rejected",
			tx: entity.Transaction{
				State:           entity.TransactionStateDone,
				GatewayChargeId: &chargeId,
			},
			charge: &gateway.Charge{
				ID:      chargeId,
				Outcome: gateway.Outcome{Type: gateway.OutcomeSaleDeclined},
			},
			wantState:  entity.TransactionStateDone,
			wantResult: ApplySkipped,
			wantErr:    true,
		},
		{
			name: "same non-final state with same charge id is a no-op",
			tx: entity.Transaction{
				State:           entity.TransactionStatePending,
				GatewayChargeId: &chargeId,
			},
			charge: &gateway.Charge{
				ID:      chargeId,
				Outcome: gateway.Outcome{Type: gateway.OutcomePending},
			},
			wantState:  entity.TransactionStatePending,
			wantResult: ApplySkipped,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, result, err := ApplyChargeOutcome(tt.tx, tt.charge, now)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsStateConflict(err))
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tt.wantState, got.State)
			assert.Equal(t, tt.wantResult, result)
		})
	}
}

func TestApplyChargeOutcomeSideEffects(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	t.Run("done records fee and net and clears message", func(t *testing.T) {
		tx := entity.Transaction{
			State:        entity.TransactionStatePending,
			StateMessage: "awaiting confirmation",
			AmountCents:  10000,
		}
		got, result, err := ApplyChargeOutcome(tx, &gateway.Charge{
			ID:       "chr_1",
			FeeCents: 420,
			NetCents: 9580,
			Outcome:  gateway.Outcome{Type: gateway.OutcomeSaleSuccessful},
		}, now)

		require.NoError(t, err)
		assert.Equal(t, ApplyUpdated, result)
		assert.Equal(t, int64(420), got.FeeCents)
		assert.Equal(t, int64(9580), got.NetCents)
		assert.Empty(t, got.StateMessage)
		require.NotNil(t, got.GatewayChargeId)
		assert.Equal(t, "chr_1", *got.GatewayChargeId)
		assert.Equal(t, now, got.LastStateChange)
	})

	t.Run("error carries the merchant message", func(t *testing.T) {
		got, _, err := ApplyChargeOutcome(entity.Transaction{State: entity.TransactionStateDraft}, declinedCharge("chr_2"), now)

		require.NoError(t, err)
		assert.Equal(t, "Card declined by issuing bank", got.StateMessage)
	})

	t.Run("pending keeps the checkout url", func(t *testing.T) {
		got, _, err := ApplyChargeOutcome(entity.Transaction{State: entity.TransactionStateDraft}, &gateway.Charge{
			ID:          "chr_3",
			Outcome:     gateway.Outcome{Type: gateway.OutcomePending},
			CheckoutURL: "https://checkout.culqi.com/pay/123",
		}, now)

		require.NoError(t, err)
		assert.Equal(t, "https://checkout.culqi.com/pay/123", got.CheckoutURL)
	})
}
