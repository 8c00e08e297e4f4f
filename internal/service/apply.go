// FILE: internal/service/apply.go
package service

import (
	"time"

	"culqi-payments-be/internal/entity"
	"culqi-payments-be/internal/pkg/apperrors"
	"culqi-payments-be/pkg/gateway"
)

type ApplyResult string

const (
	ApplyUpdated ApplyResult = "updated"
	ApplySkipped ApplyResult = "skipped"
)

// ApplyChargeOutcome folds a gateway charge into a transaction. It is a pure
// function: callers persist the returned copy and emit events based on the
// result, nothing happens in here.
//
// Replays of an outcome the transaction already reflects are skipped.
// Attempts to move a finalized transaction to a different final state are a
// state conflict.
func ApplyChargeOutcome(tx entity.Transaction, ch *gateway.Charge, now time.Time) (entity.Transaction, ApplyResult, error) {
	target := targetState(ch)

	if tx.IsFinal() {
		if tx.State == target {
			return tx, ApplySkipped, nil
		}
		return tx, ApplySkipped, &apperrors.StateConflict{
			Resource: "transaction",
			From:     string(tx.State),
			To:       string(target),
		}
	}

	if tx.State == target && chargeIdMatches(tx, ch) {
		return tx, ApplySkipped, nil
	}

	if ch.ID != "" {
		id := ch.ID
		tx.GatewayChargeId = &id
	}

	tx.State = target
	tx.LastStateChange = now

	switch target {
	case entity.TransactionStateDone:
		tx.FeeCents = ch.FeeCents
		tx.NetCents = ch.NetCents
		tx.StateMessage = ""
	case entity.TransactionStateError:
		tx.StateMessage = ch.Outcome.MerchantMessage
	case entity.TransactionStatePending, entity.TransactionStateAuthorized:
		if ch.CheckoutURL != "" {
			tx.CheckoutURL = ch.CheckoutURL
		}
	}

	return tx, ApplyUpdated, nil
}

func targetState(ch *gateway.Charge) entity.TransactionState {
	switch ch.Outcome.Type {
	case gateway.OutcomeSaleSuccessful:
		return entity.TransactionStateDone
	case gateway.OutcomeSaleDeclined, gateway.OutcomeInvalidParameter:
		return entity.TransactionStateError
	}
	if ch.State == "authorized" {
		return entity.TransactionStateAuthorized
	}
	return entity.TransactionStatePending
}

func chargeIdMatches(tx entity.Transaction, ch *gateway.Charge) bool {
	if tx.GatewayChargeId == nil {
		return ch.ID == ""
	}
	return *tx.GatewayChargeId == ch.ID
}
