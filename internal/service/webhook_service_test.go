package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"culqi-payments-be/internal/entity"
	"culqi-payments-be/internal/pkg/apperrors"
	"culqi-payments-be/internal/repository/memory"
	"culqi-payments-be/internal/repository/specification"
	"culqi-payments-be/pkg/gateway"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test_k3y"

func newWebhookFixture(gw *fakeGateway) (IWebhookService, *memory.Store) {
	store := memory.NewStore()
	gateways := map[string]gateway.PaymentGateway{"culqi": gw}
	refunds := NewRefundService(store.NewFactory(), gateways, testEmitter(), nopLogger{})
	svc := NewWebhookService(
		store.NewFactory(),
		gateways,
		testWebhookSecret,
		nil,
		refunds,
		testEmitter(),
		nopLogger{},
	)
	return svc, store
}

func signPayload(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func chargeEventPayload(eventType, chargeId, reference string) []byte {
	return []byte(fmt.Sprintf(
		`{"type":%q,"data":{"id":%q,"metadata":{"reference":%q}}}`,
		eventType, chargeId, reference,
	))
}

func seedPendingTransaction(store *memory.Store, chargeId string) *entity.Transaction {
	tx := &entity.Transaction{
		Reference:       "ORD-" + uuid.NewString()[:8],
		ProviderCode:    "culqi",
		AmountCents:     8000,
		Currency:        "PEN",
		PaymentMethod:   entity.PaymentMethodCard,
		State:           entity.TransactionStatePending,
		Email:           "buyer@example.pe",
		Metadata:        map[string]string{},
		LastStateChange: time.Now().UTC(),
	}
	if chargeId != "" {
		tx.GatewayChargeId = &chargeId
	}
	tx.Metadata["reference"] = tx.Reference
	repo := store.NewFactory().NewUnitOfWork(context.Background()).TransactionRepository()
	_ = repo.Create(context.Background(), tx)
	return tx
}

func TestHandleWebhookAppliesSignedEvent(t *testing.T) {
	gw := newFakeGateway()
	gw.getChargeFn = func(chargeID string) (*gateway.Charge, error) {
		return successfulCharge(chargeID, 8000), nil
	}
	svc, store := newWebhookFixture(gw)
	ctx := context.Background()

	tx := seedPendingTransaction(store, "chr_hook_001")
	payload := chargeEventPayload("charge.succeeded", "chr_hook_001", tx.Reference)

	ack, err := svc.HandleCulqiWebhook(ctx, payload, signPayload(payload))
	require.NoError(t, err)
	assert.True(t, ack.Received)
	assert.Equal(t, "applied", ack.Result)

	uow := store.NewFactory().NewUnitOfWork(ctx)
	after, _ := uow.TransactionRepository().FindOne(ctx, specification.ByID{ID: tx.Id})
	assert.Equal(t, entity.TransactionStateDone, after.State)
	assert.Equal(t, int64(8000/25), after.FeeCents)

	digest := sha256.Sum256(payload)
	eventId := fmt.Sprintf("charge.succeeded:chr_hook_001:%s", hex.EncodeToString(digest[:8]))
	ledger, _ := uow.WebhookEventRepository().FindOne(ctx,
		specification.ByProviderEvent{ProviderCode: "culqi", EventId: eventId})
	require.NotNil(t, ledger)
	assert.Equal(t, entity.WebhookEventStatusProcessed, ledger.Status)
}

func TestHandleWebhookReplayIsDuplicate(t *testing.T) {
	gw := newFakeGateway()
	gw.getChargeFn = func(chargeID string) (*gateway.Charge, error) {
		return successfulCharge(chargeID, 8000), nil
	}
	svc, store := newWebhookFixture(gw)
	ctx := context.Background()

	tx := seedPendingTransaction(store, "chr_hook_002")
	payload := chargeEventPayload("charge.succeeded", "chr_hook_002", tx.Reference)

	_, err := svc.HandleCulqiWebhook(ctx, payload, signPayload(payload))
	require.NoError(t, err)

	ack, err := svc.HandleCulqiWebhook(ctx, payload, signPayload(payload))
	require.NoError(t, err)
	assert.Equal(t, "duplicate", ack.Result)
}

func TestHandleWebhookSameTypeProgressionApplies(t *testing.T) {
	gw := newFakeGateway()
	gw.getChargeFn = func(chargeID string) (*gateway.Charge, error) {
		return &gateway.Charge{ID: chargeID, Object: "charge"}, nil
	}
	svc, store := newWebhookFixture(gw)
	ctx := context.Background()

	tx := seedPendingTransaction(store, "chr_hook_007")

	// The gateway still reports the charge in flight: nothing to change.
	first := []byte(fmt.Sprintf(
		`{"type":"charge.updated","data":{"id":"chr_hook_007","state":"pending","metadata":{"reference":%q}}}`,
		tx.Reference))
	ack, err := svc.HandleCulqiWebhook(ctx, first, signPayload(first))
	require.NoError(t, err)
	require.Equal(t, "unchanged", ack.Result)

	// The same event type fires again once the charge settles. Only an exact
	// retry counts as a duplicate, so the settling notification goes through.
	gw.getChargeFn = func(chargeID string) (*gateway.Charge, error) {
		return successfulCharge(chargeID, 8000), nil
	}
	second := []byte(fmt.Sprintf(
		`{"type":"charge.updated","data":{"id":"chr_hook_007","state":"paid","metadata":{"reference":%q}}}`,
		tx.Reference))
	ack, err = svc.HandleCulqiWebhook(ctx, second, signPayload(second))
	require.NoError(t, err)
	assert.Equal(t, "applied", ack.Result)

	after, _ := store.NewFactory().NewUnitOfWork(ctx).TransactionRepository().
		FindOne(ctx, specification.ByID{ID: tx.Id})
	assert.Equal(t, entity.TransactionStateDone, after.State)
}

func TestHandleWebhookRejectsTamperedSignature(t *testing.T) {
	svc, store := newWebhookFixture(newFakeGateway())
	ctx := context.Background()

	tx := seedPendingTransaction(store, "chr_hook_003")
	payload := chargeEventPayload("charge.succeeded", "chr_hook_003", tx.Reference)

	_, err := svc.HandleCulqiWebhook(ctx, payload, "deadbeef")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrVerificationFailed))
}

func TestHandleWebhookUnsignedConfirmedByReadback(t *testing.T) {
	gw := newFakeGateway()
	gw.getChargeFn = func(chargeID string) (*gateway.Charge, error) {
		return successfulCharge(chargeID, 8000), nil
	}
	svc, store := newWebhookFixture(gw)
	ctx := context.Background()

	tx := seedPendingTransaction(store, "chr_hook_004")
	payload := chargeEventPayload("charge.succeeded", "chr_hook_004", tx.Reference)

	ack, err := svc.HandleCulqiWebhook(ctx, payload, "")
	require.NoError(t, err)
	assert.Equal(t, "applied", ack.Result)

	after, _ := store.NewFactory().NewUnitOfWork(ctx).TransactionRepository().
		FindOne(ctx, specification.ByID{ID: tx.Id})
	assert.Equal(t, entity.TransactionStateDone, after.State)
}

func TestHandleWebhookUnsignedUnconfirmableIsRejected(t *testing.T) {
	gw := newFakeGateway()
	gw.getChargeFn = func(chargeID string) (*gateway.Charge, error) {
		return nil, &apperrors.GatewayUnavailable{Cause: context.DeadlineExceeded}
	}
	svc, store := newWebhookFixture(gw)
	ctx := context.Background()

	tx := seedPendingTransaction(store, "chr_hook_005")
	payload := chargeEventPayload("charge.succeeded", "chr_hook_005", tx.Reference)

	_, err := svc.HandleCulqiWebhook(ctx, payload, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrVerificationFailed))

	after, _ := store.NewFactory().NewUnitOfWork(ctx).TransactionRepository().
		FindOne(ctx, specification.ByID{ID: tx.Id})
	assert.Equal(t, entity.TransactionStatePending, after.State)
}

func TestHandleWebhookResolvesByMetadataReference(t *testing.T) {
	gw := newFakeGateway()
	gw.getChargeFn = func(chargeID string) (*gateway.Charge, error) {
		return successfulCharge(chargeID, 8000), nil
	}
	svc, store := newWebhookFixture(gw)
	ctx := context.Background()

	// No charge id stored yet: the browser-side checkout created the charge
	// and the webhook is the first time the backend hears about it.
	tx := seedPendingTransaction(store, "")
	payload := chargeEventPayload("charge.succeeded", "chr_hook_006", tx.Reference)

	ack, err := svc.HandleCulqiWebhook(ctx, payload, signPayload(payload))
	require.NoError(t, err)
	assert.Equal(t, "applied", ack.Result)

	after, _ := store.NewFactory().NewUnitOfWork(ctx).TransactionRepository().
		FindOne(ctx, specification.ByID{ID: tx.Id})
	assert.Equal(t, entity.TransactionStateDone, after.State)
	require.NotNil(t, after.GatewayChargeId)
	assert.Equal(t, "chr_hook_006", *after.GatewayChargeId)
}

func TestHandleWebhookUnknownChargeIsSkipped(t *testing.T) {
	svc, _ := newWebhookFixture(newFakeGateway())
	ctx := context.Background()

	payload := chargeEventPayload("charge.succeeded", "chr_nobody", "ORD-MISSING")

	ack, err := svc.HandleCulqiWebhook(ctx, payload, signPayload(payload))
	require.NoError(t, err)
	assert.Equal(t, "skipped", ack.Result)
}

func TestHandleWebhookFinalStateConflictIsSkipped(t *testing.T) {
	gw := newFakeGateway()
	gw.getChargeFn = func(chargeID string) (*gateway.Charge, error) {
		return declinedCharge(chargeID), nil
	}
	svc, store := newWebhookFixture(gw)
	ctx := context.Background()

	tx := seedDoneTransaction(store, 8000)
	payload := chargeEventPayload("charge.failed", *tx.GatewayChargeId, tx.Reference)

	ack, err := svc.HandleCulqiWebhook(ctx, payload, signPayload(payload))
	require.NoError(t, err)
	assert.Equal(t, "skipped", ack.Result)

	after, _ := store.NewFactory().NewUnitOfWork(ctx).TransactionRepository().
		FindOne(ctx, specification.ByID{ID: tx.Id})
	assert.Equal(t, entity.TransactionStateDone, after.State)
}

func refundEventPayload(eventType, refundId, chargeId string) []byte {
	return []byte(fmt.Sprintf(
		`{"type":%q,"data":{"id":%q,"charge_id":%q,"amount":2500}}`,
		eventType, refundId, chargeId,
	))
}

func TestHandleWebhookRefundEventCreatesRefund(t *testing.T) {
	gw := newFakeGateway()
	gw.getRefundFn = func(refundID string) (*gateway.RefundResult, error) {
		return &gateway.RefundResult{ID: refundID, AmountCents: 2500, Status: "refunded"}, nil
	}
	svc, store := newWebhookFixture(gw)
	ctx := context.Background()

	tx := seedDoneTransaction(store, 8000)
	payload := refundEventPayload("refund.creation", "ref_hook_001", *tx.GatewayChargeId)

	ack, err := svc.HandleCulqiWebhook(ctx, payload, signPayload(payload))
	require.NoError(t, err)
	assert.Equal(t, "applied", ack.Result)

	uow := store.NewFactory().NewUnitOfWork(ctx)
	refund, _ := uow.RefundRepository().FindOne(ctx,
		specification.ByGatewayRefundId{RefundId: "ref_hook_001"})
	require.NotNil(t, refund)
	assert.Equal(t, entity.RefundKindWebhook, refund.Kind)
	assert.Equal(t, entity.RefundStateSucceeded, refund.State)
	assert.Equal(t, int64(2500), refund.AmountCents)
	assert.Equal(t, tx.Id, refund.TransactionId)

	after, _ := uow.TransactionRepository().FindOne(ctx, specification.ByID{ID: tx.Id})
	assert.Equal(t, int64(2500), after.RefundedCents)
}

func TestHandleWebhookRefundReplayIsUnchanged(t *testing.T) {
	gw := newFakeGateway()
	gw.getRefundFn = func(refundID string) (*gateway.RefundResult, error) {
		return &gateway.RefundResult{ID: refundID, AmountCents: 2500, Status: "refunded"}, nil
	}
	svc, store := newWebhookFixture(gw)
	ctx := context.Background()

	tx := seedDoneTransaction(store, 8000)

	first := refundEventPayload("refund.creation", "ref_hook_002", *tx.GatewayChargeId)
	ack, err := svc.HandleCulqiWebhook(ctx, first, signPayload(first))
	require.NoError(t, err)
	require.Equal(t, "applied", ack.Result)

	// A different event type for the same refund passes both dedup barriers
	// but matches on the gateway refund id and changes nothing.
	second := refundEventPayload("refund.updated", "ref_hook_002", *tx.GatewayChargeId)
	ack, err = svc.HandleCulqiWebhook(ctx, second, signPayload(second))
	require.NoError(t, err)
	assert.Equal(t, "unchanged", ack.Result)

	after, _ := store.NewFactory().NewUnitOfWork(ctx).TransactionRepository().
		FindOne(ctx, specification.ByID{ID: tx.Id})
	assert.Equal(t, int64(2500), after.RefundedCents)
}

func TestHandleWebhookUnsignedRefundUnconfirmableIsRejected(t *testing.T) {
	gw := newFakeGateway()
	gw.getRefundFn = func(refundID string) (*gateway.RefundResult, error) {
		return nil, &apperrors.GatewayUnavailable{Cause: context.DeadlineExceeded}
	}
	svc, store := newWebhookFixture(gw)
	ctx := context.Background()

	tx := seedDoneTransaction(store, 8000)
	payload := refundEventPayload("refund.creation", "ref_hook_003", *tx.GatewayChargeId)

	_, err := svc.HandleCulqiWebhook(ctx, payload, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrVerificationFailed))
}

func TestHandleWebhookRefundForUnknownChargeIsSkipped(t *testing.T) {
	gw := newFakeGateway()
	gw.getRefundFn = func(refundID string) (*gateway.RefundResult, error) {
		return &gateway.RefundResult{ID: refundID, ChargeID: "chr_nobody", AmountCents: 2500, Status: "refunded"}, nil
	}
	svc, _ := newWebhookFixture(gw)
	ctx := context.Background()

	payload := refundEventPayload("refund.creation", "ref_hook_004", "chr_nobody")

	ack, err := svc.HandleCulqiWebhook(ctx, payload, signPayload(payload))
	require.NoError(t, err)
	assert.Equal(t, "skipped", ack.Result)
}

func TestHandleWebhookReplayOnFinalStateIsUnchanged(t *testing.T) {
	gw := newFakeGateway()
	gw.getChargeFn = func(chargeID string) (*gateway.Charge, error) {
		return successfulCharge(chargeID, 8000), nil
	}
	svc, store := newWebhookFixture(gw)
	ctx := context.Background()

	tx := seedDoneTransaction(store, 8000)
	payload := chargeEventPayload("charge.updated", *tx.GatewayChargeId, tx.Reference)

	ack, err := svc.HandleCulqiWebhook(ctx, payload, signPayload(payload))
	require.NoError(t, err)
	assert.Equal(t, "unchanged", ack.Result)
}
