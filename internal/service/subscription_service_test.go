package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"culqi-payments-be/internal/dto"
	"culqi-payments-be/internal/entity"
	"culqi-payments-be/internal/pkg/apperrors"
	"culqi-payments-be/internal/repository/memory"
	"culqi-payments-be/internal/repository/specification"
	"culqi-payments-be/pkg/gateway"
	"culqi-payments-be/pkg/rates"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSubscriptionFixture(gw *fakeGateway) (ISubscriptionService, *memory.Store) {
	store := memory.NewStore()
	svc := NewSubscriptionService(
		store.NewFactory(),
		map[string]gateway.PaymentGateway{"culqi": gw},
		"culqi",
		rates.NewStaticProvider(map[string]float64{"USD/PEN": 3.75}),
		testEmitter(),
		nopLogger{},
	)
	return svc, store
}

func findSubscription(t *testing.T, store *memory.Store, id uuid.UUID) *entity.Subscription {
	t.Helper()
	sub, err := store.NewFactory().NewUnitOfWork(context.Background()).
		SubscriptionRepository().FindOne(context.Background(), specification.ByID{ID: id})
	require.NoError(t, err)
	require.NotNil(t, sub)
	return sub
}

func TestEnrollWithTrial(t *testing.T) {
	gw := newFakeGateway()
	svc, store := newSubscriptionFixture(gw)
	ctx := context.Background()

	customer := seedCustomer(store, "trial@example.pe")
	card := seedCard(store, customer.Id)
	plan := seedPlan(store, 4900, 14)

	res, err := svc.Enroll(ctx, &dto.EnrollRequest{
		CustomerId: customer.Id,
		PlanId:     plan.Id,
		CardId:     &card.Id,
	})
	require.NoError(t, err)

	assert.Equal(t, "trial", res.State)
	require.NotNil(t, res.TrialEnd)
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, 14), *res.TrialEnd, time.Minute)
	// No money moves during the trial.
	assert.Empty(t, gw.chargeCalls)
	assert.Zero(t, res.BillCount)
}

func TestEnrollWithoutTrialChargesImmediately(t *testing.T) {
	gw := newFakeGateway()
	svc, store := newSubscriptionFixture(gw)
	ctx := context.Background()

	customer := seedCustomer(store, "paid@example.pe")
	card := seedCard(store, customer.Id)
	plan := seedPlan(store, 4900, 0)

	res, err := svc.Enroll(ctx, &dto.EnrollRequest{
		CustomerId: customer.Id,
		PlanId:     plan.Id,
		CardId:     &card.Id,
	})
	require.NoError(t, err)

	require.Len(t, gw.chargeCalls, 1)
	assert.Equal(t, int64(4900), gw.chargeCalls[0].AmountCents)

	sub := findSubscription(t, store, res.Id)
	assert.Equal(t, entity.SubscriptionStateActive, sub.State)
	assert.Equal(t, 1, sub.BillCount)
}

func TestEnrollSkipTrial(t *testing.T) {
	gw := newFakeGateway()
	svc, store := newSubscriptionFixture(gw)
	ctx := context.Background()

	customer := seedCustomer(store, "skip@example.pe")
	card := seedCard(store, customer.Id)
	plan := seedPlan(store, 4900, 14)

	res, err := svc.Enroll(ctx, &dto.EnrollRequest{
		CustomerId: customer.Id,
		PlanId:     plan.Id,
		CardId:     &card.Id,
		SkipTrial:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, "active", res.State)
	require.Len(t, gw.chargeCalls, 1)
}

func TestEnrollInactivePlan(t *testing.T) {
	svc, store := newSubscriptionFixture(newFakeGateway())
	ctx := context.Background()

	customer := seedCustomer(store, "inactive@example.pe")
	card := seedCard(store, customer.Id)
	plan := seedPlan(store, 4900, 0)
	plan.Active = false
	require.NoError(t, store.NewFactory().NewUnitOfWork(ctx).PlanRepository().Update(ctx, plan))

	_, err := svc.Enroll(ctx, &dto.EnrollRequest{
		CustomerId: customer.Id,
		PlanId:     plan.Id,
		CardId:     &card.Id,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestEnrollWithQuantityMultipliesCharge(t *testing.T) {
	gw := newFakeGateway()
	svc, store := newSubscriptionFixture(gw)
	ctx := context.Background()

	customer := seedCustomer(store, "seats@example.pe")
	card := seedCard(store, customer.Id)
	plan := seedPlan(store, 4900, 0)

	res, err := svc.Enroll(ctx, &dto.EnrollRequest{
		CustomerId: customer.Id,
		PlanId:     plan.Id,
		CardId:     &card.Id,
		Quantity:   3,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Quantity)
	require.Len(t, gw.chargeCalls, 1)
	assert.Equal(t, int64(3*4900), gw.chargeCalls[0].AmountCents)

	sub := findSubscription(t, store, res.Id)
	assert.Equal(t, int64(3*4900), sub.TotalPaidCents)
}

func TestEnrollRejectedWhenPlanFull(t *testing.T) {
	svc, store := newSubscriptionFixture(newFakeGateway())
	ctx := context.Background()

	plan := seedPlan(store, 4900, 0)
	plan.MaxSubscribers = 1
	require.NoError(t, store.NewFactory().NewUnitOfWork(ctx).PlanRepository().Update(ctx, plan))

	first := seedCustomer(store, "first@example.pe")
	firstCard := seedCard(store, first.Id)
	_, err := svc.Enroll(ctx, &dto.EnrollRequest{
		CustomerId: first.Id,
		PlanId:     plan.Id,
		CardId:     &firstCard.Id,
	})
	require.NoError(t, err)

	second := seedCustomer(store, "second@example.pe")
	secondCard := seedCard(store, second.Id)
	_, err = svc.Enroll(ctx, &dto.EnrollRequest{
		CustomerId: second.Id,
		PlanId:     plan.Id,
		CardId:     &secondCard.Id,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

// seedDueSubscription puts an active subscription just past its period end.
func seedDueSubscription(t *testing.T, store *memory.Store, plan *entity.Plan, customer *entity.Customer, card *entity.Card) *entity.Subscription {
	t.Helper()
	now := time.Now().UTC()
	sub := &entity.Subscription{
		Reference:          "SUB-TESTDUE",
		CustomerId:         customer.Id,
		PlanId:             plan.Id,
		CardId:             &card.Id,
		State:              entity.SubscriptionStateActive,
		CurrentPeriodStart: now.AddDate(0, -1, 0),
		CurrentPeriodEnd:   now.Add(-time.Hour),
	}
	repo := store.NewFactory().NewUnitOfWork(context.Background()).SubscriptionRepository()
	require.NoError(t, repo.Create(context.Background(), sub))
	return sub
}

func TestBillDueSubscriptionsAdvancesPeriod(t *testing.T) {
	gw := newFakeGateway()
	svc, store := newSubscriptionFixture(gw)
	ctx := context.Background()

	customer := seedCustomer(store, "due@example.pe")
	card := seedCard(store, customer.Id)
	plan := seedPlan(store, 4900, 0)
	sub := seedDueSubscription(t, store, plan, customer, card)
	oldEnd := sub.CurrentPeriodEnd

	billed, err := svc.BillDueSubscriptions(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 1, billed)

	after := findSubscription(t, store, sub.Id)
	assert.Equal(t, entity.SubscriptionStateActive, after.State)
	assert.Equal(t, 1, after.BillCount)
	// The new period starts exactly where the old one ended, no drift.
	assert.True(t, after.CurrentPeriodStart.Equal(oldEnd))
	assert.True(t, after.CurrentPeriodEnd.Equal(plan.PeriodEnd(oldEnd)))
	assert.Zero(t, after.FailedChargeCount)
	assert.Nil(t, after.PastDueSince)
}

func TestTotalPaidAccumulatesAcrossCycles(t *testing.T) {
	gw := newFakeGateway()
	svc, store := newSubscriptionFixture(gw)
	ctx := context.Background()

	customer := seedCustomer(store, "loyal@example.pe")
	card := seedCard(store, customer.Id)
	plan := seedPlan(store, 10000, 0)
	sub := seedDueSubscription(t, store, plan, customer, card)

	repo := store.NewFactory().NewUnitOfWork(ctx).SubscriptionRepository()
	for cycle := 0; cycle < 3; cycle++ {
		if cycle > 0 {
			// Rewind the period so the next sweep picks it up again.
			current := findSubscription(t, store, sub.Id)
			current.CurrentPeriodEnd = time.Now().UTC().Add(-time.Hour)
			require.NoError(t, repo.Update(ctx, current))
		}
		billed, err := svc.BillDueSubscriptions(ctx, time.Now().UTC())
		require.NoError(t, err)
		require.Equal(t, 1, billed)
	}

	after := findSubscription(t, store, sub.Id)
	assert.Equal(t, 3, after.BillCount)
	assert.Equal(t, int64(30000), after.TotalPaidCents)
}

func TestBillingStopsAtPlanCycleCap(t *testing.T) {
	gw := newFakeGateway()
	svc, store := newSubscriptionFixture(gw)
	ctx := context.Background()

	customer := seedCustomer(store, "capped@example.pe")
	card := seedCard(store, customer.Id)
	plan := seedPlan(store, 4900, 0)
	plan.MaxCycles = 2
	require.NoError(t, store.NewFactory().NewUnitOfWork(ctx).PlanRepository().Update(ctx, plan))

	sub := seedDueSubscription(t, store, plan, customer, card)
	sub.BillCount = 2
	repo := store.NewFactory().NewUnitOfWork(ctx).SubscriptionRepository()
	require.NoError(t, repo.Update(ctx, sub))

	_, err := svc.BillDueSubscriptions(ctx, time.Now().UTC())
	require.NoError(t, err)

	// No charge: the cap closes the subscription out instead.
	assert.Empty(t, gw.chargeCalls)
	after := findSubscription(t, store, sub.Id)
	assert.Equal(t, entity.SubscriptionStateCancelled, after.State)
	assert.Equal(t, "plan cycle limit reached", after.CancellationReason)
}

func TestBillingCycleCommitsInOneTransaction(t *testing.T) {
	gw := newFakeGateway()
	store := memory.NewStore()
	factory := &txTrackingFactory{inner: store.NewFactory()}
	svc := NewSubscriptionService(
		factory,
		map[string]gateway.PaymentGateway{"culqi": gw},
		"culqi",
		rates.NewStaticProvider(map[string]float64{"USD/PEN": 3.75}),
		testEmitter(),
		nopLogger{},
	)
	ctx := context.Background()

	customer := seedCustomer(store, "atomic@example.pe")
	card := seedCard(store, customer.Id)
	plan := seedPlan(store, 4900, 0)
	seedDueSubscription(t, store, plan, customer, card)

	billed, err := svc.BillDueSubscriptions(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, 1, billed)

	require.NotNil(t, factory.last)
	assert.Equal(t, 1, factory.last.begins)
	assert.Equal(t, 1, factory.last.commits)
}

func TestBillDueSubscriptionFailureMovesToPastDue(t *testing.T) {
	gw := newFakeGateway()
	gw.createChargeFn = func(req *gateway.ChargeRequest) (*gateway.Charge, error) {
		return declinedCharge("chr_fail"), nil
	}
	svc, store := newSubscriptionFixture(gw)
	ctx := context.Background()

	customer := seedCustomer(store, "pastdue@example.pe")
	card := seedCard(store, customer.Id)
	plan := seedPlan(store, 4900, 0)
	sub := seedDueSubscription(t, store, plan, customer, card)

	_, err := svc.BillDueSubscriptions(ctx, time.Now().UTC())
	require.NoError(t, err)

	after := findSubscription(t, store, sub.Id)
	assert.Equal(t, entity.SubscriptionStatePastDue, after.State)
	assert.Equal(t, 1, after.FailedChargeCount)
	require.NotNil(t, after.PastDueSince)
	assert.Zero(t, after.BillCount)
}

func TestBillingEscalatesToExpiredAfterThresholds(t *testing.T) {
	gw := newFakeGateway()
	gw.createChargeFn = func(req *gateway.ChargeRequest) (*gateway.Charge, error) {
		return declinedCharge("chr_fail"), nil
	}
	svc, store := newSubscriptionFixture(gw)
	ctx := context.Background()

	customer := seedCustomer(store, "expired@example.pe")
	card := seedCard(store, customer.Id)
	plan := seedPlan(store, 4900, 0)

	since := time.Now().UTC().AddDate(0, 0, -(entity.ExpiryPastDueDays + 5))
	sub := &entity.Subscription{
		Reference:          "SUB-EXPIRING",
		CustomerId:         customer.Id,
		PlanId:             plan.Id,
		CardId:             &card.Id,
		State:              entity.SubscriptionStatePastDue,
		CurrentPeriodStart: since,
		CurrentPeriodEnd:   since.AddDate(0, 1, 0),
		FailedChargeCount:  entity.ExpiryFailedChargeThreshold - 1,
		PastDueSince:       &since,
	}
	repo := store.NewFactory().NewUnitOfWork(ctx).SubscriptionRepository()
	require.NoError(t, repo.Create(ctx, sub))

	_, err := svc.BillDueSubscriptions(ctx, time.Now().UTC())
	require.NoError(t, err)

	after := findSubscription(t, store, sub.Id)
	assert.Equal(t, entity.SubscriptionStateExpired, after.State)
	assert.Equal(t, entity.ExpiryFailedChargeThreshold, after.FailedChargeCount)
}

func TestExpiryNeedsBothThresholds(t *testing.T) {
	gw := newFakeGateway()
	gw.createChargeFn = func(req *gateway.ChargeRequest) (*gateway.Charge, error) {
		return declinedCharge("chr_fail"), nil
	}
	svc, store := newSubscriptionFixture(gw)
	ctx := context.Background()

	customer := seedCustomer(store, "notyet@example.pe")
	card := seedCard(store, customer.Id)
	plan := seedPlan(store, 4900, 0)

	// Many failures, but past due for only two days.
	since := time.Now().UTC().AddDate(0, 0, -2)
	sub := &entity.Subscription{
		Reference:          "SUB-FLAKY",
		CustomerId:         customer.Id,
		PlanId:             plan.Id,
		CardId:             &card.Id,
		State:              entity.SubscriptionStatePastDue,
		CurrentPeriodStart: since.AddDate(0, -1, 0),
		CurrentPeriodEnd:   since,
		FailedChargeCount:  5,
		PastDueSince:       &since,
	}
	repo := store.NewFactory().NewUnitOfWork(ctx).SubscriptionRepository()
	require.NoError(t, repo.Create(ctx, sub))

	_, err := svc.BillDueSubscriptions(ctx, time.Now().UTC())
	require.NoError(t, err)

	after := findSubscription(t, store, sub.Id)
	assert.Equal(t, entity.SubscriptionStatePastDue, after.State)
}

func TestCancelImmediate(t *testing.T) {
	svc, store := newSubscriptionFixture(newFakeGateway())
	ctx := context.Background()

	customer := seedCustomer(store, "cancel@example.pe")
	card := seedCard(store, customer.Id)
	plan := seedPlan(store, 4900, 0)
	sub := seedDueSubscription(t, store, plan, customer, card)

	res, err := svc.Cancel(ctx, sub.Id, false, "too expensive")
	require.NoError(t, err)

	assert.Equal(t, "cancelled", res.State)
	assert.Equal(t, "too expensive", res.CancellationReason)
	require.NotNil(t, res.CancelledAt)

	// A second cancel is a conflict.
	_, err = svc.Cancel(ctx, sub.Id, false, "")
	require.Error(t, err)
	assert.True(t, apperrors.IsStateConflict(err))
}

func TestCancelKeepsSubscriptionWhenGatewayRefuses(t *testing.T) {
	gw := newFakeGateway()
	gw.cancelSubscriptionFn = func(string) error {
		return &apperrors.GatewayUnavailable{Cause: errors.New("connection refused")}
	}
	svc, store := newSubscriptionFixture(gw)
	ctx := context.Background()

	customer := seedCustomer(store, "sticky@example.pe")
	card := seedCard(store, customer.Id)
	plan := seedPlan(store, 4900, 0)
	sub := seedDueSubscription(t, store, plan, customer, card)
	gwSubId := "sxn_remote_001"
	sub.GatewaySubId = &gwSubId
	require.NoError(t, store.NewFactory().NewUnitOfWork(ctx).SubscriptionRepository().Update(ctx, sub))

	_, err := svc.Cancel(ctx, sub.Id, false, "too expensive")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnavailable(err))

	// The local record is untouched, so a retry can still cancel cleanly.
	after := findSubscription(t, store, sub.Id)
	assert.Equal(t, entity.SubscriptionStateActive, after.State)
	assert.Nil(t, after.CancelledAt)

	gw.cancelSubscriptionFn = nil
	res, err := svc.Cancel(ctx, sub.Id, false, "too expensive")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", res.State)
}

func TestCancelAtPeriodEndDefersUntilSweep(t *testing.T) {
	svc, store := newSubscriptionFixture(newFakeGateway())
	ctx := context.Background()

	customer := seedCustomer(store, "defer@example.pe")
	card := seedCard(store, customer.Id)
	plan := seedPlan(store, 4900, 0)
	sub := seedDueSubscription(t, store, plan, customer, card)

	res, err := svc.Cancel(ctx, sub.Id, true, "moving away")
	require.NoError(t, err)
	assert.Equal(t, "active", res.State)
	assert.True(t, res.CancelAtPeriodEnd)
	assert.Nil(t, res.CancelledAt)

	// The period has already elapsed, so the sweep finalizes it.
	n, err := svc.ProcessDeferredCancellations(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	after := findSubscription(t, store, sub.Id)
	assert.Equal(t, entity.SubscriptionStateCancelled, after.State)
	require.NotNil(t, after.CancelledAt)
}

func TestReactivateClearsDeferredCancellation(t *testing.T) {
	svc, store := newSubscriptionFixture(newFakeGateway())
	ctx := context.Background()

	customer := seedCustomer(store, "rescue@example.pe")
	card := seedCard(store, customer.Id)
	plan := seedPlan(store, 4900, 0)
	sub := seedDueSubscription(t, store, plan, customer, card)

	_, err := svc.Cancel(ctx, sub.Id, true, "")
	require.NoError(t, err)

	res, err := svc.Reactivate(ctx, sub.Id)
	require.NoError(t, err)
	assert.False(t, res.CancelAtPeriodEnd)
}

func TestPreviewProration(t *testing.T) {
	svc, store := newSubscriptionFixture(newFakeGateway())
	ctx := context.Background()

	customer := seedCustomer(store, "prorate@example.pe")
	card := seedCard(store, customer.Id)
	oldPlan := seedPlan(store, 3000, 0)
	newPlan := seedPlan(store, 6000, 0)

	// 30-day period, half elapsed.
	start := time.Now().UTC().AddDate(0, 0, -15)
	sub := &entity.Subscription{
		Reference:          "SUB-PRORATE",
		CustomerId:         customer.Id,
		PlanId:             oldPlan.Id,
		CardId:             &card.Id,
		State:              entity.SubscriptionStateActive,
		CurrentPeriodStart: start,
		CurrentPeriodEnd:   start.AddDate(0, 0, 30),
	}
	repo := store.NewFactory().NewUnitOfWork(ctx).SubscriptionRepository()
	require.NoError(t, repo.Create(ctx, sub))

	res, err := svc.PreviewProration(ctx, sub.Id, newPlan.Id)
	require.NoError(t, err)

	assert.Equal(t, 14, res.DaysRemaining)
	// Daily difference is (6000-3000)/~30.4 over a calendar month plan; the
	// subscription period here is exactly 30 days, so 100/day * 14 days.
	assert.True(t, res.ChargedOnSwitch)
	assert.False(t, res.CreditedOnSwitch)
	assert.Greater(t, res.AdjustmentCents, int64(0))
}

func TestProrationConvertsAcrossCurrencies(t *testing.T) {
	svc, store := newSubscriptionFixture(newFakeGateway())
	ctx := context.Background()

	customer := seedCustomer(store, "fx@example.pe")
	card := seedCard(store, customer.Id)

	// Fixed 30-day periods keep the daily rates exact regardless of month.
	planRepo := store.NewFactory().NewUnitOfWork(ctx).PlanRepository()
	oldPlan := seedPlan(store, 3000, 0)
	oldPlan.IntervalUnit = entity.IntervalUnitDay
	oldPlan.IntervalCount = 30
	require.NoError(t, planRepo.Update(ctx, oldPlan))
	newPlan := seedPlan(store, 6000, 0)
	newPlan.Currency = "USD"
	newPlan.IntervalUnit = entity.IntervalUnitDay
	newPlan.IntervalCount = 30
	require.NoError(t, planRepo.Update(ctx, newPlan))

	start := time.Now().UTC().AddDate(0, 0, -15)
	sub := &entity.Subscription{
		Reference:          "SUB-FX",
		CustomerId:         customer.Id,
		PlanId:             oldPlan.Id,
		CardId:             &card.Id,
		State:              entity.SubscriptionStateActive,
		CurrentPeriodStart: start,
		CurrentPeriodEnd:   start.AddDate(0, 0, 30),
	}
	repo := store.NewFactory().NewUnitOfWork(ctx).SubscriptionRepository()
	require.NoError(t, repo.Create(ctx, sub))

	res, err := svc.PreviewProration(ctx, sub.Id, newPlan.Id)
	require.NoError(t, err)

	// 100 PEN cents/day against 200 USD cents/day over 14 days: the old side
	// is 1400 PEN cents, 373 USD cents at 3.75 PEN per USD, against 2800.
	assert.Equal(t, 14, res.DaysRemaining)
	assert.Equal(t, "USD", res.Currency)
	assert.Equal(t, int64(2800-373), res.AdjustmentCents)
}

func TestChangePlanUpgradeCharges(t *testing.T) {
	gw := newFakeGateway()
	svc, store := newSubscriptionFixture(gw)
	ctx := context.Background()

	customer := seedCustomer(store, "upgrade@example.pe")
	card := seedCard(store, customer.Id)
	oldPlan := seedPlan(store, 3000, 0)
	newPlan := seedPlan(store, 6000, 0)

	start := time.Now().UTC().AddDate(0, 0, -10)
	sub := &entity.Subscription{
		Reference:          "SUB-UPGRADE",
		CustomerId:         customer.Id,
		PlanId:             oldPlan.Id,
		CardId:             &card.Id,
		State:              entity.SubscriptionStateActive,
		CurrentPeriodStart: start,
		CurrentPeriodEnd:   start.AddDate(0, 1, 0),
	}
	repo := store.NewFactory().NewUnitOfWork(ctx).SubscriptionRepository()
	require.NoError(t, repo.Create(ctx, sub))

	res, err := svc.ChangePlan(ctx, sub.Id, newPlan.Id)
	require.NoError(t, err)

	assert.Equal(t, newPlan.Id, res.PlanId)
	require.Len(t, gw.chargeCalls, 1)
	assert.Greater(t, gw.chargeCalls[0].AmountCents, int64(0))
}

func TestChangePlanDowngradeIssuesCredit(t *testing.T) {
	gw := newFakeGateway()
	svc, store := newSubscriptionFixture(gw)
	ctx := context.Background()

	customer := seedCustomer(store, "downgrade@example.pe")
	card := seedCard(store, customer.Id)
	oldPlan := seedPlan(store, 6000, 0)
	newPlan := seedPlan(store, 3000, 0)

	start := time.Now().UTC().AddDate(0, 0, -10)
	sub := &entity.Subscription{
		Reference:          "SUB-DOWNGRADE",
		CustomerId:         customer.Id,
		PlanId:             oldPlan.Id,
		CardId:             &card.Id,
		State:              entity.SubscriptionStateActive,
		CurrentPeriodStart: start,
		CurrentPeriodEnd:   start.AddDate(0, 1, 0),
	}
	uow := store.NewFactory().NewUnitOfWork(ctx)
	require.NoError(t, uow.SubscriptionRepository().Create(ctx, sub))

	_, err := svc.ChangePlan(ctx, sub.Id, newPlan.Id)
	require.NoError(t, err)

	// No charge on a downgrade; the difference comes back as a credit note.
	assert.Empty(t, gw.chargeCalls)

	notes, err := uow.InvoiceRepository().FindAll(ctx, specification.FilterBy{Field: "kind", Value: string(entity.InvoiceKindCreditNote)})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Greater(t, notes[0].TotalCents, int64(0))
	assert.Equal(t, entity.InvoiceKindCreditNote, notes[0].Kind)
}

func TestChangePlanRejectsSamePlan(t *testing.T) {
	svc, store := newSubscriptionFixture(newFakeGateway())
	ctx := context.Background()

	customer := seedCustomer(store, "same@example.pe")
	card := seedCard(store, customer.Id)
	plan := seedPlan(store, 3000, 0)
	sub := seedDueSubscription(t, store, plan, customer, card)

	_, err := svc.ChangePlan(ctx, sub.Id, plan.Id)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestTrialSubscriptionBillsWhenTrialEnds(t *testing.T) {
	gw := newFakeGateway()
	svc, store := newSubscriptionFixture(gw)
	ctx := context.Background()

	customer := seedCustomer(store, "trialend@example.pe")
	card := seedCard(store, customer.Id)
	plan := seedPlan(store, 4900, 14)

	trialEnd := time.Now().UTC().Add(-time.Hour)
	sub := &entity.Subscription{
		Reference:          "SUB-TRIALEND",
		CustomerId:         customer.Id,
		PlanId:             plan.Id,
		CardId:             &card.Id,
		State:              entity.SubscriptionStateTrial,
		CurrentPeriodStart: trialEnd.AddDate(0, 0, -14),
		CurrentPeriodEnd:   trialEnd,
		TrialEnd:           &trialEnd,
	}
	repo := store.NewFactory().NewUnitOfWork(ctx).SubscriptionRepository()
	require.NoError(t, repo.Create(ctx, sub))

	billed, err := svc.BillDueSubscriptions(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 1, billed)

	after := findSubscription(t, store, sub.Id)
	assert.Equal(t, entity.SubscriptionStateActive, after.State)
	assert.Nil(t, after.TrialEnd)
	assert.Equal(t, 1, after.BillCount)
	// First paid period starts at the trial boundary.
	assert.True(t, after.CurrentPeriodStart.Equal(trialEnd))
}
