// FILE: internal/service/subscription_service.go
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"culqi-payments-be/internal/dto"
	"culqi-payments-be/internal/entity"
	"culqi-payments-be/internal/pkg/apperrors"
	"culqi-payments-be/internal/pkg/logger"
	"culqi-payments-be/internal/repository/specification"
	"culqi-payments-be/internal/repository/unitofwork"
	"culqi-payments-be/pkg/events"
	"culqi-payments-be/pkg/gateway"
	"culqi-payments-be/pkg/rates"

	"github.com/google/uuid"
)

type ISubscriptionService interface {
	Enroll(ctx context.Context, req *dto.EnrollRequest) (*dto.SubscriptionResponse, error)
	GetSubscription(ctx context.Context, id uuid.UUID) (*dto.SubscriptionResponse, error)
	ListByCustomer(ctx context.Context, customerId uuid.UUID) ([]*dto.SubscriptionResponse, error)
	Cancel(ctx context.Context, id uuid.UUID, atPeriodEnd bool, reason string) (*dto.SubscriptionResponse, error)
	Reactivate(ctx context.Context, id uuid.UUID) (*dto.SubscriptionResponse, error)
	ChangePlan(ctx context.Context, id uuid.UUID, newPlanId uuid.UUID) (*dto.SubscriptionResponse, error)
	PreviewProration(ctx context.Context, id uuid.UUID, newPlanId uuid.UUID) (*dto.ProrationPreviewResponse, error)

	// Scheduler entry points.
	BillDueSubscriptions(ctx context.Context, now time.Time) (int, error)
	ProcessDeferredCancellations(ctx context.Context, now time.Time) (int, error)
}

type subscriptionService struct {
	uowFactory unitofwork.RepositoryFactory
	gateways   map[string]gateway.PaymentGateway
	provider   string
	rates      rates.RateProvider
	emitter    *EventEmitter
	logger     logger.ILogger
}

func NewSubscriptionService(
	uowFactory unitofwork.RepositoryFactory,
	gateways map[string]gateway.PaymentGateway,
	provider string,
	rateProvider rates.RateProvider,
	emitter *EventEmitter,
	log logger.ILogger,
) ISubscriptionService {
	return &subscriptionService{
		uowFactory: uowFactory,
		gateways:   gateways,
		provider:   provider,
		rates:      rateProvider,
		emitter:    emitter,
		logger:     log,
	}
}

func (s *subscriptionService) gateway() (gateway.PaymentGateway, error) {
	gw, ok := s.gateways[s.provider]
	if !ok {
		return nil, apperrors.NewValidation("provider", fmt.Sprintf("unknown payment provider %q", s.provider))
	}
	return gw, nil
}

func newSubscriptionReference() string {
	return "SUB-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

func (s *subscriptionService) Enroll(ctx context.Context, req *dto.EnrollRequest) (*dto.SubscriptionResponse, error) {
	gw, err := s.gateway()
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	customer, err := uow.CustomerRepository().FindOne(ctx, specification.ByID{ID: req.CustomerId})
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperrors.NewNotFound("customer", req.CustomerId.String())
	}

	plan, err := uow.PlanRepository().FindOne(ctx, specification.ByID{ID: req.PlanId})
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, apperrors.NewNotFound("plan", req.PlanId.String())
	}
	if !plan.Active {
		return nil, apperrors.NewValidation("plan_id", "plan is no longer offered")
	}

	if plan.MaxSubscribers > 0 {
		enrolled, err := uow.SubscriptionRepository().FindAll(ctx,
			specification.ByPlan{PlanId: plan.Id},
			specification.ByStates{States: []string{
				string(entity.SubscriptionStateActive),
				string(entity.SubscriptionStateTrial),
				string(entity.SubscriptionStatePastDue),
			}},
		)
		if err != nil {
			return nil, err
		}
		if len(enrolled) >= plan.MaxSubscribers {
			return nil, apperrors.NewValidation("plan_id", "plan has reached its subscriber limit")
		}
	}

	card, err := s.resolveCard(ctx, uow, gw, customer, req)
	if err != nil {
		return nil, err
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	now := time.Now().UTC()
	// The period end starts at enrollment time: the first billing cycle
	// (immediately for paid plans, at trial end otherwise) advances it into
	// the first real period.
	sub := &entity.Subscription{
		Reference:          newSubscriptionReference(),
		CustomerId:         customer.Id,
		PlanId:             plan.Id,
		CardId:             &card.Id,
		State:              entity.SubscriptionStateActive,
		Quantity:           quantity,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now,
	}

	if plan.HasTrial() && !req.SkipTrial {
		trialEnd := now.AddDate(0, 0, plan.TrialDays)
		sub.State = entity.SubscriptionStateTrial
		sub.TrialEnd = &trialEnd
		sub.CurrentPeriodEnd = trialEnd
	}

	if err := uow.SubscriptionRepository().Create(ctx, sub); err != nil {
		return nil, err
	}

	// Register with the gateway's recurrence engine when the plan is mirrored
	// there. Local billing stays authoritative either way.
	if plan.GatewayPlanId != nil && card.GatewayCardId != nil {
		gwSub, gerr := gw.CreateSubscription(ctx, &gateway.SubscriptionRequest{
			CardID:   *card.GatewayCardId,
			PlanID:   *plan.GatewayPlanId,
			Quantity: sub.Quantity,
			Metadata: map[string]string{
				"reference": sub.Reference,
			},
		})
		if gerr != nil {
			s.logger.Warn("SubscriptionService", "Gateway subscription registration failed", map[string]interface{}{
				"reference": sub.Reference,
				"error":     gerr.Error(),
			})
		} else {
			sub.GatewaySubId = &gwSub.ID
			if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
				return nil, err
			}
		}
	}

	// No trial means the first period is charged at enrollment.
	if sub.State == entity.SubscriptionStateActive {
		sub.Plan = plan
		sub.Customer = customer
		if err := s.billSubscription(ctx, uow, sub, now); err != nil {
			s.logger.Warn("SubscriptionService", "Initial charge failed", map[string]interface{}{
				"reference": sub.Reference,
				"error":     err.Error(),
			})
		}
	}

	s.emitter.Emit(ctx, events.New(events.TypeSubscriptionCreated, map[string]interface{}{
		"subscription_id": sub.Id.String(),
		"reference":       sub.Reference,
		"plan":            plan.Name,
		"email":           customer.Email,
		"state":           string(sub.State),
	}))

	return mapSubscriptionResponse(sub), nil
}

// resolveCard vaults a fresh token or validates an already stored card.
func (s *subscriptionService) resolveCard(ctx context.Context, uow unitofwork.UnitOfWork, gw gateway.PaymentGateway, customer *entity.Customer, req *dto.EnrollRequest) (*entity.Card, error) {
	if req.CardId != nil {
		card, err := uow.CustomerRepository().FindOneCard(ctx, specification.ByID{ID: *req.CardId})
		if err != nil {
			return nil, err
		}
		if card == nil || card.CustomerId != customer.Id {
			return nil, apperrors.NewNotFound("card", req.CardId.String())
		}
		if !card.Active {
			return nil, apperrors.NewValidation("card_id", "card is no longer active")
		}
		return card, nil
	}

	if req.TokenId == "" {
		return nil, apperrors.NewValidation("token_id", "either token_id or card_id is required")
	}

	if customer.GatewayCustomerId == nil {
		gwCustomer, err := gw.CreateCustomer(ctx, &gateway.CustomerRequest{
			Email:     customer.Email,
			FirstName: customer.FirstName,
			LastName:  customer.LastName,
			Phone:     customer.Phone,
			Address:   customer.AddressLine,
			City:      customer.City,
			Country:   customer.CountryCode,
		})
		if err != nil {
			return nil, err
		}
		customer.GatewayCustomerId = &gwCustomer.ID
		if err := uow.CustomerRepository().Update(ctx, customer); err != nil {
			return nil, err
		}
	}

	gwCard, err := gw.CreateCard(ctx, &gateway.CardRequest{
		CustomerID: *customer.GatewayCustomerId,
		TokenID:    req.TokenId,
	})
	if err != nil {
		return nil, err
	}

	card := &entity.Card{
		CustomerId:    customer.Id,
		GatewayCardId: &gwCard.ID,
		Brand:         gwCard.Brand,
		LastFour:      gwCard.LastFour,
		ExpMonth:      gwCard.ExpMonth,
		ExpYear:       gwCard.ExpYear,
		Active:        true,
	}
	if err := uow.CustomerRepository().CreateCard(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

// billSubscription runs one billing cycle: charge the stored card, and on
// success advance the period (the new period starts exactly where the old
// one ended) and invoice when the plan carries a product.
func (s *subscriptionService) billSubscription(ctx context.Context, uow unitofwork.UnitOfWork, sub *entity.Subscription, now time.Time) error {
	gw, err := s.gateway()
	if err != nil {
		return err
	}

	plan := sub.Plan
	customer := sub.Customer
	if plan == nil || customer == nil {
		return apperrors.NewValidation("subscription", "subscription is missing plan or customer")
	}

	// A cycle cap closes the subscription out instead of charging again.
	if plan.MaxCycles > 0 && sub.BillCount >= plan.MaxCycles {
		sub.CancellationReason = "plan cycle limit reached"
		return s.finalizeCancel(ctx, uow, sub, now)
	}

	card, err := s.billableCard(ctx, uow, sub)
	if err != nil {
		return s.recordFailedCycle(ctx, uow, sub, now, err.Error())
	}

	cycle := sub.BillCount + 1
	cycleAmount := plan.AmountCents * int64(sub.EffectiveQuantity())
	reference := fmt.Sprintf("%s-CYCLE-%d", sub.Reference, cycle)

	tx := &entity.Transaction{
		Reference:       reference,
		ProviderCode:    gw.ProviderCode(),
		CustomerId:      &customer.Id,
		CardId:          &card.Id,
		SubscriptionId:  &sub.Id,
		AmountCents:     cycleAmount,
		Currency:        plan.Currency,
		PaymentMethod:   entity.PaymentMethodCard,
		State:           entity.TransactionStateDraft,
		Email:           customer.Email,
		Metadata:        map[string]string{"reference": reference, "subscription": sub.Reference},
		LastStateChange: now,
	}
	if err := uow.TransactionRepository().Create(ctx, tx); err != nil {
		return err
	}

	attempt := now
	sub.LastChargeAttempt = &attempt

	charge, chErr := gw.CreateCharge(ctx, &gateway.ChargeRequest{
		AmountCents: cycleAmount,
		Currency:    plan.Currency,
		Email:       customer.Email,
		Description: fmt.Sprintf("%s (cycle %d)", plan.Name, cycle),
		SourceID:    *card.GatewayCardId,
		Capture:     true,
		Metadata:    tx.Metadata,
	})
	if chErr != nil {
		tx.State = entity.TransactionStateError
		tx.StateMessage = chErr.Error()
		tx.LastStateChange = time.Now().UTC()
		if apperrors.IsUnavailable(chErr) {
			tx.State = entity.TransactionStatePending
			tx.StateMessage = "gateway unreachable, awaiting confirmation"
		}
		if err := uow.TransactionRepository().Update(ctx, tx); err != nil {
			return err
		}
		return s.recordFailedCycle(ctx, uow, sub, now, chErr.Error())
	}

	updated, _, applyErr := ApplyChargeOutcome(*tx, charge, time.Now().UTC())
	if applyErr != nil {
		return applyErr
	}

	if updated.State != entity.TransactionStateDone {
		if err := uow.TransactionRepository().Update(ctx, &updated); err != nil {
			return err
		}
		emitTransactionStateEvent(ctx, s.emitter, &updated)
		return s.recordFailedCycle(ctx, uow, sub, now, updated.StateMessage)
	}

	// Success: the settled charge, the advanced period and the invoice land
	// in one transaction.
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.TransactionRepository().Update(ctx, &updated); err != nil {
		return err
	}

	sub.BillCount++
	sub.TotalPaidCents += cycleAmount
	sub.FailedChargeCount = 0
	sub.PastDueSince = nil
	sub.State = entity.SubscriptionStateActive
	sub.TrialEnd = nil
	newStart := sub.CurrentPeriodEnd
	sub.CurrentPeriodStart = newStart
	sub.CurrentPeriodEnd = plan.PeriodEnd(newStart)
	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return err
	}

	if plan.ProductId != nil {
		invoice, ierr := s.issueCycleInvoice(ctx, uow, sub, plan, customer)
		if ierr != nil {
			return ierr
		}
		updated.InvoiceId = &invoice.Id
		if err := uow.TransactionRepository().Update(ctx, &updated); err != nil {
			return err
		}
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	emitTransactionStateEvent(ctx, s.emitter, &updated)
	s.emitter.Emit(ctx, events.New(events.TypeSubscriptionBilled, map[string]interface{}{
		"subscription_id": sub.Id.String(),
		"reference":       sub.Reference,
		"plan":            plan.Name,
		"email":           customer.Email,
		"cycle":           sub.BillCount,
		"amount_cents":    cycleAmount,
		"currency":        plan.Currency,
	}))

	return nil
}

func (s *subscriptionService) billableCard(ctx context.Context, uow unitofwork.UnitOfWork, sub *entity.Subscription) (*entity.Card, error) {
	if sub.CardId == nil {
		return nil, apperrors.NewValidation("card", "subscription has no stored card")
	}
	card, err := uow.CustomerRepository().FindOneCard(ctx, specification.ByID{ID: *sub.CardId})
	if err != nil {
		return nil, err
	}
	if card == nil || card.GatewayCardId == nil || !card.Active {
		return nil, apperrors.NewValidation("card", "stored card is unusable")
	}
	if card.Expired(time.Now().UTC()) {
		return nil, apperrors.NewValidation("card", "stored card has expired")
	}
	return card, nil
}

// recordFailedCycle moves the subscription into dunning and, once the
// escalation thresholds are both crossed, expires it.
func (s *subscriptionService) recordFailedCycle(ctx context.Context, uow unitofwork.UnitOfWork, sub *entity.Subscription, now time.Time, reason string) error {
	sub.FailedChargeCount++
	if sub.PastDueSince == nil {
		since := now
		sub.PastDueSince = &since
	}
	sub.State = entity.SubscriptionStatePastDue

	planName := ""
	email := ""
	if sub.Plan != nil {
		planName = sub.Plan.Name
	}
	if sub.Customer != nil {
		email = sub.Customer.Email
	}

	if sub.ShouldExpire(now) {
		sub.State = entity.SubscriptionStateExpired
		if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
			return err
		}
		s.cancelAtGateway(ctx, sub)
		s.emitter.Emit(ctx, events.New(events.TypeSubscriptionExpired, map[string]interface{}{
			"subscription_id": sub.Id.String(),
			"reference":       sub.Reference,
			"plan":            planName,
			"email":           email,
		}))
		return nil
	}

	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return err
	}

	s.emitter.Emit(ctx, events.New(events.TypeSubscriptionPastDue, map[string]interface{}{
		"subscription_id": sub.Id.String(),
		"reference":       sub.Reference,
		"plan":            planName,
		"email":           email,
		"attempt":         sub.FailedChargeCount,
		"reason":          reason,
	}))
	return nil
}

func (s *subscriptionService) issueCycleInvoice(ctx context.Context, uow unitofwork.UnitOfWork, sub *entity.Subscription, plan *entity.Plan, customer *entity.Customer) (*entity.Invoice, error) {
	number, err := uow.InvoiceRepository().NextNumber(ctx, entity.InvoiceKindInvoice)
	if err != nil {
		return nil, err
	}

	periodStart := sub.CurrentPeriodStart
	periodEnd := sub.CurrentPeriodEnd
	quantity := sub.EffectiveQuantity()
	invoice := &entity.Invoice{
		Number:         number,
		Kind:           entity.InvoiceKindInvoice,
		State:          entity.InvoiceStatePaid,
		CustomerId:     customer.Id,
		SubscriptionId: &sub.Id,
		Currency:       plan.Currency,
		TotalCents:     plan.AmountCents * int64(quantity),
		IssuedAt:       time.Now().UTC(),
		PeriodStart:    &periodStart,
		PeriodEnd:      &periodEnd,
		Lines: []entity.InvoiceLine{
			{
				ProductId:      plan.ProductId,
				Description:    fmt.Sprintf("%s subscription, cycle %d", plan.Name, sub.BillCount),
				Quantity:       float64(quantity),
				UnitPriceCents: plan.AmountCents,
			},
		},
	}
	if err := uow.InvoiceRepository().Create(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *subscriptionService) GetSubscription(ctx context.Context, id uuid.UUID) (*dto.SubscriptionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperrors.NewNotFound("subscription", id.String())
	}
	return mapSubscriptionResponse(sub), nil
}

func (s *subscriptionService) ListByCustomer(ctx context.Context, customerId uuid.UUID) ([]*dto.SubscriptionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	subs, err := uow.SubscriptionRepository().FindAll(ctx,
		specification.ByCustomer{CustomerId: customerId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.SubscriptionResponse, 0, len(subs))
	for _, sub := range subs {
		res = append(res, mapSubscriptionResponse(sub))
	}
	return res, nil
}

func (s *subscriptionService) Cancel(ctx context.Context, id uuid.UUID, atPeriodEnd bool, reason string) (*dto.SubscriptionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperrors.NewNotFound("subscription", id.String())
	}

	switch sub.State {
	case entity.SubscriptionStateCancelled, entity.SubscriptionStateExpired:
		return nil, &apperrors.StateConflict{
			Resource: "subscription",
			From:     string(sub.State),
			To:       string(entity.SubscriptionStateCancelled),
		}
	}

	sub.CancellationReason = reason

	if atPeriodEnd {
		sub.CancelAtPeriodEnd = true
		if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
			return nil, err
		}
		return mapSubscriptionResponse(sub), nil
	}

	if err := s.finalizeCancel(ctx, uow, sub, time.Now().UTC()); err != nil {
		return nil, err
	}
	return mapSubscriptionResponse(sub), nil
}

func (s *subscriptionService) finalizeCancel(ctx context.Context, uow unitofwork.UnitOfWork, sub *entity.Subscription, now time.Time) error {
	// The gateway is cancelled first: if its recurrence engine refuses, the
	// local record stays as it was and the caller gets the error.
	if sub.GatewaySubId != nil {
		gw, err := s.gateway()
		if err != nil {
			return err
		}
		if err := gw.CancelSubscription(ctx, *sub.GatewaySubId); err != nil {
			s.logger.Warn("SubscriptionService", "Gateway cancellation failed", map[string]interface{}{
				"reference": sub.Reference,
				"error":     err.Error(),
			})
			return err
		}
	}

	sub.State = entity.SubscriptionStateCancelled
	sub.CancelledAt = &now
	sub.CancelAtPeriodEnd = false
	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return err
	}

	email := ""
	if sub.Customer != nil {
		email = sub.Customer.Email
	}
	s.emitter.Emit(ctx, events.New(events.TypeSubscriptionCancel, map[string]interface{}{
		"subscription_id": sub.Id.String(),
		"reference":       sub.Reference,
		"email":           email,
		"reason":          sub.CancellationReason,
	}))
	return nil
}

func (s *subscriptionService) cancelAtGateway(ctx context.Context, sub *entity.Subscription) {
	if sub.GatewaySubId == nil {
		return
	}
	gw, err := s.gateway()
	if err != nil {
		return
	}
	if err := gw.CancelSubscription(ctx, *sub.GatewaySubId); err != nil {
		s.logger.Warn("SubscriptionService", "Gateway cancellation failed", map[string]interface{}{
			"reference": sub.Reference,
			"error":     err.Error(),
		})
	}
}

// Reactivate clears a deferred cancellation or retries the charge for a
// past-due subscription.
func (s *subscriptionService) Reactivate(ctx context.Context, id uuid.UUID) (*dto.SubscriptionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperrors.NewNotFound("subscription", id.String())
	}

	now := time.Now().UTC()

	switch {
	case sub.CancelAtPeriodEnd && sub.State != entity.SubscriptionStateCancelled:
		sub.CancelAtPeriodEnd = false
		if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
			return nil, err
		}
	case sub.State == entity.SubscriptionStatePastDue || sub.State == entity.SubscriptionStateUnpaid:
		if err := s.billSubscription(ctx, uow, sub, now); err != nil {
			return nil, err
		}
	default:
		return nil, &apperrors.StateConflict{
			Resource: "subscription",
			From:     string(sub.State),
			To:       string(entity.SubscriptionStateActive),
		}
	}

	return mapSubscriptionResponse(sub), nil
}

// prorationAdjustment computes the signed mid-period adjustment for a plan
// switch: the daily rate difference over the days left, using the actual
// length of the running period, converted into the new plan's currency.
func (s *subscriptionService) prorationAdjustment(ctx context.Context, sub *entity.Subscription, oldPlan, newPlan *entity.Plan, now time.Time) (int64, int, error) {
	daysRemaining := sub.DaysRemaining(now)
	if daysRemaining == 0 {
		return 0, 0, nil
	}

	oldDaily := oldPlan.DailyRateCents(sub.CurrentPeriodStart)
	newDaily := newPlan.DailyRateCents(sub.CurrentPeriodStart)
	quantity := float64(sub.EffectiveQuantity())

	oldRemaining := roundCents(oldDaily * float64(daysRemaining) * quantity)
	newRemaining := roundCents(newDaily * float64(daysRemaining) * quantity)

	if oldPlan.Currency != newPlan.Currency {
		converted, err := rates.Convert(ctx, s.rates, oldRemaining, oldPlan.Currency, newPlan.Currency, now)
		if err != nil {
			return 0, 0, err
		}
		oldRemaining = converted
	}

	return newRemaining - oldRemaining, daysRemaining, nil
}

func roundCents(v float64) int64 {
	if v >= 0 {
		return int64(v + 0.5)
	}
	return int64(v - 0.5)
}

func (s *subscriptionService) PreviewProration(ctx context.Context, id uuid.UUID, newPlanId uuid.UUID) (*dto.ProrationPreviewResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sub, newPlan, err := s.loadPlanSwitch(ctx, uow, id, newPlanId)
	if err != nil {
		return nil, err
	}

	adjustment, daysRemaining, err := s.prorationAdjustment(ctx, sub, sub.Plan, newPlan, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	return &dto.ProrationPreviewResponse{
		CurrentPlanId:    sub.PlanId,
		NewPlanId:        newPlanId,
		DaysRemaining:    daysRemaining,
		AdjustmentCents:  adjustment,
		Currency:         newPlan.Currency,
		ChargedOnSwitch:  adjustment > 0,
		CreditedOnSwitch: adjustment < 0,
	}, nil
}

func (s *subscriptionService) loadPlanSwitch(ctx context.Context, uow unitofwork.UnitOfWork, id, newPlanId uuid.UUID) (*entity.Subscription, *entity.Plan, error) {
	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, nil, err
	}
	if sub == nil {
		return nil, nil, apperrors.NewNotFound("subscription", id.String())
	}
	if sub.Plan == nil {
		return nil, nil, apperrors.NewValidation("subscription", "subscription has no plan loaded")
	}
	if sub.State != entity.SubscriptionStateActive && sub.State != entity.SubscriptionStateTrial {
		return nil, nil, &apperrors.StateConflict{
			Resource: "subscription",
			From:     string(sub.State),
			To:       "plan_change",
		}
	}

	newPlan, err := uow.PlanRepository().FindOne(ctx, specification.ByID{ID: newPlanId})
	if err != nil {
		return nil, nil, err
	}
	if newPlan == nil {
		return nil, nil, apperrors.NewNotFound("plan", newPlanId.String())
	}
	if !newPlan.Active {
		return nil, nil, apperrors.NewValidation("new_plan_id", "plan is no longer offered")
	}
	if newPlan.Id == sub.PlanId {
		return nil, nil, apperrors.NewValidation("new_plan_id", "subscription is already on this plan")
	}

	return sub, newPlan, nil
}

func (s *subscriptionService) ChangePlan(ctx context.Context, id uuid.UUID, newPlanId uuid.UUID) (*dto.SubscriptionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sub, newPlan, err := s.loadPlanSwitch(ctx, uow, id, newPlanId)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	oldPlan := sub.Plan

	adjustment, _, err := s.prorationAdjustment(ctx, sub, oldPlan, newPlan, now)
	if err != nil {
		return nil, err
	}

	if adjustment > 0 {
		if err := s.chargeAdjustment(ctx, uow, sub, newPlan, adjustment, now); err != nil {
			return nil, err
		}
	} else if adjustment < 0 {
		if err := s.creditAdjustment(ctx, uow, sub, oldPlan, newPlan, -adjustment, now); err != nil {
			return nil, err
		}
	}

	sub.PlanId = newPlan.Id
	sub.Plan = newPlan
	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return nil, err
	}

	return mapSubscriptionResponse(sub), nil
}

func (s *subscriptionService) chargeAdjustment(ctx context.Context, uow unitofwork.UnitOfWork, sub *entity.Subscription, newPlan *entity.Plan, amountCents int64, now time.Time) error {
	gw, err := s.gateway()
	if err != nil {
		return err
	}
	card, err := s.billableCard(ctx, uow, sub)
	if err != nil {
		return err
	}
	if sub.Customer == nil {
		return apperrors.NewValidation("subscription", "subscription has no customer loaded")
	}

	reference := fmt.Sprintf("%s-UPGRADE-%d", sub.Reference, now.Unix())
	tx := &entity.Transaction{
		Reference:       reference,
		ProviderCode:    gw.ProviderCode(),
		CustomerId:      &sub.CustomerId,
		CardId:          &card.Id,
		SubscriptionId:  &sub.Id,
		AmountCents:     amountCents,
		Currency:        newPlan.Currency,
		PaymentMethod:   entity.PaymentMethodCard,
		State:           entity.TransactionStateDraft,
		Email:           sub.Customer.Email,
		Metadata:        map[string]string{"reference": reference, "subscription": sub.Reference},
		LastStateChange: now,
	}
	if err := uow.TransactionRepository().Create(ctx, tx); err != nil {
		return err
	}

	charge, chErr := gw.CreateCharge(ctx, &gateway.ChargeRequest{
		AmountCents: amountCents,
		Currency:    newPlan.Currency,
		Email:       sub.Customer.Email,
		Description: fmt.Sprintf("Plan change to %s, prorated", newPlan.Name),
		SourceID:    *card.GatewayCardId,
		Capture:     true,
		Metadata:    tx.Metadata,
	})
	if chErr != nil {
		tx.State = entity.TransactionStateError
		tx.StateMessage = chErr.Error()
		tx.LastStateChange = time.Now().UTC()
		_ = uow.TransactionRepository().Update(ctx, tx)
		return chErr
	}

	updated, _, applyErr := ApplyChargeOutcome(*tx, charge, time.Now().UTC())
	if applyErr != nil {
		return applyErr
	}
	if err := uow.TransactionRepository().Update(ctx, &updated); err != nil {
		return err
	}
	if updated.State != entity.TransactionStateDone {
		return apperrors.NewValidation("payment", "prorated charge was declined: "+updated.StateMessage)
	}
	emitTransactionStateEvent(ctx, s.emitter, &updated)
	return nil
}

// creditAdjustment books the downgrade difference as a credit note against
// the customer. No money moves; the credit offsets the next invoice.
func (s *subscriptionService) creditAdjustment(ctx context.Context, uow unitofwork.UnitOfWork, sub *entity.Subscription, oldPlan, newPlan *entity.Plan, amountCents int64, now time.Time) error {
	number, err := uow.InvoiceRepository().NextNumber(ctx, entity.InvoiceKindCreditNote)
	if err != nil {
		return err
	}

	credit := &entity.Invoice{
		Number:         number,
		Kind:           entity.InvoiceKindCreditNote,
		State:          entity.InvoiceStatePosted,
		CustomerId:     sub.CustomerId,
		SubscriptionId: &sub.Id,
		Currency:       newPlan.Currency,
		TotalCents:     amountCents,
		IssuedAt:       now,
		Lines: []entity.InvoiceLine{
			{
				ProductId:      oldPlan.ProductId,
				Description:    fmt.Sprintf("Prorated credit for switch from %s to %s", oldPlan.Name, newPlan.Name),
				Quantity:       1,
				UnitPriceCents: amountCents,
			},
		},
	}
	return uow.InvoiceRepository().Create(ctx, credit)
}

func (s *subscriptionService) BillDueSubscriptions(ctx context.Context, now time.Time) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	due, err := uow.SubscriptionRepository().FindAll(ctx, specification.DueForBilling{Now: now})
	if err != nil {
		return 0, err
	}

	billed := 0
	for _, sub := range due {
		if err := s.billSubscription(ctx, uow, sub, now); err != nil {
			s.logger.Warn("SubscriptionService", "Billing cycle failed", map[string]interface{}{
				"reference": sub.Reference,
				"error":     err.Error(),
			})
			continue
		}
		billed++
	}
	return billed, nil
}

func (s *subscriptionService) ProcessDeferredCancellations(ctx context.Context, now time.Time) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	pending, err := uow.SubscriptionRepository().FindAll(ctx, specification.PendingCancellation{Now: now})
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, sub := range pending {
		if sub.State == entity.SubscriptionStateCancelled || sub.State == entity.SubscriptionStateExpired {
			continue
		}
		if err := s.finalizeCancel(ctx, uow, sub, now); err != nil {
			return cancelled, err
		}
		cancelled++
	}
	return cancelled, nil
}

func mapSubscriptionResponse(sub *entity.Subscription) *dto.SubscriptionResponse {
	res := &dto.SubscriptionResponse{
		Id:                 sub.Id,
		Reference:          sub.Reference,
		CustomerId:         sub.CustomerId,
		PlanId:             sub.PlanId,
		State:              string(sub.State),
		Quantity:           sub.EffectiveQuantity(),
		CurrentPeriodStart: sub.CurrentPeriodStart,
		CurrentPeriodEnd:   sub.CurrentPeriodEnd,
		TrialEnd:           sub.TrialEnd,
		BillCount:          sub.BillCount,
		TotalPaidCents:     sub.TotalPaidCents,
		FailedChargeCount:  sub.FailedChargeCount,
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		CancelledAt:        sub.CancelledAt,
		CancellationReason: sub.CancellationReason,
		CreatedAt:          sub.CreatedAt,
	}
	if sub.Plan != nil {
		res.PlanName = sub.Plan.Name
	}
	return res
}
