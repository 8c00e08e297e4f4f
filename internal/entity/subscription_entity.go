// FILE: internal/entity/subscription_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionState string

const (
	SubscriptionStateDraft     SubscriptionState = "draft"
	SubscriptionStateTrial     SubscriptionState = "trial"
	SubscriptionStateActive    SubscriptionState = "active"
	SubscriptionStatePastDue   SubscriptionState = "past_due"
	SubscriptionStateCancelled SubscriptionState = "cancelled"
	SubscriptionStateUnpaid    SubscriptionState = "unpaid"
	SubscriptionStateExpired   SubscriptionState = "expired"
)

// Escalation thresholds for past-due subscriptions. Expiry needs both: enough
// failed attempts AND enough elapsed time, so a flaky card is not killed in a
// single bad afternoon.
const (
	ExpiryFailedChargeThreshold = 3
	ExpiryPastDueDays           = 30
)

type Subscription struct {
	Id                 uuid.UUID
	Reference          string
	CustomerId         uuid.UUID
	PlanId             uuid.UUID
	CardId             *uuid.UUID
	GatewaySubId       *string
	State              SubscriptionState
	Quantity           int
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	TrialEnd           *time.Time
	BillCount          int
	TotalPaidCents     int64
	FailedChargeCount  int
	PastDueSince       *time.Time
	CancelAtPeriodEnd  bool
	CancelledAt        *time.Time
	CancellationReason string
	LastChargeAttempt  *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Plan     *Plan
	Customer *Customer
}

// EffectiveQuantity never returns less than one seat; rows created before the
// quantity column existed have it zeroed.
func (s *Subscription) EffectiveQuantity() int {
	if s.Quantity <= 0 {
		return 1
	}
	return s.Quantity
}

// Billable reports whether the billing engine should attempt a charge.
func (s *Subscription) Billable() bool {
	switch s.State {
	case SubscriptionStateActive, SubscriptionStatePastDue, SubscriptionStateTrial:
		return true
	}
	return false
}

// DueForBilling is true once the current period has elapsed. Trials bill when
// the trial ends, which is when their first real period starts.
func (s *Subscription) DueForBilling(now time.Time) bool {
	if !s.Billable() {
		return false
	}
	if s.State == SubscriptionStateTrial && s.TrialEnd != nil {
		return !now.Before(*s.TrialEnd)
	}
	return !now.Before(s.CurrentPeriodEnd)
}

// ShouldExpire checks the past-due escalation rule: at least
// ExpiryFailedChargeThreshold failed charges AND more than ExpiryPastDueDays
// past due.
func (s *Subscription) ShouldExpire(now time.Time) bool {
	if s.State != SubscriptionStatePastDue && s.State != SubscriptionStateUnpaid {
		return false
	}
	if s.FailedChargeCount < ExpiryFailedChargeThreshold {
		return false
	}
	if s.PastDueSince == nil {
		return false
	}
	return now.Sub(*s.PastDueSince) > time.Duration(ExpiryPastDueDays)*24*time.Hour
}

// DaysRemaining counts whole days left in the current period, never negative.
func (s *Subscription) DaysRemaining(now time.Time) int {
	if !now.Before(s.CurrentPeriodEnd) {
		return 0
	}
	return int(s.CurrentPeriodEnd.Sub(now).Hours() / 24)
}
