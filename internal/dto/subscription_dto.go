// FILE: internal/dto/subscription_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

type EnrollRequest struct {
	CustomerId uuid.UUID  `json:"customer_id" validate:"required"`
	PlanId     uuid.UUID  `json:"plan_id" validate:"required"`
	CardId     *uuid.UUID `json:"card_id"`
	TokenId    string     `json:"token_id"`
	// Quantity multiplies the plan price each cycle. Zero means one seat.
	Quantity int `json:"quantity" validate:"gte=0"`
	// SkipTrial starts billing immediately even when the plan has trial days.
	SkipTrial bool `json:"skip_trial"`
}

type ChangePlanRequest struct {
	NewPlanId uuid.UUID `json:"new_plan_id" validate:"required"`
}

type CancelSubscriptionRequest struct {
	// AtPeriodEnd defers the cancellation until the paid period runs out.
	AtPeriodEnd bool   `json:"at_period_end"`
	Reason      string `json:"reason"`
}

type SubscriptionResponse struct {
	Id                 uuid.UUID  `json:"id"`
	Reference          string     `json:"reference"`
	CustomerId         uuid.UUID  `json:"customer_id"`
	PlanId             uuid.UUID  `json:"plan_id"`
	PlanName           string     `json:"plan_name,omitempty"`
	State              string     `json:"state"`
	Quantity           int        `json:"quantity"`
	CurrentPeriodStart time.Time  `json:"current_period_start"`
	CurrentPeriodEnd   time.Time  `json:"current_period_end"`
	TrialEnd           *time.Time `json:"trial_end,omitempty"`
	BillCount          int        `json:"bill_count"`
	TotalPaidCents     int64      `json:"total_paid_cents"`
	FailedChargeCount  int        `json:"failed_charge_count"`
	CancelAtPeriodEnd  bool       `json:"cancel_at_period_end"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

type ProrationPreviewResponse struct {
	CurrentPlanId    uuid.UUID `json:"current_plan_id"`
	NewPlanId        uuid.UUID `json:"new_plan_id"`
	DaysRemaining    int       `json:"days_remaining"`
	AdjustmentCents  int64     `json:"adjustment_cents"`
	Currency         string    `json:"currency"`
	ChargedOnSwitch  bool      `json:"charged_on_switch"`
	CreditedOnSwitch bool      `json:"credited_on_switch"`
}
