// FILE: internal/entity/plan_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type IntervalUnit string

const (
	IntervalUnitDay   IntervalUnit = "day"
	IntervalUnitWeek  IntervalUnit = "week"
	IntervalUnitMonth IntervalUnit = "month"
	IntervalUnitYear  IntervalUnit = "year"
)

type Plan struct {
	Id            uuid.UUID
	Name          string
	Code          string
	Description   string
	GatewayPlanId *string
	AmountCents   int64
	Currency      string
	IntervalUnit  IntervalUnit
	IntervalCount int
	TrialDays     int
	// ProductId links billing runs to invoicing. A plan without a product
	// still charges, it just never produces an invoice.
	ProductId *uuid.UUID
	// MaxCycles caps how many times a subscription on this plan bills before
	// it is closed out. MaxSubscribers caps concurrent billable enrollments.
	// Zero means unlimited for both.
	MaxCycles      int
	MaxSubscribers int
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PeriodEnd advances start by one billing interval. Month and year intervals
// use calendar arithmetic, so Jan 31 + 1 month lands on the calendar
// normalization Go applies (Mar 2/3), matching how periods were booked before.
func (p *Plan) PeriodEnd(start time.Time) time.Time {
	count := p.IntervalCount
	if count <= 0 {
		count = 1
	}

	switch p.IntervalUnit {
	case IntervalUnitDay:
		return start.AddDate(0, 0, count)
	case IntervalUnitWeek:
		return start.AddDate(0, 0, 7*count)
	case IntervalUnitYear:
		return start.AddDate(count, 0, 0)
	default:
		return start.AddDate(0, count, 0)
	}
}

// DailyRateCents spreads the plan price over the actual length of the period
// that begins at start. Used for proration on mid-period plan changes.
func (p *Plan) DailyRateCents(start time.Time) float64 {
	days := p.PeriodEnd(start).Sub(start).Hours() / 24
	if days <= 0 {
		return 0
	}
	return float64(p.AmountCents) / days
}

func (p *Plan) HasTrial() bool {
	return p.TrialDays > 0
}
