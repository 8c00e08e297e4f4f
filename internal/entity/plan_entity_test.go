package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlanPeriodEnd(t *testing.T) {
	start := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		unit IntervalUnit
		n    int
		want time.Time
	}{
		{"daily", IntervalUnitDay, 1, start.AddDate(0, 0, 1)},
		{"every 10 days", IntervalUnitDay, 10, start.AddDate(0, 0, 10)},
		{"weekly", IntervalUnitWeek, 1, start.AddDate(0, 0, 7)},
		{"biweekly", IntervalUnitWeek, 2, start.AddDate(0, 0, 14)},
		{"monthly", IntervalUnitMonth, 1, time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC)},
		{"quarterly", IntervalUnitMonth, 3, time.Date(2026, 4, 15, 10, 0, 0, 0, time.UTC)},
		{"yearly", IntervalUnitYear, 1, time.Date(2027, 1, 15, 10, 0, 0, 0, time.UTC)},
		{"zero count defaults to one", IntervalUnitMonth, 0, time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Plan{IntervalUnit: tt.unit, IntervalCount: tt.n}
			assert.Equal(t, tt.want, p.PeriodEnd(start))
		})
	}
}

func TestPlanPeriodEndMonthOverflow(t *testing.T) {
	// Jan 31 + 1 month normalizes past February, matching AddDate.
	p := &Plan{IntervalUnit: IntervalUnitMonth, IntervalCount: 1}
	start := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), p.PeriodEnd(start))
}

func TestPlanDailyRateCents(t *testing.T) {
	// September has 30 days, so a 3000-cent plan is 100 cents a day.
	p := &Plan{AmountCents: 3000, IntervalUnit: IntervalUnitMonth, IntervalCount: 1}
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	assert.InDelta(t, 100.0, p.DailyRateCents(start), 1e-9)

	// February 2026 has 28 days.
	feb := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	assert.InDelta(t, 3000.0/28.0, p.DailyRateCents(feb), 1e-9)
}

func TestPlanHasTrial(t *testing.T) {
	assert.False(t, (&Plan{TrialDays: 0}).HasTrial())
	assert.True(t, (&Plan{TrialDays: 14}).HasTrial())
}
