package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByReference struct {
	Reference string
}

func (s ByReference) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("reference = ?", s.Reference)
}

type ByGatewayChargeId struct {
	ChargeId string
}

func (s ByGatewayChargeId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("gateway_charge_id = ?", s.ChargeId)
}

// ByMetadataReference resolves a transaction through the reference the
// gateway echoes back in charge metadata. Exact match only, the reference
// is unique so there is never a "latest pending" tiebreak.
type ByMetadataReference struct {
	Reference string
}

func (s ByMetadataReference) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("metadata ->> 'reference' = ?", s.Reference)
}

type ByGatewayRefundId struct {
	RefundId string
}

func (s ByGatewayRefundId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("gateway_refund_id = ?", s.RefundId)
}

type ByState struct {
	State string
}

func (s ByState) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("state = ?", s.State)
}

type ByStates struct {
	States []string
}

func (s ByStates) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("state IN ?", s.States)
}

type ByCustomer struct {
	CustomerId uuid.UUID
}

func (s ByCustomer) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("customer_id = ?", s.CustomerId)
}

type ByPlan struct {
	PlanId uuid.UUID
}

func (s ByPlan) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("plan_id = ?", s.PlanId)
}

type ByTransaction struct {
	TransactionId uuid.UUID
}

func (s ByTransaction) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("transaction_id = ?", s.TransactionId)
}

type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}

type ByProviderEvent struct {
	ProviderCode string
	EventId      string
}

func (s ByProviderEvent) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("provider_code = ? AND event_id = ?", s.ProviderCode, s.EventId)
}

// DueForBilling selects subscriptions whose period (or trial) has elapsed.
type DueForBilling struct {
	Now time.Time
}

func (s DueForBilling) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(
		"(state IN ? AND current_period_end <= ?) OR (state = ? AND trial_end IS NOT NULL AND trial_end <= ?)",
		[]string{"active", "past_due"}, s.Now, "trial", s.Now,
	)
}

// PendingCancellation selects subscriptions flagged for end-of-period
// cancellation whose period has now ended.
type PendingCancellation struct {
	Now time.Time
}

func (s PendingCancellation) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("cancel_at_period_end = ? AND current_period_end <= ?", true, s.Now)
}

// StalePending selects transactions stuck in a non-final state for longer
// than the given age, for reconciliation against the gateway.
type StalePending struct {
	OlderThan time.Time
}

func (s StalePending) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("state IN ? AND updated_at < ?", []string{"pending", "authorized"}, s.OlderThan)
}

// ActiveOnly keeps rows with their active flag set.
type ActiveOnly struct{}

func (s ActiveOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("active = ?", true)
}
