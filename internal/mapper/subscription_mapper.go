// FILE: internal/mapper/subscription_mapper.go
package mapper

import (
	"culqi-payments-be/internal/entity"
	"culqi-payments-be/internal/model"

	"github.com/google/uuid"
)

type SubscriptionMapper struct {
	planMapper     *PlanMapper
	customerMapper *CustomerMapper
}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{
		planMapper:     NewPlanMapper(),
		customerMapper: NewCustomerMapper(),
	}
}

func (m *SubscriptionMapper) ToEntity(s *model.Subscription) *entity.Subscription {
	if s == nil {
		return nil
	}
	sub := &entity.Subscription{
		Id:                 s.Id,
		Reference:          s.Reference,
		CustomerId:         s.CustomerId,
		PlanId:             s.PlanId,
		CardId:             s.CardId,
		GatewaySubId:       s.GatewaySubId,
		State:              entity.SubscriptionState(s.State),
		Quantity:           s.Quantity,
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
		TrialEnd:           s.TrialEnd,
		BillCount:          s.BillCount,
		TotalPaidCents:     s.TotalPaidCents,
		FailedChargeCount:  s.FailedChargeCount,
		PastDueSince:       s.PastDueSince,
		CancelAtPeriodEnd:  s.CancelAtPeriodEnd,
		CancelledAt:        s.CancelledAt,
		CancellationReason: s.CancellationReason,
		LastChargeAttempt:  s.LastChargeAttempt,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
	// Carry preloaded relations when the query asked for them.
	if s.Plan.Id != uuid.Nil {
		sub.Plan = m.planMapper.ToEntity(&s.Plan)
	}
	if s.Customer.Id != uuid.Nil {
		sub.Customer = m.customerMapper.ToEntity(&s.Customer)
	}
	return sub
}

func (m *SubscriptionMapper) ToModel(s *entity.Subscription) *model.Subscription {
	if s == nil {
		return nil
	}
	return &model.Subscription{
		Id:                 s.Id,
		Reference:          s.Reference,
		CustomerId:         s.CustomerId,
		PlanId:             s.PlanId,
		CardId:             s.CardId,
		GatewaySubId:       s.GatewaySubId,
		State:              string(s.State),
		Quantity:           s.Quantity,
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
		TrialEnd:           s.TrialEnd,
		BillCount:          s.BillCount,
		TotalPaidCents:     s.TotalPaidCents,
		FailedChargeCount:  s.FailedChargeCount,
		PastDueSince:       s.PastDueSince,
		CancelAtPeriodEnd:  s.CancelAtPeriodEnd,
		CancelledAt:        s.CancelledAt,
		CancellationReason: s.CancellationReason,
		LastChargeAttempt:  s.LastChargeAttempt,
	}
}

func (m *SubscriptionMapper) ToEntities(models []*model.Subscription) []*entity.Subscription {
	entities := make([]*entity.Subscription, 0, len(models))
	for _, mdl := range models {
		entities = append(entities, m.ToEntity(mdl))
	}
	return entities
}
