// FILE: internal/mapper/plan_mapper.go
package mapper

import (
	"culqi-payments-be/internal/entity"
	"culqi-payments-be/internal/model"
)

type PlanMapper struct{}

func NewPlanMapper() *PlanMapper {
	return &PlanMapper{}
}

func (m *PlanMapper) ToEntity(p *model.Plan) *entity.Plan {
	if p == nil {
		return nil
	}
	return &entity.Plan{
		Id:             p.Id,
		Name:           p.Name,
		Code:           p.Code,
		Description:    p.Description,
		GatewayPlanId:  p.GatewayPlanId,
		AmountCents:    p.AmountCents,
		Currency:       p.Currency,
		IntervalUnit:   entity.IntervalUnit(p.IntervalUnit),
		IntervalCount:  p.IntervalCount,
		TrialDays:      p.TrialDays,
		ProductId:      p.ProductId,
		MaxCycles:      p.MaxCycles,
		MaxSubscribers: p.MaxSubscribers,
		Active:         p.Active,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (m *PlanMapper) ToModel(p *entity.Plan) *model.Plan {
	if p == nil {
		return nil
	}
	return &model.Plan{
		Id:             p.Id,
		Name:           p.Name,
		Code:           p.Code,
		Description:    p.Description,
		GatewayPlanId:  p.GatewayPlanId,
		AmountCents:    p.AmountCents,
		Currency:       p.Currency,
		IntervalUnit:   string(p.IntervalUnit),
		IntervalCount:  p.IntervalCount,
		TrialDays:      p.TrialDays,
		ProductId:      p.ProductId,
		MaxCycles:      p.MaxCycles,
		MaxSubscribers: p.MaxSubscribers,
		Active:         p.Active,
	}
}

func (m *PlanMapper) ToEntities(models []*model.Plan) []*entity.Plan {
	entities := make([]*entity.Plan, 0, len(models))
	for _, mdl := range models {
		entities = append(entities, m.ToEntity(mdl))
	}
	return entities
}
