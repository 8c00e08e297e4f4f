// FILE: internal/service/plan_service.go
package service

import (
	"context"
	"fmt"
	"strings"

	"culqi-payments-be/internal/dto"
	"culqi-payments-be/internal/entity"
	"culqi-payments-be/internal/pkg/apperrors"
	"culqi-payments-be/internal/pkg/logger"
	"culqi-payments-be/internal/repository/specification"
	"culqi-payments-be/internal/repository/unitofwork"
	"culqi-payments-be/pkg/gateway"

	"github.com/google/uuid"
)

type IPlanService interface {
	CreatePlan(ctx context.Context, req *dto.CreatePlanRequest) (*dto.PlanResponse, error)
	UpdatePlan(ctx context.Context, id uuid.UUID, req *dto.UpdatePlanRequest) (*dto.PlanResponse, error)
	GetPlan(ctx context.Context, id uuid.UUID) (*dto.PlanResponse, error)
	ListPlans(ctx context.Context, activeOnly bool) ([]*dto.PlanResponse, error)
	DeactivatePlan(ctx context.Context, id uuid.UUID) error
}

type planService struct {
	uowFactory unitofwork.RepositoryFactory
	gateways   map[string]gateway.PaymentGateway
	provider   string
	logger     logger.ILogger
}

func NewPlanService(
	uowFactory unitofwork.RepositoryFactory,
	gateways map[string]gateway.PaymentGateway,
	provider string,
	log logger.ILogger,
) IPlanService {
	return &planService{
		uowFactory: uowFactory,
		gateways:   gateways,
		provider:   provider,
		logger:     log,
	}
}

func normalizeCurrency(code string) (string, error) {
	upper := strings.ToUpper(code)
	if upper != "PEN" && upper != "USD" {
		return "", apperrors.NewValidation("currency", fmt.Sprintf("currency %q is not supported", code))
	}
	return upper, nil
}

func (s *planService) CreatePlan(ctx context.Context, req *dto.CreatePlanRequest) (*dto.PlanResponse, error) {
	currency, err := normalizeCurrency(req.Currency)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.PlanRepository().FindOne(ctx, specification.FilterBy{Field: "code", Value: req.Code})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewValidation("code", fmt.Sprintf("plan code %q is already in use", req.Code))
	}

	intervalCount := req.IntervalCount
	if intervalCount == 0 {
		intervalCount = 1
	}

	plan := &entity.Plan{
		Name:           req.Name,
		Code:           req.Code,
		Description:    req.Description,
		AmountCents:    req.AmountCents,
		Currency:       currency,
		IntervalUnit:   entity.IntervalUnit(req.IntervalUnit),
		IntervalCount:  intervalCount,
		TrialDays:      req.TrialDays,
		ProductId:      req.ProductId,
		MaxCycles:      req.MaxCycles,
		MaxSubscribers: req.MaxSubscribers,
		Active:         true,
	}
	if err := uow.PlanRepository().Create(ctx, plan); err != nil {
		return nil, err
	}

	// Mirror the plan on the gateway's recurrence engine. A failure here is
	// logged, not fatal: local billing never reads the mirror.
	if gw, ok := s.gateways[s.provider]; ok {
		gwPlan, gerr := gw.CreatePlan(ctx, &gateway.PlanRequest{
			Name:          plan.Name,
			AmountCents:   plan.AmountCents,
			Currency:      plan.Currency,
			Interval:      string(plan.IntervalUnit),
			IntervalCount: plan.IntervalCount,
			TrialDays:     plan.TrialDays,
			Metadata:      map[string]string{"code": plan.Code},
		})
		if gerr != nil {
			s.logger.Warn("PlanService", "Gateway plan mirror failed", map[string]interface{}{
				"code":  plan.Code,
				"error": gerr.Error(),
			})
		} else {
			plan.GatewayPlanId = &gwPlan.ID
			if err := uow.PlanRepository().Update(ctx, plan); err != nil {
				return nil, err
			}
		}
	}

	return mapPlanResponse(plan), nil
}

func (s *planService) UpdatePlan(ctx context.Context, id uuid.UUID, req *dto.UpdatePlanRequest) (*dto.PlanResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	plan, err := uow.PlanRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, apperrors.NewNotFound("plan", id.String())
	}

	// Pricing and interval are immutable once subscriptions may reference the
	// plan. Price changes go through a new plan and ChangePlan.
	if req.Name != "" {
		plan.Name = req.Name
	}
	if req.Description != "" {
		plan.Description = req.Description
	}
	if req.Active != nil {
		plan.Active = *req.Active
	}

	if err := uow.PlanRepository().Update(ctx, plan); err != nil {
		return nil, err
	}
	return mapPlanResponse(plan), nil
}

func (s *planService) GetPlan(ctx context.Context, id uuid.UUID) (*dto.PlanResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	plan, err := uow.PlanRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, apperrors.NewNotFound("plan", id.String())
	}
	return mapPlanResponse(plan), nil
}

func (s *planService) ListPlans(ctx context.Context, activeOnly bool) ([]*dto.PlanResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if activeOnly {
		specs = append(specs, specification.ActiveOnly{})
	}

	plans, err := uow.PlanRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.PlanResponse, 0, len(plans))
	for _, p := range plans {
		res = append(res, mapPlanResponse(p))
	}
	return res, nil
}

// DeactivatePlan retires a plan from new enrollments. Running subscriptions
// keep billing against it.
func (s *planService) DeactivatePlan(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	plan, err := uow.PlanRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if plan == nil {
		return apperrors.NewNotFound("plan", id.String())
	}

	plan.Active = false
	return uow.PlanRepository().Update(ctx, plan)
}

func mapPlanResponse(p *entity.Plan) *dto.PlanResponse {
	return &dto.PlanResponse{
		Id:             p.Id,
		Name:           p.Name,
		Code:           p.Code,
		Description:    p.Description,
		AmountCents:    p.AmountCents,
		Currency:       p.Currency,
		IntervalUnit:   string(p.IntervalUnit),
		IntervalCount:  p.IntervalCount,
		TrialDays:      p.TrialDays,
		ProductId:      p.ProductId,
		MaxCycles:      p.MaxCycles,
		MaxSubscribers: p.MaxSubscribers,
		Active:         p.Active,
		CreatedAt:      p.CreatedAt,
	}
}
