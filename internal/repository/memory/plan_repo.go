package memory

import (
	"context"
	"time"

	"culqi-payments-be/internal/entity"
	"culqi-payments-be/internal/repository/specification"

	"github.com/google/uuid"
)

type planRepo struct {
	store *Store
}

func (r *planRepo) Create(ctx context.Context, plan *entity.Plan) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if plan.Id == uuid.Nil {
		plan.Id = uuid.New()
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now().UTC()
	}
	cp := *plan
	r.store.plans[plan.Id] = &cp
	return nil
}

func (r *planRepo) Update(ctx context.Context, plan *entity.Plan) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	plan.UpdatedAt = time.Now().UTC()
	cp := *plan
	r.store.plans[plan.Id] = &cp
	return nil
}

func (r *planRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.plans, id)
	return nil
}

func (r *planRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Plan, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *planRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Plan, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*entity.Plan
	for _, p := range r.store.plans {
		if matchPlan(p, specs) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return paginate(out, specs), nil
}

func matchPlan(p *entity.Plan, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if p.Id != s.ID {
				return false
			}
		case specification.ActiveOnly:
			if !p.Active {
				return false
			}
		case specification.FilterBy:
			if s.Field == "code" {
				if code, ok := s.Value.(string); !ok || p.Code != code {
					return false
				}
			}
		}
	}
	return true
}
