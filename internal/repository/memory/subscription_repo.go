package memory

import (
	"context"
	"time"

	"culqi-payments-be/internal/entity"
	"culqi-payments-be/internal/repository/specification"

	"github.com/google/uuid"
)

type subscriptionRepo struct {
	store *Store
}

func (r *subscriptionRepo) Create(ctx context.Context, sub *entity.Subscription) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if sub.Id == uuid.Nil {
		sub.Id = uuid.New()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	cp := *sub
	r.store.subscriptions[sub.Id] = &cp
	return nil
}

func (r *subscriptionRepo) Update(ctx context.Context, sub *entity.Subscription) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	sub.UpdatedAt = time.Now().UTC()
	cp := *sub
	r.store.subscriptions[sub.Id] = &cp
	return nil
}

func (r *subscriptionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.subscriptions, id)
	return nil
}

func (r *subscriptionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *subscriptionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*entity.Subscription
	for _, sub := range r.store.subscriptions {
		if matchSubscription(sub, specs) {
			cp := *sub
			// Attach relations the SQL layer would preload.
			if plan, ok := r.store.plans[sub.PlanId]; ok {
				pcp := *plan
				cp.Plan = &pcp
			}
			if cust, ok := r.store.customers[sub.CustomerId]; ok {
				ccp := *cust
				cp.Customer = &ccp
			}
			out = append(out, &cp)
		}
	}
	sortByCreatedAt(out, func(s *entity.Subscription) time.Time { return s.CreatedAt }, specs)
	return paginate(out, specs), nil
}

func (r *subscriptionRepo) CountByState(ctx context.Context, state entity.SubscriptionState) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var count int64
	for _, sub := range r.store.subscriptions {
		if sub.State == state {
			count++
		}
	}
	return count, nil
}

func matchSubscription(sub *entity.Subscription, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if sub.Id != s.ID {
				return false
			}
		case specification.ByReference:
			if sub.Reference != s.Reference {
				return false
			}
		case specification.ByCustomer:
			if sub.CustomerId != s.CustomerId {
				return false
			}
		case specification.ByPlan:
			if sub.PlanId != s.PlanId {
				return false
			}
		case specification.ByState:
			if string(sub.State) != s.State {
				return false
			}
		case specification.ByStates:
			if !containsString(s.States, string(sub.State)) {
				return false
			}
		case specification.DueForBilling:
			if !sub.DueForBilling(s.Now) {
				return false
			}
		case specification.PendingCancellation:
			if !sub.CancelAtPeriodEnd || s.Now.Before(sub.CurrentPeriodEnd) {
				return false
			}
		}
	}
	return true
}
