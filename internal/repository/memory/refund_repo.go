package memory

import (
	"context"
	"time"

	"culqi-payments-be/internal/entity"
	"culqi-payments-be/internal/repository/specification"

	"github.com/google/uuid"
)

type refundRepo struct {
	store *Store
}

func (r *refundRepo) Create(ctx context.Context, refund *entity.Refund) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if refund.Id == uuid.Nil {
		refund.Id = uuid.New()
	}
	if refund.CreatedAt.IsZero() {
		refund.CreatedAt = time.Now().UTC()
	}
	cp := *refund
	r.store.refunds[refund.Id] = &cp
	return nil
}

func (r *refundRepo) Update(ctx context.Context, refund *entity.Refund) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	refund.UpdatedAt = time.Now().UTC()
	cp := *refund
	r.store.refunds[refund.Id] = &cp
	return nil
}

func (r *refundRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Refund, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *refundRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Refund, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*entity.Refund
	for _, ref := range r.store.refunds {
		if matchRefund(ref, specs) {
			cp := *ref
			out = append(out, &cp)
		}
	}
	sortByCreatedAt(out, func(rf *entity.Refund) time.Time { return rf.CreatedAt }, specs)
	return paginate(out, specs), nil
}

func (r *refundRepo) SumSucceededByTransaction(ctx context.Context, txId uuid.UUID) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var total int64
	for _, ref := range r.store.refunds {
		if ref.TransactionId == txId && ref.State == entity.RefundStateSucceeded {
			total += ref.AmountCents
		}
	}
	return total, nil
}

func matchRefund(ref *entity.Refund, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if ref.Id != s.ID {
				return false
			}
		case specification.ByTransaction:
			if ref.TransactionId != s.TransactionId {
				return false
			}
		case specification.ByState:
			if string(ref.State) != s.State {
				return false
			}
		case specification.ByStates:
			if !containsString(s.States, string(ref.State)) {
				return false
			}
		case specification.ByGatewayRefundId:
			if ref.GatewayRefundId == nil || *ref.GatewayRefundId != s.RefundId {
				return false
			}
		}
	}
	return true
}
