package memory

import (
	"context"
	"time"

	"culqi-payments-be/internal/entity"
	"culqi-payments-be/internal/repository/specification"

	"github.com/google/uuid"
)

type transactionRepo struct {
	store *Store
}

func (r *transactionRepo) Create(ctx context.Context, tx *entity.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if tx.Id == uuid.Nil {
		tx.Id = uuid.New()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	cp := *tx
	r.store.transactions[tx.Id] = &cp
	return nil
}

func (r *transactionRepo) Update(ctx context.Context, tx *entity.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	tx.UpdatedAt = time.Now().UTC()
	cp := *tx
	r.store.transactions[tx.Id] = &cp
	return nil
}

func (r *transactionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.transactions, id)
	return nil
}

func (r *transactionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Transaction, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *transactionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*entity.Transaction
	for _, tx := range r.store.transactions {
		if matchTransaction(tx, specs) {
			cp := *tx
			out = append(out, &cp)
		}
	}
	sortByCreatedAt(out, func(t *entity.Transaction) time.Time { return t.CreatedAt }, specs)
	return paginate(out, specs), nil
}

func (r *transactionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}

func matchTransaction(tx *entity.Transaction, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if tx.Id != s.ID {
				return false
			}
		case specification.ByReference:
			if tx.Reference != s.Reference {
				return false
			}
		case specification.ByGatewayChargeId:
			if tx.GatewayChargeId == nil || *tx.GatewayChargeId != s.ChargeId {
				return false
			}
		case specification.ByMetadataReference:
			if tx.Metadata == nil || tx.Metadata["reference"] != s.Reference {
				return false
			}
		case specification.ByState:
			if string(tx.State) != s.State {
				return false
			}
		case specification.ByStates:
			if !containsString(s.States, string(tx.State)) {
				return false
			}
		case specification.ByCustomer:
			if tx.CustomerId == nil || *tx.CustomerId != s.CustomerId {
				return false
			}
		case specification.ByEmail:
			if tx.Email != s.Email {
				return false
			}
		case specification.StalePending:
			if tx.State != entity.TransactionStatePending && tx.State != entity.TransactionStateAuthorized {
				return false
			}
			if !tx.UpdatedAt.Before(s.OlderThan) {
				return false
			}
		}
	}
	return true
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
