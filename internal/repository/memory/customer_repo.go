package memory

import (
	"context"
	"time"

	"culqi-payments-be/internal/entity"
	"culqi-payments-be/internal/repository/specification"

	"github.com/google/uuid"
)

type customerRepo struct {
	store *Store
}

func (r *customerRepo) Create(ctx context.Context, customer *entity.Customer) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if customer.Id == uuid.Nil {
		customer.Id = uuid.New()
	}
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = time.Now().UTC()
	}
	cp := *customer
	r.store.customers[customer.Id] = &cp
	return nil
}

func (r *customerRepo) Update(ctx context.Context, customer *entity.Customer) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	customer.UpdatedAt = time.Now().UTC()
	cp := *customer
	r.store.customers[customer.Id] = &cp
	return nil
}

func (r *customerRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Customer, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *customerRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Customer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*entity.Customer
	for _, c := range r.store.customers {
		if matchCustomer(c, specs) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return paginate(out, specs), nil
}

func matchCustomer(c *entity.Customer, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if c.Id != s.ID {
				return false
			}
		case specification.ByEmail:
			if c.Email != s.Email {
				return false
			}
		}
	}
	return true
}

// Cards

func (r *customerRepo) CreateCard(ctx context.Context, card *entity.Card) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if card.Id == uuid.Nil {
		card.Id = uuid.New()
	}
	if card.CreatedAt.IsZero() {
		card.CreatedAt = time.Now().UTC()
	}
	cp := *card
	r.store.cards[card.Id] = &cp
	return nil
}

func (r *customerRepo) UpdateCard(ctx context.Context, card *entity.Card) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	card.UpdatedAt = time.Now().UTC()
	cp := *card
	r.store.cards[card.Id] = &cp
	return nil
}

func (r *customerRepo) DeleteCard(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.cards, id)
	return nil
}

func (r *customerRepo) FindOneCard(ctx context.Context, specs ...specification.Specification) (*entity.Card, error) {
	all, err := r.FindAllCards(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *customerRepo) FindAllCards(ctx context.Context, specs ...specification.Specification) ([]*entity.Card, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*entity.Card
	for _, c := range r.store.cards {
		if matchCard(c, specs) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return paginate(out, specs), nil
}

func matchCard(c *entity.Card, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if c.Id != s.ID {
				return false
			}
		case specification.ByCustomer:
			if c.CustomerId != s.CustomerId {
				return false
			}
		case specification.ActiveOnly:
			if !c.Active {
				return false
			}
		}
	}
	return true
}
