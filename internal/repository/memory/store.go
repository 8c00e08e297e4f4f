// Package memory provides map-backed repository implementations used by
// service tests. Specifications are interpreted against entity fields, so
// tests exercise the same query intents the SQL layer would run.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"culqi-payments-be/internal/entity"
	"culqi-payments-be/internal/repository/contract"
	"culqi-payments-be/internal/repository/specification"
	"culqi-payments-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type Store struct {
	mu            sync.RWMutex
	transactions  map[uuid.UUID]*entity.Transaction
	customers     map[uuid.UUID]*entity.Customer
	cards         map[uuid.UUID]*entity.Card
	plans         map[uuid.UUID]*entity.Plan
	subscriptions map[uuid.UUID]*entity.Subscription
	refunds       map[uuid.UUID]*entity.Refund
	invoices      map[uuid.UUID]*entity.Invoice
	webhookEvents map[uuid.UUID]*entity.WebhookEvent
	invoiceSeq    map[entity.InvoiceKind]int
}

func NewStore() *Store {
	return &Store{
		transactions:  map[uuid.UUID]*entity.Transaction{},
		customers:     map[uuid.UUID]*entity.Customer{},
		cards:         map[uuid.UUID]*entity.Card{},
		plans:         map[uuid.UUID]*entity.Plan{},
		subscriptions: map[uuid.UUID]*entity.Subscription{},
		refunds:       map[uuid.UUID]*entity.Refund{},
		invoices:      map[uuid.UUID]*entity.Invoice{},
		webhookEvents: map[uuid.UUID]*entity.WebhookEvent{},
		invoiceSeq:    map[entity.InvoiceKind]int{},
	}
}

// NewFactory returns a RepositoryFactory whose units of work all share this
// store.
func (s *Store) NewFactory() unitofwork.RepositoryFactory {
	return &factory{store: s}
}

type factory struct {
	store *Store
}

func (f *factory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &uow{store: f.store}
}

type uow struct {
	store *Store
	began bool
}

func (u *uow) Begin(ctx context.Context) error {
	u.began = true
	return nil
}

func (u *uow) Commit() error {
	u.began = false
	return nil
}

func (u *uow) Rollback() error {
	u.began = false
	return nil
}

func (u *uow) TransactionRepository() contract.TransactionRepository {
	return &transactionRepo{store: u.store}
}

func (u *uow) CustomerRepository() contract.CustomerRepository {
	return &customerRepo{store: u.store}
}

func (u *uow) PlanRepository() contract.PlanRepository {
	return &planRepo{store: u.store}
}

func (u *uow) SubscriptionRepository() contract.SubscriptionRepository {
	return &subscriptionRepo{store: u.store}
}

func (u *uow) RefundRepository() contract.RefundRepository {
	return &refundRepo{store: u.store}
}

func (u *uow) InvoiceRepository() contract.InvoiceRepository {
	return &invoiceRepo{store: u.store}
}

func (u *uow) WebhookEventRepository() contract.WebhookEventRepository {
	return &webhookEventRepo{store: u.store}
}

// pagination and ordering are applied after filtering, mirroring SQL.

func paginate[T any](items []T, specs []specification.Specification) []T {
	for _, spec := range specs {
		if p, ok := spec.(specification.Pagination); ok {
			if p.Offset >= len(items) {
				return nil
			}
			items = items[p.Offset:]
			if p.Limit > 0 && p.Limit < len(items) {
				items = items[:p.Limit]
			}
		}
	}
	return items
}

func sortByCreatedAt[T any](items []T, created func(T) time.Time, specs []specification.Specification) {
	desc := false
	found := false
	for _, spec := range specs {
		if o, ok := spec.(specification.OrderBy); ok && o.Field == "created_at" {
			desc = o.Desc
			found = true
		}
	}
	if !found {
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return created(items[i]).After(created(items[j]))
		}
		return created(items[i]).Before(created(items[j]))
	})
}
