package unitofwork

import (
	"context"

	"culqi-payments-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	TransactionRepository() contract.TransactionRepository
	CustomerRepository() contract.CustomerRepository
	PlanRepository() contract.PlanRepository
	SubscriptionRepository() contract.SubscriptionRepository
	RefundRepository() contract.RefundRepository
	InvoiceRepository() contract.InvoiceRepository
	WebhookEventRepository() contract.WebhookEventRepository
}
