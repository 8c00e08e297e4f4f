// FILE: pkg/gateway/gateway.go
package gateway

import "context"

// PaymentGateway is the provider-agnostic contract the payment core is
// written against. One implementation per provider (pkg/culqi,
// pkg/midtrans); the lifecycle logic never talks to a provider directly.
type PaymentGateway interface {
	ProviderCode() string

	CreateCharge(ctx context.Context, req *ChargeRequest) (*Charge, error)
	GetCharge(ctx context.Context, chargeID string) (*Charge, error)

	CreateRefund(ctx context.Context, req *RefundRequest) (*RefundResult, error)
	GetRefund(ctx context.Context, refundID string) (*RefundResult, error)

	CreateCustomer(ctx context.Context, req *CustomerRequest) (*Customer, error)
	UpdateCustomer(ctx context.Context, customerID string, req *CustomerRequest) (*Customer, error)

	CreateCard(ctx context.Context, req *CardRequest) (*Card, error)
	DeleteCard(ctx context.Context, cardID string) error

	CreatePlan(ctx context.Context, req *PlanRequest) (*Plan, error)

	CreateSubscription(ctx context.Context, req *SubscriptionRequest) (*Subscription, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
}
