package service

import (
	"context"
	"errors"
	"time"

	"culqi-payments-be/internal/entity"
	"culqi-payments-be/internal/repository/memory"
	"culqi-payments-be/internal/repository/unitofwork"
	"culqi-payments-be/pkg/gateway"

	"github.com/google/uuid"
)

// nopLogger satisfies logger.ILogger without output.
type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// txTrackingFactory wraps another factory and counts the transaction
// boundaries opened on the unit of work it hands out.
type txTrackingFactory struct {
	inner unitofwork.RepositoryFactory
	last  *txTrackingUow
}

func (f *txTrackingFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	f.last = &txTrackingUow{UnitOfWork: f.inner.NewUnitOfWork(ctx)}
	return f.last
}

type txTrackingUow struct {
	unitofwork.UnitOfWork
	begins  int
	commits int
}

func (u *txTrackingUow) Begin(ctx context.Context) error {
	u.begins++
	return u.UnitOfWork.Begin(ctx)
}

func (u *txTrackingUow) Commit() error {
	u.commits++
	return u.UnitOfWork.Commit()
}

// fakeGateway lets each test script the provider's behavior per call.
type fakeGateway struct {
	code string

	createChargeFn       func(req *gateway.ChargeRequest) (*gateway.Charge, error)
	getChargeFn          func(chargeID string) (*gateway.Charge, error)
	createRefundFn       func(req *gateway.RefundRequest) (*gateway.RefundResult, error)
	getRefundFn          func(refundID string) (*gateway.RefundResult, error)
	cancelSubscriptionFn func(subscriptionID string) error

	chargeCalls []gateway.ChargeRequest
	refundCalls []gateway.RefundRequest
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{code: "culqi"}
}

func (f *fakeGateway) ProviderCode() string {
	if f.code == "" {
		return "culqi"
	}
	return f.code
}

func (f *fakeGateway) CreateCharge(_ context.Context, req *gateway.ChargeRequest) (*gateway.Charge, error) {
	f.chargeCalls = append(f.chargeCalls, *req)
	if f.createChargeFn != nil {
		return f.createChargeFn(req)
	}
	return successfulCharge("chr_test_001", req.AmountCents), nil
}

func (f *fakeGateway) GetCharge(_ context.Context, chargeID string) (*gateway.Charge, error) {
	if f.getChargeFn != nil {
		return f.getChargeFn(chargeID)
	}
	return nil, errors.New("unexpected GetCharge call")
}

func (f *fakeGateway) CreateRefund(_ context.Context, req *gateway.RefundRequest) (*gateway.RefundResult, error) {
	f.refundCalls = append(f.refundCalls, *req)
	if f.createRefundFn != nil {
		return f.createRefundFn(req)
	}
	return &gateway.RefundResult{ID: "ref_test_001", ChargeID: req.ChargeID, AmountCents: req.AmountCents, Status: "succeeded"}, nil
}

func (f *fakeGateway) GetRefund(_ context.Context, refundID string) (*gateway.RefundResult, error) {
	if f.getRefundFn != nil {
		return f.getRefundFn(refundID)
	}
	return nil, errors.New("unexpected GetRefund call")
}

func (f *fakeGateway) CreateCustomer(_ context.Context, req *gateway.CustomerRequest) (*gateway.Customer, error) {
	return &gateway.Customer{ID: "cus_test_001", Email: req.Email}, nil
}

func (f *fakeGateway) UpdateCustomer(_ context.Context, customerID string, req *gateway.CustomerRequest) (*gateway.Customer, error) {
	return &gateway.Customer{ID: customerID, Email: req.Email}, nil
}

func (f *fakeGateway) CreateCard(_ context.Context, req *gateway.CardRequest) (*gateway.Card, error) {
	return &gateway.Card{
		ID:         "crd_test_001",
		CustomerID: req.CustomerID,
		Brand:      "Visa",
		LastFour:   "4242",
		ExpMonth:   12,
		ExpYear:    2031,
	}, nil
}

func (f *fakeGateway) DeleteCard(_ context.Context, _ string) error { return nil }

func (f *fakeGateway) CreatePlan(_ context.Context, _ *gateway.PlanRequest) (*gateway.Plan, error) {
	return &gateway.Plan{ID: "pln_test_001"}, nil
}

func (f *fakeGateway) CreateSubscription(_ context.Context, _ *gateway.SubscriptionRequest) (*gateway.Subscription, error) {
	return &gateway.Subscription{ID: "sxn_test_001", Status: "active"}, nil
}

func (f *fakeGateway) GetSubscription(_ context.Context, subscriptionID string) (*gateway.Subscription, error) {
	return &gateway.Subscription{ID: subscriptionID, Status: "active"}, nil
}

func (f *fakeGateway) CancelSubscription(_ context.Context, subscriptionID string) error {
	if f.cancelSubscriptionFn != nil {
		return f.cancelSubscriptionFn(subscriptionID)
	}
	return nil
}

func successfulCharge(id string, amountCents int64) *gateway.Charge {
	return &gateway.Charge{
		ID:          id,
		Object:      "charge",
		AmountCents: amountCents,
		FeeCents:    amountCents / 25,
		NetCents:    amountCents - amountCents/25,
		Currency:    "PEN",
		Outcome: gateway.Outcome{
			Type: gateway.OutcomeSaleSuccessful,
			Code: "AUT0000",
		},
	}
}

func declinedCharge(id string) *gateway.Charge {
	return &gateway.Charge{
		ID:     id,
		Object: "charge",
		Outcome: gateway.Outcome{
			Type:            gateway.OutcomeSaleDeclined,
			Code:            "DNG044",
			MerchantMessage: "Card declined by issuing bank",
			UserMessage:     "Tu tarjeta fue rechazada",
		},
	}
}

func testEmitter() *EventEmitter {
	return NewEventEmitter(nil, nil, nopLogger{})
}

func seedCustomer(store *memory.Store, email string) *entity.Customer {
	gwID := "cus_seeded"
	c := &entity.Customer{
		GatewayCustomerId: &gwID,
		FirstName:         "Maria",
		LastName:          "Quispe",
		Email:             email,
	}
	repo := store.NewFactory().NewUnitOfWork(context.Background()).CustomerRepository()
	_ = repo.Create(context.Background(), c)
	return c
}

func seedCard(store *memory.Store, customerId uuid.UUID) *entity.Card {
	gwID := "crd_seeded"
	card := &entity.Card{
		CustomerId:    customerId,
		GatewayCardId: &gwID,
		Brand:         "Visa",
		LastFour:      "4242",
		ExpMonth:      12,
		ExpYear:       2031,
		Active:        true,
	}
	repo := store.NewFactory().NewUnitOfWork(context.Background()).CustomerRepository()
	_ = repo.CreateCard(context.Background(), card)
	return card
}

func seedPlan(store *memory.Store, amountCents int64, trialDays int) *entity.Plan {
	p := &entity.Plan{
		Name:          "Pro Monthly",
		Code:          "pro-monthly-" + uuid.NewString()[:8],
		AmountCents:   amountCents,
		Currency:      "PEN",
		IntervalUnit:  entity.IntervalUnitMonth,
		IntervalCount: 1,
		TrialDays:     trialDays,
		Active:        true,
	}
	repo := store.NewFactory().NewUnitOfWork(context.Background()).PlanRepository()
	_ = repo.Create(context.Background(), p)
	return p
}

func seedDoneTransaction(store *memory.Store, amountCents int64) *entity.Transaction {
	chargeId := "chr_seeded_" + uuid.NewString()[:8]
	tx := &entity.Transaction{
		Reference:       "ORD-" + uuid.NewString()[:8],
		ProviderCode:    "culqi",
		GatewayChargeId: &chargeId,
		AmountCents:     amountCents,
		Currency:        "PEN",
		PaymentMethod:   entity.PaymentMethodCard,
		State:           entity.TransactionStateDone,
		Email:           "buyer@example.pe",
		Metadata:        map[string]string{},
		LastStateChange: time.Now().UTC(),
	}
	tx.Metadata["reference"] = tx.Reference
	repo := store.NewFactory().NewUnitOfWork(context.Background()).TransactionRepository()
	_ = repo.Create(context.Background(), tx)
	return tx
}
