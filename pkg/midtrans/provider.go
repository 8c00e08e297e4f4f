// FILE: pkg/midtrans/provider.go
package midtrans

import (
	"context"
	"fmt"
	"strconv"

	"culqi-payments-be/internal/pkg/apperrors"
	"culqi-payments-be/pkg/gateway"

	midsdk "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
)

// Provider adapts the Midtrans Core API to the gateway contract so the
// lifecycle core stays provider-agnostic. Midtrans has no customer/card
// vault in the sense the core uses; those operations report
// ErrUnsupported and callers fall back to one-off tokens.
type Provider struct {
	client coreapi.Client
}

var ErrUnsupported = fmt.Errorf("operation not supported by midtrans")

func NewProvider(serverKey string, production bool) *Provider {
	env := midsdk.Sandbox
	if production {
		env = midsdk.Production
	}
	var client coreapi.Client
	client.New(serverKey, env)
	return &Provider{client: client}
}

func (p *Provider) ProviderCode() string { return "midtrans" }

// Midtrans bills in whole currency units (IDR has no minor unit).
func grossAmount(amountCents int64) int64 {
	return amountCents / 100
}

func wrapErr(err *midsdk.Error) error {
	if err == nil {
		return nil
	}
	if err.StatusCode == 0 {
		return &apperrors.GatewayUnavailable{Cause: err.GetRawError()}
	}
	return &apperrors.GatewayError{Status: err.StatusCode, Message: err.GetMessage()}
}

func mapStatus(transactionStatus, statusMessage string) gateway.Outcome {
	switch transactionStatus {
	case "capture", "settlement":
		return gateway.Outcome{Type: gateway.OutcomeSaleSuccessful, MerchantMessage: statusMessage}
	case "deny", "cancel", "expire":
		return gateway.Outcome{Type: gateway.OutcomeSaleDeclined, MerchantMessage: statusMessage}
	default:
		return gateway.Outcome{Type: gateway.OutcomePending, MerchantMessage: statusMessage}
	}
}

func (p *Provider) CreateCharge(_ context.Context, req *gateway.ChargeRequest) (*gateway.Charge, error) {
	if req.AmountCents <= 0 {
		return nil, apperrors.NewValidation("amount", "must be a positive amount in minor units")
	}
	orderID := req.Metadata["reference"]
	if orderID == "" {
		return nil, apperrors.NewValidation("metadata.reference", "local reference is required for correlation")
	}

	chargeReq := &coreapi.ChargeReq{
		PaymentType: coreapi.PaymentTypeCreditCard,
		TransactionDetails: midsdk.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: grossAmount(req.AmountCents),
		},
		CreditCard: &coreapi.CreditCardDetails{
			TokenID: req.TokenID,
		},
	}

	resp, err := p.client.ChargeTransaction(chargeReq)
	if err != nil {
		return nil, wrapErr(err)
	}

	amount, _ := strconv.ParseFloat(resp.GrossAmount, 64)
	return &gateway.Charge{
		ID:            resp.TransactionID,
		Object:        "charge",
		AmountCents:   int64(amount * 100),
		Currency:      resp.Currency,
		Outcome:       mapStatus(resp.TransactionStatus, resp.StatusMessage),
		State:         resp.TransactionStatus,
		PaymentMethod: resp.PaymentType,
		Metadata:      req.Metadata,
	}, nil
}

func (p *Provider) GetCharge(_ context.Context, chargeID string) (*gateway.Charge, error) {
	resp, err := p.client.CheckTransaction(chargeID)
	if err != nil {
		return nil, wrapErr(err)
	}
	amount, _ := strconv.ParseFloat(resp.GrossAmount, 64)
	return &gateway.Charge{
		ID:            resp.TransactionID,
		Object:        "charge",
		AmountCents:   int64(amount * 100),
		Currency:      resp.Currency,
		Outcome:       mapStatus(resp.TransactionStatus, resp.StatusMessage),
		State:         resp.TransactionStatus,
		PaymentMethod: resp.PaymentType,
	}, nil
}

func (p *Provider) CreateRefund(_ context.Context, req *gateway.RefundRequest) (*gateway.RefundResult, error) {
	if req.AmountCents <= 0 {
		return nil, apperrors.NewValidation("amount", "must be a positive amount in minor units")
	}
	resp, err := p.client.RefundTransaction(req.ChargeID, &coreapi.RefundReq{
		Amount: grossAmount(req.AmountCents),
		Reason: req.Reason,
	})
	if err != nil {
		return nil, wrapErr(err)
	}
	return &gateway.RefundResult{
		ID:          resp.RefundKey,
		ChargeID:    req.ChargeID,
		AmountCents: req.AmountCents,
		Status:      resp.TransactionStatus,
	}, nil
}

func (p *Provider) GetRefund(_ context.Context, _ string) (*gateway.RefundResult, error) {
	return nil, ErrUnsupported
}

func (p *Provider) CreateCustomer(_ context.Context, _ *gateway.CustomerRequest) (*gateway.Customer, error) {
	return nil, ErrUnsupported
}

func (p *Provider) UpdateCustomer(_ context.Context, _ string, _ *gateway.CustomerRequest) (*gateway.Customer, error) {
	return nil, ErrUnsupported
}

func (p *Provider) CreateCard(_ context.Context, _ *gateway.CardRequest) (*gateway.Card, error) {
	return nil, ErrUnsupported
}

func (p *Provider) DeleteCard(_ context.Context, _ string) error {
	return ErrUnsupported
}

func (p *Provider) CreatePlan(_ context.Context, _ *gateway.PlanRequest) (*gateway.Plan, error) {
	// Midtrans models recurring billing on the subscription itself.
	return &gateway.Plan{}, nil
}

func (p *Provider) CreateSubscription(_ context.Context, req *gateway.SubscriptionRequest) (*gateway.Subscription, error) {
	resp, err := p.client.CreateSubscription(&coreapi.SubscriptionReq{
		Name:        req.Metadata["reference"],
		Currency:    "IDR",
		PaymentType: coreapi.PaymentTypeCreditCard,
		Token:       req.CardID,
	})
	if err != nil {
		return nil, wrapErr(err)
	}
	return &gateway.Subscription{ID: resp.ID, Status: resp.Status}, nil
}

func (p *Provider) GetSubscription(_ context.Context, subscriptionID string) (*gateway.Subscription, error) {
	resp, err := p.client.GetSubscription(subscriptionID)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &gateway.Subscription{ID: resp.ID, Status: resp.Status}, nil
}

func (p *Provider) CancelSubscription(_ context.Context, subscriptionID string) error {
	_, err := p.client.DisableSubscription(subscriptionID)
	return wrapErr(err)
}
