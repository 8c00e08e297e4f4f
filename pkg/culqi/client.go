// FILE: pkg/culqi/client.go
package culqi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"culqi-payments-be/internal/pkg/apperrors"
	"culqi-payments-be/pkg/gateway"
)

// SupportedCurrencies is the set the gateway accepts.
var SupportedCurrencies = map[string]bool{
	"PEN": true,
	"USD": true,
}

// Client talks to the Culqi REST API. It holds no mutable cross-call
// state; every call is signed with the configured secret key.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.timeout(),
		},
	}, nil
}

func (c *Client) ProviderCode() string { return "culqi" }

// apiError is the error body Culqi returns on non-2xx responses.
type apiError struct {
	Object          string `json:"object"`
	Type            string `json:"type"`
	Code            string `json:"code"`
	MerchantMessage string `json:"merchant_message"`
	UserMessage     string `json:"user_message"`
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding %s payload: %w", endpoint, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.baseURL()+endpoint, body)
	if err != nil {
		return fmt.Errorf("building %s request: %w", endpoint, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Timeouts and connection errors are retryable by the caller,
		// subject to its own idempotency discipline.
		return &apperrors.GatewayUnavailable{Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &apperrors.GatewayUnavailable{Cause: err}
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		msg := "unknown error"
		code := ""
		if json.Unmarshal(raw, &apiErr) == nil {
			if apiErr.MerchantMessage != "" {
				msg = apiErr.MerchantMessage
			} else if apiErr.UserMessage != "" {
				msg = apiErr.UserMessage
			}
			code = apiErr.Code
		}
		return &apperrors.GatewayError{Status: resp.StatusCode, Code: code, Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decoding %s response: %w", endpoint, err)
		}
	}
	return nil
}

func validateMoney(amountCents int64, currency string) error {
	if amountCents <= 0 {
		return apperrors.NewValidation("amount", "must be a positive amount in minor units")
	}
	if !SupportedCurrencies[currency] {
		return apperrors.NewValidation("currency", fmt.Sprintf("unsupported currency %q", currency))
	}
	return nil
}

// chargePayload is the wire shape of POST /charges.
type chargePayload struct {
	Amount       int64             `json:"amount"`
	CurrencyCode string            `json:"currency_code"`
	Email        string            `json:"email"`
	Description  string            `json:"description,omitempty"`
	SourceID     string            `json:"source_id"`
	Installments int               `json:"installments,omitempty"`
	Capture      bool              `json:"capture"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

type chargeResponse struct {
	gateway.Charge
	CreationDate int64 `json:"creation_date"`
}

func (c *Client) CreateCharge(ctx context.Context, req *gateway.ChargeRequest) (*gateway.Charge, error) {
	if err := validateMoney(req.AmountCents, req.Currency); err != nil {
		return nil, err
	}
	source := req.TokenID
	if source == "" {
		source = req.SourceID
	}
	if source == "" {
		return nil, apperrors.NewValidation("source", "a token or stored card is required")
	}

	payload := &chargePayload{
		Amount:       req.AmountCents,
		CurrencyCode: req.Currency,
		Email:        req.Email,
		Description:  req.Description,
		SourceID:     source,
		Installments: req.Installments,
		Capture:      req.Capture,
		Metadata:     req.Metadata,
	}

	var resp chargeResponse
	if err := c.do(ctx, http.MethodPost, "/charges", payload, &resp); err != nil {
		return nil, err
	}
	charge := resp.Charge
	charge.CreationDate = time.UnixMilli(resp.CreationDate)
	return &charge, nil
}

func (c *Client) GetCharge(ctx context.Context, chargeID string) (*gateway.Charge, error) {
	if chargeID == "" {
		return nil, apperrors.NewValidation("charge_id", "charge id is required")
	}
	var resp chargeResponse
	if err := c.do(ctx, http.MethodGet, "/charges/"+chargeID, nil, &resp); err != nil {
		return nil, err
	}
	charge := resp.Charge
	charge.CreationDate = time.UnixMilli(resp.CreationDate)
	return &charge, nil
}

type refundPayload struct {
	ChargeID string            `json:"charge_id"`
	Amount   int64             `json:"amount"`
	Reason   string            `json:"reason"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type refundResponse struct {
	gateway.RefundResult
	CreationDate int64 `json:"creation_date"`
}

func (c *Client) CreateRefund(ctx context.Context, req *gateway.RefundRequest) (*gateway.RefundResult, error) {
	if req.ChargeID == "" {
		return nil, apperrors.NewValidation("charge_id", "charge id is required")
	}
	if req.AmountCents <= 0 {
		return nil, apperrors.NewValidation("amount", "must be a positive amount in minor units")
	}
	payload := &refundPayload{
		ChargeID: req.ChargeID,
		Amount:   req.AmountCents,
		Reason:   req.Reason,
		Metadata: req.Metadata,
	}
	var resp refundResponse
	if err := c.do(ctx, http.MethodPost, "/refunds", payload, &resp); err != nil {
		return nil, err
	}
	res := resp.RefundResult
	res.CreationDate = time.UnixMilli(resp.CreationDate)
	return &res, nil
}

func (c *Client) GetRefund(ctx context.Context, refundID string) (*gateway.RefundResult, error) {
	if refundID == "" {
		return nil, apperrors.NewValidation("refund_id", "refund id is required")
	}
	var resp refundResponse
	if err := c.do(ctx, http.MethodGet, "/refunds/"+refundID, nil, &resp); err != nil {
		return nil, err
	}
	res := resp.RefundResult
	res.CreationDate = time.UnixMilli(resp.CreationDate)
	return &res, nil
}

type customerPayload struct {
	Email     string            `json:"email"`
	FirstName string            `json:"first_name"`
	LastName  string            `json:"last_name"`
	Phone     string            `json:"phone_number,omitempty"`
	Address   string            `json:"address,omitempty"`
	City      string            `json:"address_city,omitempty"`
	Country   string            `json:"country_code,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (c *Client) CreateCustomer(ctx context.Context, req *gateway.CustomerRequest) (*gateway.Customer, error) {
	if req.Email == "" {
		return nil, apperrors.NewValidation("email", "email is required")
	}
	var out gateway.Customer
	err := c.do(ctx, http.MethodPost, "/customers", &customerPayload{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Address:   req.Address,
		City:      req.City,
		Country:   req.Country,
		Metadata:  req.Metadata,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCustomer(ctx context.Context, customerID string, req *gateway.CustomerRequest) (*gateway.Customer, error) {
	if customerID == "" {
		return nil, apperrors.NewValidation("customer_id", "customer id is required")
	}
	var out gateway.Customer
	err := c.do(ctx, http.MethodPatch, "/customers/"+customerID, &customerPayload{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Address:   req.Address,
		City:      req.City,
		Country:   req.Country,
		Metadata:  req.Metadata,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type cardPayload struct {
	CustomerID string            `json:"customer_id"`
	TokenID    string            `json:"token_id"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

func (c *Client) CreateCard(ctx context.Context, req *gateway.CardRequest) (*gateway.Card, error) {
	if req.CustomerID == "" || req.TokenID == "" {
		return nil, apperrors.NewValidation("card", "customer id and token id are required")
	}
	// Culqi nests instrument details under source; flatten what the core needs.
	var resp struct {
		ID         string `json:"id"`
		CustomerID string `json:"customer_id"`
		Source     struct {
			Iin struct {
				CardBrand string `json:"card_brand"`
			} `json:"iin"`
			CardNumber string `json:"card_number"`
			LastFour   string `json:"last_four"`
			Metadata   struct {
				ExpMonth int `json:"exp_month,string"`
				ExpYear  int `json:"exp_year,string"`
			} `json:"metadata"`
		} `json:"source"`
	}
	err := c.do(ctx, http.MethodPost, "/cards", &cardPayload{
		CustomerID: req.CustomerID,
		TokenID:    req.TokenID,
		Metadata:   req.Metadata,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &gateway.Card{
		ID:         resp.ID,
		CustomerID: resp.CustomerID,
		Brand:      resp.Source.Iin.CardBrand,
		LastFour:   resp.Source.LastFour,
		ExpMonth:   resp.Source.Metadata.ExpMonth,
		ExpYear:    resp.Source.Metadata.ExpYear,
	}, nil
}

func (c *Client) DeleteCard(ctx context.Context, cardID string) error {
	if cardID == "" {
		return apperrors.NewValidation("card_id", "card id is required")
	}
	return c.do(ctx, http.MethodDelete, "/cards/"+cardID, nil, nil)
}

type planPayload struct {
	Name          string            `json:"name"`
	Amount        int64             `json:"amount"`
	CurrencyCode  string            `json:"currency_code"`
	Interval      string            `json:"interval"`
	IntervalCount int               `json:"interval_count"`
	TrialDays     int               `json:"trial_days,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

func (c *Client) CreatePlan(ctx context.Context, req *gateway.PlanRequest) (*gateway.Plan, error) {
	if err := validateMoney(req.AmountCents, req.Currency); err != nil {
		return nil, err
	}
	var out gateway.Plan
	err := c.do(ctx, http.MethodPost, "/plans", &planPayload{
		Name:          req.Name,
		Amount:        req.AmountCents,
		CurrencyCode:  req.Currency,
		Interval:      req.Interval,
		IntervalCount: req.IntervalCount,
		TrialDays:     req.TrialDays,
		Metadata:      req.Metadata,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type subscriptionPayload struct {
	CardID   string            `json:"card_id"`
	PlanID   string            `json:"plan_id"`
	Quantity int               `json:"quantity,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type subscriptionResponse struct {
	gateway.Subscription
	CurrentPeriodStart int64 `json:"current_period_start"`
	CurrentPeriodEnd   int64 `json:"current_period_end"`
}

func (c *Client) CreateSubscription(ctx context.Context, req *gateway.SubscriptionRequest) (*gateway.Subscription, error) {
	if req.CardID == "" || req.PlanID == "" {
		return nil, apperrors.NewValidation("subscription", "card id and plan id are required")
	}
	payload := &subscriptionPayload{
		CardID:   req.CardID,
		PlanID:   req.PlanID,
		Metadata: req.Metadata,
	}
	if req.Quantity > 1 {
		payload.Quantity = req.Quantity
	}
	var resp subscriptionResponse
	if err := c.do(ctx, http.MethodPost, "/recurrent/subscriptions/create", payload, &resp); err != nil {
		return nil, err
	}
	return decodeSubscription(&resp), nil
}

func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (*gateway.Subscription, error) {
	if subscriptionID == "" {
		return nil, apperrors.NewValidation("subscription_id", "subscription id is required")
	}
	var resp subscriptionResponse
	if err := c.do(ctx, http.MethodGet, "/recurrent/subscriptions/"+subscriptionID, nil, &resp); err != nil {
		return nil, err
	}
	return decodeSubscription(&resp), nil
}

func (c *Client) CancelSubscription(ctx context.Context, subscriptionID string) error {
	if subscriptionID == "" {
		return apperrors.NewValidation("subscription_id", "subscription id is required")
	}
	return c.do(ctx, http.MethodDelete, "/recurrent/subscriptions/"+subscriptionID, nil, nil)
}

func decodeSubscription(resp *subscriptionResponse) *gateway.Subscription {
	sub := resp.Subscription
	if resp.CurrentPeriodStart > 0 {
		t := time.UnixMilli(resp.CurrentPeriodStart)
		sub.CurrentPeriodStart = &t
	}
	if resp.CurrentPeriodEnd > 0 {
		t := time.UnixMilli(resp.CurrentPeriodEnd)
		sub.CurrentPeriodEnd = &t
	}
	return &sub
}
