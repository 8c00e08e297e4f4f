// FILE: pkg/gateway/types.go
package gateway

import "time"

// Outcome is the gateway's verdict on a charge attempt.
type OutcomeType string

const (
	OutcomeSaleSuccessful   OutcomeType = "venta_exitosa"
	OutcomeSaleDeclined     OutcomeType = "venta_denegada"
	OutcomeInvalidParameter OutcomeType = "parametro_invalido"
	OutcomePending          OutcomeType = "pendiente"
)

type Outcome struct {
	Type            OutcomeType `json:"type"`
	Code            string      `json:"code"`
	MerchantMessage string      `json:"merchant_message"`
	UserMessage     string      `json:"user_message"`
}

// ChargeRequest carries everything needed for one charge attempt. Amounts
// are in minor units (integer cents). Exactly one of TokenID or SourceID
// must be set: TokenID for one-off payments, SourceID for charges against
// a stored card.
type ChargeRequest struct {
	AmountCents  int64
	Currency     string
	Email        string
	Description  string
	TokenID      string
	SourceID     string
	Installments int
	Capture      bool
	Metadata     map[string]string
}

type Charge struct {
	ID            string            `json:"id"`
	Object        string            `json:"object"`
	AmountCents   int64             `json:"amount"`
	FeeCents      int64             `json:"fee"`
	NetCents      int64             `json:"net"`
	Currency      string            `json:"currency_code"`
	Outcome       Outcome           `json:"outcome"`
	State         string            `json:"state"`
	PaymentMethod string            `json:"payment_method"`
	CheckoutURL   string            `json:"checkout_url,omitempty"`
	Metadata      map[string]string `json:"metadata"`
	CreationDate  time.Time         `json:"-"`
}

type RefundRequest struct {
	ChargeID    string
	AmountCents int64
	Reason      string
	Metadata    map[string]string
}

type RefundResult struct {
	ID           string            `json:"id"`
	ChargeID     string            `json:"charge_id"`
	AmountCents  int64             `json:"amount"`
	Status       string            `json:"status"`
	Metadata     map[string]string `json:"metadata"`
	CreationDate time.Time         `json:"-"`
}

type CustomerRequest struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Address   string
	City      string
	Country   string
	Metadata  map[string]string
}

type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type CardRequest struct {
	CustomerID string
	TokenID    string
	Metadata   map[string]string
}

type Card struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	Brand      string `json:"brand"`
	LastFour   string `json:"last_four"`
	ExpMonth   int    `json:"exp_month"`
	ExpYear    int    `json:"exp_year"`
}

type PlanRequest struct {
	Name          string
	AmountCents   int64
	Currency      string
	Interval      string
	IntervalCount int
	TrialDays     int
	Metadata      map[string]string
}

type Plan struct {
	ID string `json:"id"`
}

type SubscriptionRequest struct {
	CardID   string
	PlanID   string
	Quantity int
	Metadata map[string]string
}

type Subscription struct {
	ID                 string     `json:"id"`
	Status             string     `json:"status"`
	CurrentPeriodStart *time.Time `json:"-"`
	CurrentPeriodEnd   *time.Time `json:"-"`
	BillingCycleCount  int        `json:"billing_cycle_count"`
}
