package culqi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"culqi-payments-be/internal/pkg/apperrors"
	"culqi-payments-be/pkg/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		SecretKey: "sk_test_abc123",
		BaseURL:   srv.URL,
	})
	require.NoError(t, err)
	return client
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid test keys", Config{SecretKey: "sk_test_a", PublicKey: "pk_test_a"}, false},
		{"valid live keys", Config{SecretKey: "sk_live_a", PublicKey: "pk_live_a"}, false},
		{"secret only", Config{SecretKey: "sk_test_a"}, false},
		{"missing secret", Config{PublicKey: "pk_test_a"}, true},
		{"malformed secret", Config{SecretKey: "whatever"}, true},
		{"mixed environments", Config{SecretKey: "sk_live_a", PublicKey: "pk_test_a"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateCharge(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/charges", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":            "chr_live_abc",
			"object":        "charge",
			"amount":        12500,
			"currency_code": "PEN",
			"creation_date": int64(1767225600000),
			"outcome": map[string]interface{}{
				"type": "venta_exitosa",
				"code": "AUT0000",
			},
		})
	})

	charge, err := client.CreateCharge(context.Background(), &gateway.ChargeRequest{
		AmountCents:  12500,
		Currency:     "PEN",
		Email:        "buyer@example.pe",
		TokenID:      "tkn_test_001",
		Capture:      true,
		Installments: 3,
		Metadata:     map[string]string{"reference": "ORD-001"},
	})
	require.NoError(t, err)

	assert.Equal(t, "chr_live_abc", charge.ID)
	assert.Equal(t, gateway.OutcomeSaleSuccessful, charge.Outcome.Type)
	assert.Equal(t, int64(1767225600000), charge.CreationDate.UnixMilli())

	assert.Equal(t, "Bearer sk_test_abc123", gotAuth)
	assert.Equal(t, "tkn_test_001", gotBody["source_id"])
	assert.Equal(t, float64(3), gotBody["installments"])
	assert.Equal(t, "ORD-001", gotBody["metadata"].(map[string]interface{})["reference"])
}

func TestCreateChargeValidatesInput(t *testing.T) {
	client, err := NewClient(Config{SecretKey: "sk_test_abc123"})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = client.CreateCharge(ctx, &gateway.ChargeRequest{AmountCents: 0, Currency: "PEN", TokenID: "tkn"})
	assert.True(t, apperrors.IsValidation(err))

	_, err = client.CreateCharge(ctx, &gateway.ChargeRequest{AmountCents: 100, Currency: "EUR", TokenID: "tkn"})
	assert.True(t, apperrors.IsValidation(err))

	_, err = client.CreateCharge(ctx, &gateway.ChargeRequest{AmountCents: 100, Currency: "PEN"})
	assert.True(t, apperrors.IsValidation(err))
}

func TestAPIErrorMapping(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{
			"object":           "error",
			"type":             "card_error",
			"code":             "card_declined",
			"merchant_message": "The card was declined.",
		})
	})

	_, err := client.GetCharge(context.Background(), "chr_bad")
	require.Error(t, err)

	var gwErr *apperrors.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusUnprocessableEntity, gwErr.Status)
	assert.Equal(t, "card_declined", gwErr.Code)
	assert.Equal(t, "The card was declined.", gwErr.Message)
}

func TestNetworkErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client, err := NewClient(Config{SecretKey: "sk_test_abc123", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.GetCharge(context.Background(), "chr_001")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnavailable(err))
}

func TestCreateRefund(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/refunds", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":            "ref_test_xyz",
			"charge_id":     "chr_001",
			"amount":        5000,
			"creation_date": int64(1767225600000),
		})
	})

	res, err := client.CreateRefund(context.Background(), &gateway.RefundRequest{
		ChargeID:    "chr_001",
		AmountCents: 5000,
		Reason:      "solicitud_comprador",
	})
	require.NoError(t, err)
	assert.Equal(t, "ref_test_xyz", res.ID)
	assert.Equal(t, int64(5000), res.AmountCents)
}

func TestCreateSubscriptionDecodesPeriod(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/recurrent/subscriptions/create", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":                   "sxn_test_abc",
			"status":               "active",
			"current_period_start": int64(1767225600000),
			"current_period_end":   int64(1769904000000),
		})
	})

	sub, err := client.CreateSubscription(context.Background(), &gateway.SubscriptionRequest{
		CardID: "crd_001",
		PlanID: "pln_001",
	})
	require.NoError(t, err)
	assert.Equal(t, "sxn_test_abc", sub.ID)
	require.NotNil(t, sub.CurrentPeriodStart)
	assert.Equal(t, int64(1767225600000), sub.CurrentPeriodStart.UnixMilli())
	require.NotNil(t, sub.CurrentPeriodEnd)
}
