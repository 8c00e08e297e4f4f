package culqi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"culqi-payments-be/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"type":"charge.succeeded","data":{"id":"chr_001"}}`)
	secret := "whsec_abc"

	tests := []struct {
		name      string
		signature string
		secret    string
		wantErr   error
	}{
		{"valid", sign(payload, secret), secret, nil},
		{"tampered signature", sign([]byte("other"), secret), secret, apperrors.ErrVerificationFailed},
		{"wrong secret", sign(payload, "whsec_xyz"), secret, apperrors.ErrVerificationFailed},
		{"missing signature", "", secret, apperrors.ErrUnsignedEvent},
		{"no secret configured", sign(payload, secret), "", apperrors.ErrVerificationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyWebhookSignature(payload, tt.signature, tt.secret)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr))
		})
	}
}

func TestParseWebhookEvent(t *testing.T) {
	t.Run("plain data object", func(t *testing.T) {
		event, err := ParseWebhookEvent([]byte(`{"type":"charge.succeeded","data":{"id":"chr_001"}}`))
		require.NoError(t, err)
		assert.Equal(t, "charge.succeeded", event.Type)
		assert.JSONEq(t, `{"id":"chr_001"}`, string(event.Data))
	})

	t.Run("double-encoded data", func(t *testing.T) {
		event, err := ParseWebhookEvent([]byte(`{"type":"charge.failed","data":"{\"id\":\"chr_002\"}"}`))
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"chr_002"}`, string(event.Data))
	})

	t.Run("malformed body", func(t *testing.T) {
		_, err := ParseWebhookEvent([]byte(`not json`))
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})
}
