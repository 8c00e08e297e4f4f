// FILE: pkg/culqi/webhook.go
package culqi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"culqi-payments-be/internal/pkg/apperrors"
)

// WebhookEvent is the envelope Culqi posts to the webhook endpoint.
type WebhookEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// VerifyWebhookSignature decides whether a notification payload actually
// originated from the gateway: HMAC-SHA256 over the raw body with the
// shared webhook secret, compared in constant time against the hex
// signature header.
//
// A missing signature is not the same as a bad one. Some legacy event
// types are delivered unsigned; those return ErrUnsignedEvent and the
// caller must confirm the event through an authenticated read before
// applying it.
func VerifyWebhookSignature(payload []byte, signature, secret string) error {
	if secret == "" {
		return apperrors.ErrVerificationFailed
	}
	if signature == "" {
		return apperrors.ErrUnsignedEvent
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return apperrors.ErrVerificationFailed
	}
	return nil
}

// ParseWebhookEvent decodes the notification envelope. Culqi sometimes
// double-encodes data as a JSON string; unwrap that case.
func ParseWebhookEvent(payload []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, apperrors.NewValidation("payload", "malformed webhook body")
	}
	if len(event.Data) > 0 && event.Data[0] == '"' {
		var inner string
		if err := json.Unmarshal(event.Data, &inner); err == nil {
			event.Data = json.RawMessage(inner)
		}
	}
	return &event, nil
}
