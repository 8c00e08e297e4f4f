// FILE: pkg/culqi/config.go
package culqi

import (
	"strings"
	"time"

	"culqi-payments-be/internal/pkg/apperrors"
)

const defaultBaseURL = "https://api.culqi.com/v2"

// Config holds the gateway credentials and knobs. It is passed explicitly
// into NewClient; the package keeps no ambient state.
type Config struct {
	PublicKey     string
	SecretKey     string
	Environment   string // "test" or "live"
	WebhookSecret string
	BaseURL       string
	Timeout       time.Duration
}

// Validate checks key format and that both keys belong to the same
// environment, mirroring what the dashboard enforces.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return apperrors.NewValidation("secret_key", "secret key is required")
	}
	if !strings.HasPrefix(c.SecretKey, "sk_test_") && !strings.HasPrefix(c.SecretKey, "sk_live_") {
		return apperrors.NewValidation("secret_key", "must start with sk_test_ or sk_live_")
	}
	if c.PublicKey != "" {
		if !strings.HasPrefix(c.PublicKey, "pk_test_") && !strings.HasPrefix(c.PublicKey, "pk_live_") {
			return apperrors.NewValidation("public_key", "must start with pk_test_ or pk_live_")
		}
		pkTest := strings.HasPrefix(c.PublicKey, "pk_test_")
		skTest := strings.HasPrefix(c.SecretKey, "sk_test_")
		if pkTest != skTest {
			return apperrors.NewValidation("public_key", "public and secret keys must belong to the same environment")
		}
	}
	return nil
}

func (c *Config) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return defaultBaseURL
}

func (c *Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return 60 * time.Second
}
