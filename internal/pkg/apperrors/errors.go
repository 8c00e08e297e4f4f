// FILE: internal/pkg/apperrors/errors.go
package apperrors

import (
	"errors"
	"fmt"
)

// ValidationError is bad caller input (amount <= 0, unsupported currency,
// missing required field). Resolved locally, never sent to the gateway.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func NewValidation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// GatewayError means the remote rejected the call. Message carries the
// gateway's merchant-facing text verbatim.
type GatewayError struct {
	Status  int
	Code    string
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway rejected request (status %d, code %q): %s", e.Status, e.Code, e.Message)
}

// GatewayUnavailable is a network failure (timeout, connection refused).
// Safe for the caller to retry where idempotency allows it.
type GatewayUnavailable struct {
	Cause error
}

func (e *GatewayUnavailable) Error() string {
	return fmt.Sprintf("gateway unreachable: %v", e.Cause)
}

func (e *GatewayUnavailable) Unwrap() error { return e.Cause }

// NotFound means no local record matches the given key.
type NotFound struct {
	Resource string
	Key      string
}

func (e *NotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

func NewNotFound(resource, key string) error {
	return &NotFound{Resource: resource, Key: key}
}

// StateConflict is an attempted transition from a terminal state. Treated
// as a benign no-op by notification handlers, not surfaced to the remote
// caller as a hard failure.
type StateConflict struct {
	Resource string
	From     string
	To       string
}

func (e *StateConflict) Error() string {
	return fmt.Sprintf("%s cannot move from %s to %s", e.Resource, e.From, e.To)
}

// ErrVerificationFailed rejects a webhook whose authenticity check failed.
// The payload must not be applied.
var ErrVerificationFailed = errors.New("webhook signature verification failed")

// ErrUnsignedEvent marks a notification the gateway sent without any
// signature. The caller must confirm it through an authenticated read
// before applying it.
var ErrUnsignedEvent = errors.New("webhook carries no signature; confirm via authenticated read")

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsGatewayError(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge)
}

func IsUnavailable(err error) bool {
	var gu *GatewayUnavailable
	return errors.As(err, &gu)
}

func IsNotFound(err error) bool {
	var nf *NotFound
	return errors.As(err, &nf)
}

func IsStateConflict(err error) bool {
	var sc *StateConflict
	return errors.As(err, &sc)
}
