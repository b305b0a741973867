package providers

import (
	"context"
	"errors"
	"fmt"
)

// Failure kinds reported by provider adapters. Orchestration absorbs all of them.
var (
	ErrTimeout           = errors.New("provider timeout")
	ErrQuotaExceeded     = errors.New("provider quota exceeded")
	ErrMalformedResponse = errors.New("provider malformed response")
	ErrNetwork           = errors.New("provider network error")
)

// Error is a typed provider failure. Kind is one of the sentinel errors above
// and Err carries the underlying cause.
type Error struct {
	Provider string
	Kind     error
	Err      error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Provider, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Fail wraps err as a provider failure of the given kind.
func Fail(provider string, kind, err error) *Error {
	return &Error{Provider: provider, Kind: kind, Err: err}
}

// KindOf returns the failure kind of err. Errors that carry no kind are
// classified from context errors, falling back to ErrNetwork.
func KindOf(err error) error {
	var pe *Error
	if errors.As(err, &pe) && pe.Kind != nil {
		return pe.Kind
	}
	for _, kind := range []error{ErrTimeout, ErrQuotaExceeded, ErrMalformedResponse, ErrNetwork} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return ErrNetwork
}

// KindName returns a short, stable label for a failure kind, used in
// provenance records and logs.
func KindName(kind error) string {
	switch {
	case kind == nil:
		return "ok"
	case errors.Is(kind, ErrTimeout):
		return "timeout"
	case errors.Is(kind, ErrQuotaExceeded):
		return "quota_exceeded"
	case errors.Is(kind, ErrMalformedResponse):
		return "malformed_response"
	default:
		return "network_error"
	}
}

// Retryable reports whether a failure kind may succeed on a later attempt.
func Retryable(kind error) bool {
	return errors.Is(kind, ErrTimeout) || errors.Is(kind, ErrNetwork)
}
