package provider

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse indicates the vendor returned a structurally valid reply
// with no usable text payload. Absence of text surfaces as an explicit
// error, never as a silent empty string.
var ErrEmptyResponse = errors.New("provider returned an empty response payload")

// CallError wraps the failure of a single adapter invocation: network,
// authentication, timeout, or malformed payload. The router recovers from
// it via fallback; it is never shown to the end user directly.
type CallError struct {
	// Provider identifies which backend failed.
	Provider Tag

	// Err is the underlying cause.
	Err error
}

// NewCallError wraps err as a CallError for the given provider.
func NewCallError(provider Tag, err error) *CallError {
	return &CallError{Provider: provider, Err: err}
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s provider call failed: %v", e.Provider, e.Err)
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e *CallError) Unwrap() error { return e.Err }

// IsCallError reports whether err is (or wraps) a provider call failure.
func IsCallError(err error) bool {
	var callErr *CallError
	return errors.As(err, &callErr)
}
