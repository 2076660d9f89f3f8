package fulfillment

import (
	"errors"
	"fmt"
)

// AdapterError carries the message a platform adapter reported for one call.
// It unwraps to ErrAdapterCallFailed.
type AdapterError struct {
	Function Function
	Message  string
}

// NewAdapterError creates an AdapterError for fn
func NewAdapterError(fn Function, format string, args ...any) *AdapterError {
	return &AdapterError{Function: fn, Message: fmt.Sprintf(format, args...)}
}

// Error returns the adapter's message verbatim
func (e *AdapterError) Error() string {
	return e.Message
}

// Unwrap lets errors.Is match ErrAdapterCallFailed
func (e *AdapterError) Unwrap() error {
	return ErrAdapterCallFailed
}

// FailureMessage returns the text recorded on a record when err ends an adapter call.
// Adapter-reported messages are kept verbatim.
func FailureMessage(err error) string {
	var adapterErr *AdapterError
	if errors.As(err, &adapterErr) {
		return adapterErr.Message
	}
	return err.Error()
}
