// Package errs defines the error classes the API surfaces to callers.
// Handlers match these with errors.Is to pick a status code and a
// human-readable message, so "not found", "already used", "validation
// failed" and transient failures stay distinguishable end to end.
package errs

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound means a referenced pairing session, display, group or
	// playlist does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyClaimed means a pairing code's session is no longer pending.
	ErrAlreadyClaimed = errors.New("pairing code already claimed")

	// ErrInvalidInput means a required field was blank or a numeric field
	// was below its minimum. Raised before any store call is attempted.
	ErrInvalidInput = errors.New("invalid input")

	// ErrOperationFailed wraps a transactional write that failed or was
	// rejected; the prior state is unchanged.
	ErrOperationFailed = errors.New("operation failed")

	// ErrSubscription means a live-query stream terminated abnormally.
	ErrSubscription = errors.New("subscription terminated")

	// ErrTimeout means a store operation exceeded its deadline.
	ErrTimeout = errors.New("operation timed out")
)

// Invalid builds an ErrInvalidInput with a field-specific message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// FromContext rewrites a context deadline error as ErrTimeout so callers
// can tell a stalled store call apart from a rejected one. Other errors
// pass through unchanged.
func FromContext(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
