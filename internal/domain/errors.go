package domain

import (
	"errors"
	"sort"
	"strings"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails validation (e.g. a missing URL or
// an over-long title). Handlers re-render the form instead of failing.
var ErrValidation = errors.New("validation error")

// ErrUnauthenticated is returned when a request carries no usable identity.
// The authentication guard maps this to a redirect to the login flow.
var ErrUnauthenticated = errors.New("authentication required")

// FormErrors maps a form field name to a human-readable message.
// It satisfies errors.Is(err, ErrValidation) so callers can treat it like any
// other validation failure.
type FormErrors map[string]string

// Error joins the field messages in a stable order.
func (e FormErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + e[f]
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Is reports ErrValidation as the error's kind.
func (e FormErrors) Is(target error) bool {
	return target == ErrValidation
}
