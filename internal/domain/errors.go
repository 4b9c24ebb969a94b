package domain

import "errors"

// Error kinds shared by every layer. Package-level sentinels wrap one of
// these so callers can classify a failure without knowing its origin.
var (
	// ErrNotFound referenced barber, service or appointment is absent
	ErrNotFound = errors.New("not found")

	// ErrValidation malformed or domain-invalid request
	ErrValidation = errors.New("validation failed")

	// ErrConflict the requested interval is no longer available
	ErrConflict = errors.New("conflict")

	// ErrInvalidTransition lifecycle violation
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUnavailable temporary failure, the request may be retried
	ErrUnavailable = errors.New("temporarily unavailable")
)
