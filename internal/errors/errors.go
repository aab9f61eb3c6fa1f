// Package errors provides the domain error type shared by every authgate
// subsystem and the sentinel kinds the transport layer maps to HTTP status
// codes.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel kinds. Each DomainError carries exactly one of these.
var (
	// ErrUnauthorized indicates authentication is required or failed.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller is known but not allowed to proceed.
	ErrForbidden = errors.New("forbidden")

	// ErrBadRequest indicates invalid request parameters or format.
	ErrBadRequest = errors.New("bad request")

	// ErrConflict indicates the request collides with existing state.
	ErrConflict = errors.New("conflict")

	// ErrTooManyRequests indicates an abuse guard refused the attempt.
	ErrTooManyRequests = errors.New("too many requests")

	// ErrUnavailable indicates an upstream dependency could not be reached.
	ErrUnavailable = errors.New("unavailable")

	// ErrInternal indicates an internal server error.
	ErrInternal = errors.New("internal error")
)

// ContextRetryAfter is the Context key holding a time.Duration hint.
const ContextRetryAfter = "retry_after"

// DomainError represents a domain-specific error with context.
type DomainError struct {
	// Domain identifies the subsystem where the error occurred (e.g. "auth", "abuse").
	Domain string

	// Op identifies the operation that failed (e.g. "Verify", "CheckAndRecord").
	Op string

	// Kind is the sentinel error that categorizes this error.
	Kind error

	// Err is the underlying wrapped error, if any.
	Err error

	// Context provides additional key-value pairs for logging.
	Context map[string]interface{}
}

// New creates a new DomainError. err may be nil.
func New(domain, op string, kind, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Err:     err,
		Context: make(map[string]interface{}),
	}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %v: %v", e.Domain, e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s.%s: %v", e.Domain, e.Op, e.Kind)
}

// Unwrap returns the underlying wrapped error.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether this error matches the target error.
// It checks both the Kind field and the wrapped error chain.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// WithContext adds a key-value pair to the error's context and returns the error.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithRetryAfter records how long the caller should wait before retrying.
func (e *DomainError) WithRetryAfter(d time.Duration) *DomainError {
	if d < 0 {
		d = 0
	}
	return e.WithContext(ContextRetryAfter, d)
}

// KindOf returns the Kind of the first DomainError in err's chain, or
// ErrInternal when err carries none.
func KindOf(err error) error {
	var de *DomainError
	if errors.As(err, &de) && de.Kind != nil {
		return de.Kind
	}
	return ErrInternal
}

// RetryAfter returns the retry hint attached to err and whether one exists.
func RetryAfter(err error) (time.Duration, bool) {
	var de *DomainError
	if !errors.As(err, &de) {
		return 0, false
	}
	d, ok := de.Context[ContextRetryAfter].(time.Duration)
	return d, ok
}
