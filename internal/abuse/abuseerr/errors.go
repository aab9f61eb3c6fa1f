// Package abuseerr provides the abuse-guard error constructors shared by
// internal/abuse and its backends.
package abuseerr

import (
	"errors"
	"time"

	ierrors "github.com/jamesprial/authgate/internal/errors"
)

const domainAbuse = "abuse"

var (
	// ErrRateLimited indicates the key used up its attempts in the window.
	ErrRateLimited = errors.New("rate limited")

	// ErrLockedOut indicates the identity key is locked after repeated failures.
	ErrLockedOut = errors.New("locked out")
)

// NewRateLimitedError creates a DomainError for a refused attempt.
func NewRateLimitedError(op, key string, retryAfter time.Duration) *ierrors.DomainError {
	return ierrors.New(domainAbuse, op, ierrors.ErrTooManyRequests, ErrRateLimited).
		WithContext("key", key).
		WithRetryAfter(retryAfter)
}

// NewLockedOutError creates a DomainError for an active lock.
func NewLockedOutError(op, key string, remaining time.Duration) *ierrors.DomainError {
	return ierrors.New(domainAbuse, op, ierrors.ErrTooManyRequests, ErrLockedOut).
		WithContext("key", key).
		WithRetryAfter(remaining)
}

// NewBackendError creates a DomainError for a storage failure.
func NewBackendError(op, key string, err error) *ierrors.DomainError {
	return ierrors.New(domainAbuse, op, ierrors.ErrUnavailable, err).
		WithContext("key", key)
}
