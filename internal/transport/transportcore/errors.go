package transportcore

import (
	"errors"
)

// Sentinel errors for transport operations.
// These are used for error identification and testing.
// For creating domain errors with context, wrap these with DomainError from internal/errors.
var (
	// ErrInvalidBody indicates the request body could not be decoded.
	ErrInvalidBody = errors.New("invalid request body")

	// ErrWeakPassword indicates a password failed the strength policy.
	ErrWeakPassword = errors.New("password too weak")

	// ErrNoClientKey indicates an abuse guard could not identify the caller.
	ErrNoClientKey = errors.New("no client key")

	// ErrServerClosed indicates the server has been closed and cannot accept requests.
	ErrServerClosed = errors.New("server closed")
)
