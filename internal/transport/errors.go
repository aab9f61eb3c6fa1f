package transport

import (
	"github.com/jamesprial/authgate/internal/transport/transportcore"
)

// Re-export errors from transportcore.
var (
	// ErrInvalidBody indicates the request body could not be decoded.
	ErrInvalidBody = transportcore.ErrInvalidBody

	// ErrWeakPassword indicates a password failed the strength policy.
	ErrWeakPassword = transportcore.ErrWeakPassword

	// ErrNoClientKey indicates an abuse guard could not identify the caller.
	ErrNoClientKey = transportcore.ErrNoClientKey

	// ErrServerClosed indicates the server has been closed and cannot accept requests.
	ErrServerClosed = transportcore.ErrServerClosed
)
