// Package auth verifies identity provider access tokens and authenticates
// inbound HTTP requests with them.
package auth

import (
	"context"
	"net/http"

	"github.com/jamesprial/authgate/internal/auth/authcore"
)

// Shared types re-exported for callers outside internal/auth.
type (
	Claims    = authcore.Claims
	KeySet    = authcore.KeySet
	PublicKey = authcore.PublicKey
	Observer  = authcore.Observer
)

// KeySource serves the identity provider's signing keys. Implementations
// cache the set for a TTL and never return an expired set.
type KeySource interface {
	// Keys returns a fresh key set, fetching when the cached one expired.
	// It fails with ErrUpstreamUnavailable when no fresh set can be had.
	Keys(ctx context.Context) (*KeySet, error)

	// Refresh fetches regardless of TTL.
	Refresh(ctx context.Context) (*KeySet, error)

	// Snapshot returns the cached set, possibly nil or expired, without fetching.
	Snapshot() *KeySet
}

// TokenVerifier validates access tokens.
type TokenVerifier interface {
	// Verify checks the signature, audience and expiry of token and
	// returns its claims. Errors match one of ErrMalformedToken,
	// ErrUnknownSigningKey, ErrInvalidSignature, ErrExpiredToken or
	// ErrUpstreamUnavailable.
	Verify(ctx context.Context, token string) (*Claims, error)
}

// Authenticator resolves an HTTP request to the subject of its token.
type Authenticator interface {
	// Authenticate reads the Bearer header, falling back to the access
	// token cookie, and verifies the token. It fails with
	// ErrMissingCredential when neither is present.
	Authenticate(r *http.Request) (string, error)
}
