// Package autherr provides the authentication error taxonomy and its
// constructors. It is separate from internal/auth so the internal packages
// can build these errors without an import cycle.
package autherr

import (
	"errors"
	"fmt"

	ierrors "github.com/jamesprial/authgate/internal/errors"
)

const domainAuth = "auth"

// Sentinels. Every error returned by the auth packages matches exactly one
// of these with errors.Is, plus its Kind from internal/errors.
var (
	// ErrMissingCredential indicates no bearer header and no token cookie.
	ErrMissingCredential = errors.New("missing credential")

	// ErrMalformedToken indicates the token could not be parsed or lacks kid/sub/exp.
	ErrMalformedToken = errors.New("malformed token")

	// ErrUnknownSigningKey indicates the token's kid is not in the current key set.
	ErrUnknownSigningKey = errors.New("unknown signing key")

	// ErrInvalidSignature indicates signature, algorithm or audience verification failed.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrExpiredToken indicates the token expiry has passed.
	ErrExpiredToken = errors.New("expired token")

	// ErrUpstreamUnavailable indicates the key set could not be fetched.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

func wrap(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %v", sentinel, cause)
}

// NewMissingCredentialError creates a DomainError for a request without a token.
func NewMissingCredentialError(op string) *ierrors.DomainError {
	return ierrors.New(domainAuth, op, ierrors.ErrUnauthorized, ErrMissingCredential)
}

// NewMalformedTokenError creates a DomainError for an unparsable token.
func NewMalformedTokenError(op string, err error) *ierrors.DomainError {
	return ierrors.New(domainAuth, op, ierrors.ErrUnauthorized, wrap(ErrMalformedToken, err))
}

// NewUnknownSigningKeyError creates a DomainError for a kid absent from the key set.
func NewUnknownSigningKeyError(op, keyID string) *ierrors.DomainError {
	return ierrors.New(domainAuth, op, ierrors.ErrUnauthorized, ErrUnknownSigningKey).
		WithContext("key_id", keyID)
}

// NewInvalidSignatureError creates a DomainError for a failed signature check.
func NewInvalidSignatureError(op string, err error) *ierrors.DomainError {
	return ierrors.New(domainAuth, op, ierrors.ErrUnauthorized, wrap(ErrInvalidSignature, err))
}

// NewInvalidAudienceError creates a DomainError for an audience mismatch.
// Audience failures are reported as invalid signatures.
func NewInvalidAudienceError(op, expected string, actual []string) *ierrors.DomainError {
	return ierrors.New(domainAuth, op, ierrors.ErrUnauthorized,
		wrap(ErrInvalidSignature, fmt.Errorf("audience %v does not contain %q", actual, expected))).
		WithContext("expected_audience", expected).
		WithContext("actual_audience", actual)
}

// NewExpiredTokenError creates a DomainError for an expired token.
func NewExpiredTokenError(op string, err error) *ierrors.DomainError {
	return ierrors.New(domainAuth, op, ierrors.ErrUnauthorized, wrap(ErrExpiredToken, err))
}

// NewUpstreamUnavailableError creates a DomainError for a failed key set fetch.
func NewUpstreamUnavailableError(op, url string, err error) *ierrors.DomainError {
	return ierrors.New(domainAuth, op, ierrors.ErrUnavailable, wrap(ErrUpstreamUnavailable, err)).
		WithContext("jwks_url", url)
}

// Reason returns a short stable label for err, used in logs and metrics.
func Reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMissingCredential):
		return "missing_credential"
	case errors.Is(err, ErrMalformedToken):
		return "malformed_token"
	case errors.Is(err, ErrUnknownSigningKey):
		return "unknown_signing_key"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, ErrExpiredToken):
		return "expired_token"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "upstream_unavailable"
	default:
		return "error"
	}
}
