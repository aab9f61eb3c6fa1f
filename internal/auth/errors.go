package auth

import "github.com/jamesprial/authgate/internal/auth/autherr"

// Sentinel errors for authentication. Use errors.Is to classify.
var (
	ErrMissingCredential   = autherr.ErrMissingCredential
	ErrMalformedToken      = autherr.ErrMalformedToken
	ErrUnknownSigningKey   = autherr.ErrUnknownSigningKey
	ErrInvalidSignature    = autherr.ErrInvalidSignature
	ErrExpiredToken        = autherr.ErrExpiredToken
	ErrUpstreamUnavailable = autherr.ErrUpstreamUnavailable
)

// Reason returns a stable label for an authentication error.
func Reason(err error) string {
	return autherr.Reason(err)
}
