package autherr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	ierrors "github.com/jamesprial/authgate/internal/errors"
)

func TestConstructors(t *testing.T) {
	t.Parallel()

	cause := errors.New("cause")

	tests := []struct {
		name     string
		err      error
		sentinel error
		kind     error
		reason   string
	}{
		{"missing", NewMissingCredentialError("Authenticate"), ErrMissingCredential, ierrors.ErrUnauthorized, "missing_credential"},
		{"malformed", NewMalformedTokenError("Verify", cause), ErrMalformedToken, ierrors.ErrUnauthorized, "malformed_token"},
		{"unknown key", NewUnknownSigningKeyError("Verify", "kid-1"), ErrUnknownSigningKey, ierrors.ErrUnauthorized, "unknown_signing_key"},
		{"signature", NewInvalidSignatureError("Verify", cause), ErrInvalidSignature, ierrors.ErrUnauthorized, "invalid_signature"},
		{"audience", NewInvalidAudienceError("Verify", "authenticated", []string{"anon"}), ErrInvalidSignature, ierrors.ErrUnauthorized, "invalid_signature"},
		{"expired", NewExpiredTokenError("Verify", nil), ErrExpiredToken, ierrors.ErrUnauthorized, "expired_token"},
		{"upstream", NewUpstreamUnavailableError("Fetch", "http://idp", cause), ErrUpstreamUnavailable, ierrors.ErrUnavailable, "upstream_unavailable"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.ErrorIs(t, tt.err, tt.kind)
			assert.Equal(t, tt.reason, Reason(tt.err))
			assert.Equal(t, tt.reason, Reason(fmt.Errorf("wrapped: %w", tt.err)))
		})
	}
}

func TestSentinelsAreExclusive(t *testing.T) {
	t.Parallel()

	err := NewExpiredTokenError("Verify", errors.New("exp"))
	assert.NotErrorIs(t, err, ErrInvalidSignature)
	assert.NotErrorIs(t, err, ErrMalformedToken)
	assert.NotErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestReason_Defaults(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ok", Reason(nil))
	assert.Equal(t, "error", Reason(errors.New("boom")))
}
