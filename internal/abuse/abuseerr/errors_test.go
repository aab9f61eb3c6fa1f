package abuseerr

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	ierrors "github.com/jamesprial/authgate/internal/errors"
)

func TestNewRateLimitedError(t *testing.T) {
	t.Parallel()

	err := NewRateLimitedError("CheckAndRecord", "login:10.0.0.1", 12*time.Second)

	assert.ErrorIs(t, err, ErrRateLimited)
	assert.ErrorIs(t, err, ierrors.ErrTooManyRequests)
	assert.NotErrorIs(t, err, ErrLockedOut)

	d, ok := ierrors.RetryAfter(err)
	assert.True(t, ok)
	assert.Equal(t, 12*time.Second, d)
	assert.Equal(t, "login:10.0.0.1", err.Context["key"])
}

func TestNewLockedOutError(t *testing.T) {
	t.Parallel()

	err := NewLockedOutError("Check", "a@b.c|10.0.0.1", time.Minute)

	assert.ErrorIs(t, err, ErrLockedOut)
	assert.ErrorIs(t, err, ierrors.ErrTooManyRequests)
	d, _ := ierrors.RetryAfter(err)
	assert.Equal(t, time.Minute, d)
}

func TestNewBackendError(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp: refused")
	err := NewBackendError("CheckAndRecord", "login:x", cause)

	assert.ErrorIs(t, err, ierrors.ErrUnavailable)
	assert.ErrorIs(t, err, cause)
}
