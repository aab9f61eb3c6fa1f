package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesprial/authgate/internal/abuse/abuseerr"
	ierrors "github.com/jamesprial/authgate/internal/errors"
	"github.com/jamesprial/authgate/internal/identity"
)

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	var gotEmail, gotPassword string
	f.provider.SignInFunc = func(_ context.Context, email, password string) (*identity.Session, error) {
		gotEmail, gotPassword = email, password
		return confirmedSession("tok-123"), nil
	}

	w := call(f.account.Login, `{"email":" A@Example.com ","password":"S3cret!pw"}`, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"access_token":"tok-123","token_type":"bearer"}`, w.Body.String())
	assert.Equal(t, "A@Example.com", gotEmail)
	assert.Equal(t, "S3cret!pw", gotPassword)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "access_token", c.Name)
	assert.Equal(t, "tok-123", c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 7*24*60*60, c.MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)

	checked, failures, successes := f.lockout.Calls()
	assert.Equal(t, []string{"a@example.com|" + testIP}, checked)
	assert.Empty(t, failures)
	assert.Equal(t, []string{"a@example.com|" + testIP}, successes)
}

func TestLogin_Outcomes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		session     *identity.Session
		err         error
		wantStatus  int
		wantCode    string
		wantFailure bool
		wantSuccess bool
	}{
		{
			name:        "invalid credentials",
			err:         providerErr(ierrors.ErrUnauthorized, identity.ErrInvalidCredentials),
			wantStatus:  http.StatusUnauthorized,
			wantCode:    "invalid_credentials",
			wantFailure: true,
		},
		{
			name:       "email not confirmed error",
			err:        providerErr(ierrors.ErrForbidden, identity.ErrEmailNotConfirmed),
			wantStatus: http.StatusForbidden,
			wantCode:   "email_not_confirmed",
		},
		{
			name:       "unconfirmed session",
			session:    &identity.Session{AccessToken: "tok", User: &identity.User{ID: "user-1"}},
			wantStatus: http.StatusForbidden,
			wantCode:   "email_not_confirmed",
		},
		{
			name:       "provider unavailable",
			err:        providerErr(ierrors.ErrUnavailable, identity.ErrUnavailable),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "service_unavailable",
		},
		{
			name:       "provider rejected",
			err:        providerErr(ierrors.ErrBadRequest, identity.ErrRejected),
			wantStatus: http.StatusBadRequest,
			wantCode:   "bad_request",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			f.provider.SignInFunc = func(context.Context, string, string) (*identity.Session, error) {
				return tt.session, tt.err
			}

			w := call(f.account.Login, `{"email":"a@example.com","password":"pw"}`, "")
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeBody(t, w)["error"])
			assert.Empty(t, w.Result().Cookies())

			_, failures, successes := f.lockout.Calls()
			assert.Equal(t, tt.wantFailure, len(failures) == 1)
			assert.Equal(t, tt.wantSuccess, len(successes) == 1)
		})
	}
}

func TestLogin_LockedOut(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.lockout.CheckFunc = func(key string) error {
		return abuseerr.NewLockedOutError("Check", key, 42500*time.Millisecond)
	}
	signedIn := false
	f.provider.SignInFunc = func(context.Context, string, string) (*identity.Session, error) {
		signedIn = true
		return confirmedSession("tok"), nil
	}

	w := call(f.account.Login, `{"email":"a@example.com","password":"pw"}`, "")

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "43", w.Header().Get("Retry-After"))
	assert.Equal(t, "too_many_requests", decodeBody(t, w)["error"])
	assert.False(t, signedIn)
}

func TestLogin_BadInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: `{`},
		{name: "invalid email", body: `{"email":"nope","password":"pw"}`},
		{name: "empty password", body: `{"email":"a@example.com","password":""}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			f.provider.SignInFunc = func(context.Context, string, string) (*identity.Session, error) {
				return nil, errors.New("must not be called")
			}
			w := call(f.account.Login, tt.body, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)

			checked, _, _ := f.lockout.Calls()
			assert.Empty(t, checked)
		})
	}
}
