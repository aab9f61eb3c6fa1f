package credential

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesprial/authgate/internal/auth/authcore"
	"github.com/jamesprial/authgate/internal/auth/autherr"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		cookie string
		want   string
		wantOK bool
	}{
		{name: "bearer header", header: "Bearer abc", want: "abc", wantOK: true},
		{name: "scheme case-insensitive", header: "bEaReR abc", want: "abc", wantOK: true},
		{name: "token trimmed", header: "Bearer   abc  ", want: "abc", wantOK: true},
		{name: "header beats cookie", header: "Bearer from-header", cookie: "from-cookie", want: "from-header", wantOK: true},
		{name: "cookie fallback", cookie: "from-cookie", want: "from-cookie", wantOK: true},
		{name: "basic scheme falls back to cookie", header: "Basic dXNlcjpwYXNz", cookie: "c", want: "c", wantOK: true},
		{name: "empty bearer falls back to cookie", header: "Bearer ", cookie: "c", want: "c", wantOK: true},
		{name: "scheme only", header: "Bearer"},
		{name: "basic only", header: "Basic dXNlcjpwYXNz"},
		{name: "nothing"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: "access_token", Value: tt.cookie})
			}
			got, ok := Extract(r, "access_token")
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_NoCookieName(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "access_token", Value: "c"})
	_, ok := Extract(r, "")
	assert.False(t, ok)
}

type fakeVerifier struct {
	tokens map[string]string
	seen   []string
}

func (f *fakeVerifier) Verify(_ context.Context, token string) (*authcore.Claims, error) {
	f.seen = append(f.seen, token)
	sub, ok := f.tokens[token]
	if !ok {
		return nil, autherr.NewInvalidSignatureError("Verify", nil)
	}
	return &authcore.Claims{Subject: sub}, nil
}

func TestAuthenticator_Authenticate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		header  string
		cookie  string
		wantSub string
		wantErr error
	}{
		{name: "header token", header: "Bearer good", wantSub: "user-1"},
		{name: "cookie token", cookie: "good", wantSub: "user-1"},
		{name: "bad header not rescued by cookie", header: "Bearer bad", cookie: "good", wantErr: autherr.ErrInvalidSignature},
		{name: "missing", wantErr: autherr.ErrMissingCredential},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := &fakeVerifier{tokens: map[string]string{"good": "user-1"}}
			a := NewAuthenticator(v, "access_token")

			r := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: "access_token", Value: tt.cookie})
			}

			sub, err := a.Authenticate(r)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, sub)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSub, sub)
		})
	}
}

func TestAuthenticator_MissingNeverCallsVerifier(t *testing.T) {
	t.Parallel()

	v := &fakeVerifier{}
	_, err := NewAuthenticator(v, "access_token").Authenticate(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, autherr.ErrMissingCredential)
	assert.Empty(t, v.seen)
}

func TestNewAuthenticator_NilVerifierPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewAuthenticator(nil, "access_token") })
}
