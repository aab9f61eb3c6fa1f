// Package credential locates the access token on an inbound request and
// resolves it to a subject.
package credential

import (
	"context"
	"net/http"
	"strings"

	"github.com/jamesprial/authgate/internal/auth/authcore"
	"github.com/jamesprial/authgate/internal/auth/autherr"
	"github.com/jamesprial/authgate/pkg/authgate"
)

// Verifier is the subset of the token verifier the authenticator needs.
type Verifier interface {
	Verify(ctx context.Context, token string) (*authcore.Claims, error)
}

// Extract returns the request's access token. A Bearer Authorization
// header wins; otherwise the named cookie is used. Any other
// Authorization scheme is ignored.
func Extract(r *http.Request, cookieName string) (string, bool) {
	if token, ok := bearerToken(r.Header.Get(authgate.HeaderAuthorization)); ok {
		return token, true
	}
	if cookieName == "" {
		return "", false
	}
	c, err := r.Cookie(cookieName)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(c.Value)
	return token, token != ""
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], authgate.BearerScheme) {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// Authenticator resolves requests to subjects.
type Authenticator struct {
	verifier   Verifier
	cookieName string
}

// NewAuthenticator creates an Authenticator reading cookieName as the
// fallback credential.
func NewAuthenticator(verifier Verifier, cookieName string) *Authenticator {
	if verifier == nil {
		panic("credential: verifier cannot be nil")
	}
	return &Authenticator{verifier: verifier, cookieName: cookieName}
}

// Authenticate returns the verified subject of r.
func (a *Authenticator) Authenticate(r *http.Request) (string, error) {
	token, ok := Extract(r, a.cookieName)
	if !ok {
		return "", autherr.NewMissingCredentialError("Authenticate")
	}
	claims, err := a.verifier.Verify(r.Context(), token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
