// Package middleware provides HTTP middleware for the transport layer.
package middleware

import (
	"errors"
	"net/http"

	"github.com/jamesprial/authgate/internal/auth"
	"github.com/jamesprial/authgate/internal/transport/transportcore"
)

// authMiddleware implements transportcore.AuthMiddleware.
type authMiddleware struct {
	authenticator auth.Authenticator
	responder     transportcore.ErrorResponder
}

// NewAuthMiddleware creates bearer authentication middleware. It resolves
// the request's token with authenticator and stores the subject in the
// request context.
func NewAuthMiddleware(
	authenticator auth.Authenticator,
	responder transportcore.ErrorResponder,
) transportcore.AuthMiddleware {
	if authenticator == nil {
		panic("authenticator cannot be nil")
	}
	if responder == nil {
		panic("responder cannot be nil")
	}

	return &authMiddleware{
		authenticator: authenticator,
		responder:     responder,
	}
}

// Authenticate verifies the request's token and adds the subject to context.
//
// Returns 401 Unauthorized with WWW-Authenticate header if verification
// fails, and 503 if the signing keys could not be fetched.
func (m *authMiddleware) Authenticate() transportcore.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, err := m.authenticator.Authenticate(r)
			if err != nil {
				if errors.Is(err, auth.ErrUpstreamUnavailable) {
					m.responder.Unavailable(w, r, err)
					return
				}
				m.responder.Unauthorized(w, r, err)
				return
			}

			ctx := transportcore.ContextWithSubject(r.Context(), subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
