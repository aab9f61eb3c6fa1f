package handlers

import (
	"fmt"
	"net/http"

	"github.com/jamesprial/authgate/internal/auth"
	"github.com/jamesprial/authgate/internal/transport/transportcore"
)

type meResponse struct {
	ID string `json:"id"`
}

// Logout revokes the presented session, if any, and clears the token
// cookie. It needs no valid token: an expired or unknown one still logs
// out locally.
func (a *Account) Logout(w http.ResponseWriter, r *http.Request) {
	a.clearTokenCookie(w)

	if token, ok := auth.ExtractToken(r, a.cookie.Name); ok {
		if err := a.provider.SignOut(r.Context(), token); err != nil {
			a.responder.Fail(w, r, err)
			return
		}
	}
	a.respond(w, r, http.StatusOK, detailResponse{Detail: "Successfully logged out"})
}

// Me returns the authenticated subject.
func (a *Account) Me(w http.ResponseWriter, r *http.Request) {
	subject, ok := transportcore.SubjectFromContext(r.Context())
	if !ok {
		a.responder.InternalError(w, r, fmt.Errorf("me: no subject in context"))
		return
	}
	a.respond(w, r, http.StatusOK, meResponse{ID: subject})
}
