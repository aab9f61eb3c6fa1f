package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/jamesprial/authgate/internal/identity"
	"github.com/jamesprial/authgate/internal/telemetry"
	"github.com/jamesprial/authgate/internal/transport/transportcore"
)

// Invite sends an account invitation on behalf of the authenticated user.
func (a *Account) Invite(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !a.decode(w, r, &req) {
		return
	}
	email, ok := a.email(w, r, req.Email)
	if !ok {
		return
	}

	if err := a.provider.InviteByEmail(r.Context(), email); err != nil {
		if errors.Is(err, identity.ErrAlreadyRegistered) {
			a.responder.Error(w, r, http.StatusConflict, "already_registered", "User is already registered", err)
			return
		}
		a.responder.Fail(w, r, err)
		return
	}

	subject, _ := transportcore.SubjectFromContext(r.Context())
	telemetry.LoggerFrom(r.Context()).Info("invitation sent", zap.String("invited_by", subject))
	a.respond(w, r, http.StatusOK, detailResponse{Detail: "Invitation sent."})
}
