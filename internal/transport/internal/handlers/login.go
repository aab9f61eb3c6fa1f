package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/jamesprial/authgate/internal/abuse"
	"github.com/jamesprial/authgate/internal/identity"
	"github.com/jamesprial/authgate/internal/telemetry"
	"github.com/jamesprial/authgate/internal/transport/transportcore"
	"github.com/jamesprial/authgate/pkg/authgate"
)

const emailNotConfirmedMessage = "Email not confirmed. Please confirm your email before login."

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges email and password for an access token, returned in the
// body and as an httponly cookie.
//
// The (email, client ip) pair is refused with 429 while locked out. Wrong
// credentials count towards the lockout and a successful sign-in clears
// it. An unconfirmed account is refused with 403 and counts as neither.
func (a *Account) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !a.decode(w, r, &req) {
		return
	}
	email, ok := a.email(w, r, req.Email)
	if !ok {
		return
	}
	if req.Password == "" {
		a.responder.BadRequest(w, r, "Password is required", nil)
		return
	}

	ip, _ := transportcore.ClientIPFromContext(r.Context())
	key := abuse.IdentityKey(email, ip)
	logger := telemetry.LoggerFrom(r.Context())

	if err := a.lockout.Check(key); err != nil {
		a.metrics.AttemptThrottled(authgate.ActionLogin, "locked_out")
		a.responder.TooManyRequests(w, r, err)
		return
	}

	session, err := a.provider.SignIn(r.Context(), email, req.Password)
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		if a.lockout.RecordFailure(key) {
			a.metrics.LockoutEngaged()
			logger.Warn("login locked out", zap.String("ip", ip))
		}
		a.responder.Error(w, r, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password", err)
		return
	case errors.Is(err, identity.ErrEmailNotConfirmed):
		a.responder.Error(w, r, http.StatusForbidden, "email_not_confirmed", emailNotConfirmedMessage, err)
		return
	case err != nil:
		a.responder.Fail(w, r, err)
		return
	}

	if !session.User.Confirmed() {
		a.responder.Error(w, r, http.StatusForbidden, "email_not_confirmed", emailNotConfirmedMessage, nil)
		return
	}

	a.lockout.RecordSuccess(key)
	a.setTokenCookie(w, session.AccessToken)
	a.respond(w, r, http.StatusOK, loginResponse{
		AccessToken: session.AccessToken,
		TokenType:   "bearer",
	})
}
