package handlers

import (
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/jamesprial/authgate/internal/transport/transportcore"
)

const (
	minPasswordLength   = 8
	weakPasswordMessage = "Password must be at least 8 characters and include uppercase, lowercase, number, and special character."
)

// CheckPasswordStrength requires at least 8 characters including an ASCII
// lowercase letter, an ASCII uppercase letter, a digit and one character
// that is none of those.
func CheckPasswordStrength(pw string) error {
	if utf8.RuneCountInString(pw) < minPasswordLength {
		return fmt.Errorf("%w: shorter than %d characters", transportcore.ErrWeakPassword, minPasswordLength)
	}
	var lower, upper, digit, special bool
	for _, c := range pw {
		switch {
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= '0' && c <= '9':
			digit = true
		default:
			special = true
		}
	}
	if !lower || !upper || !digit || !special {
		return fmt.Errorf("%w: missing a required character class", transportcore.ErrWeakPassword)
	}
	return nil
}

type resetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

// ForgotPassword sends a recovery email. The response is the same whether
// or not the email has an account.
func (a *Account) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !a.decode(w, r, &req) {
		return
	}
	email, ok := a.email(w, r, req.Email)
	if !ok {
		return
	}
	err := a.provider.ResetPassword(r.Context(), email, a.resetRedirect)
	a.acknowledgeUnlessDown(w, r, err, "If the email exists, a password reset link has been sent.")
}

// ResetPassword sets a new password for the authenticated user. The
// recovery link signs the user in, so the token presented here is the
// one the recovery flow issued.
func (a *Account) ResetPassword(w http.ResponseWriter, r *http.Request) {
	subject, ok := transportcore.SubjectFromContext(r.Context())
	if !ok {
		a.responder.InternalError(w, r, fmt.Errorf("reset password: no subject in context"))
		return
	}
	var req resetPasswordRequest
	if !a.decode(w, r, &req) {
		return
	}
	if !a.password(w, r, req.NewPassword) {
		return
	}
	if err := a.provider.UpdatePassword(r.Context(), subject, req.NewPassword); err != nil {
		a.responder.Fail(w, r, err)
		return
	}
	a.respond(w, r, http.StatusOK, detailResponse{Detail: "Password has been reset successfully."})
}

// ResendConfirmation re-sends the signup confirmation email. The response
// does not reveal whether the account exists.
func (a *Account) ResendConfirmation(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !a.decode(w, r, &req) {
		return
	}
	email, ok := a.email(w, r, req.Email)
	if !ok {
		return
	}
	err := a.provider.ResendConfirmation(r.Context(), email)
	a.acknowledgeUnlessDown(w, r, err, "Confirmation email sent if account exists.")
}
