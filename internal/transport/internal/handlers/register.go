package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jamesprial/authgate/internal/identity"
)

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type registerResponse struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Detail string `json:"detail"`
}

// Register creates an account. The name is stored as user metadata; the
// provider sends the confirmation email.
func (a *Account) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !a.decode(w, r, &req) {
		return
	}
	email, ok := a.email(w, r, req.Email)
	if !ok {
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		a.responder.BadRequest(w, r, "Name is required", nil)
		return
	}
	if !a.password(w, r, req.Password) {
		return
	}

	user, err := a.provider.SignUp(r.Context(), email, req.Password, map[string]any{"name": name})
	if err != nil {
		if errors.Is(err, identity.ErrAlreadyRegistered) {
			a.responder.Error(w, r, http.StatusConflict, "email_exists", "Email already exists", err)
			return
		}
		a.responder.Fail(w, r, err)
		return
	}

	a.respond(w, r, http.StatusOK, registerResponse{
		ID:     user.ID,
		Email:  email,
		Name:   name,
		Detail: "Registration successful. Check your email to confirm your account.",
	})
}
