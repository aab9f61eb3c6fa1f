package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jamesprial/authgate/internal/abuse"
	"github.com/jamesprial/authgate/internal/identity"
	"github.com/jamesprial/authgate/internal/telemetry"
	"github.com/jamesprial/authgate/internal/transport/transportcore"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// CookieConfig shapes the access token cookie.
type CookieConfig struct {
	Name     string
	Secure   bool
	SameSite http.SameSite
	Domain   string
	MaxAge   time.Duration
}

// AccountConfig holds the dependencies of the account handlers.
type AccountConfig struct {
	Provider  identity.Provider
	Lockout   abuse.LockoutTracker
	Responder transportcore.ErrorResponder
	Metrics   *telemetry.Metrics
	Cookie    CookieConfig

	// ResetRedirect is the page password recovery emails link to.
	ResetRedirect string
}

// Account serves the credential endpoints. Rate limits are applied by
// middleware in front of these handlers; Account itself only consults the
// lockout tracker, on login.
type Account struct {
	provider      identity.Provider
	lockout       abuse.LockoutTracker
	responder     transportcore.ErrorResponder
	metrics       *telemetry.Metrics
	cookie        CookieConfig
	resetRedirect string
}

// NewAccount creates the account handlers.
func NewAccount(cfg AccountConfig) (*Account, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("identity provider cannot be nil")
	}
	if cfg.Lockout == nil {
		return nil, fmt.Errorf("lockout tracker cannot be nil")
	}
	if cfg.Responder == nil {
		return nil, fmt.Errorf("responder cannot be nil")
	}
	if cfg.Cookie.Name == "" {
		return nil, fmt.Errorf("cookie name is required")
	}
	return &Account{
		provider:      cfg.Provider,
		lockout:       cfg.Lockout,
		responder:     cfg.Responder,
		metrics:       cfg.Metrics,
		cookie:        cfg.Cookie,
		resetRedirect: cfg.ResetRedirect,
	}, nil
}

// detailResponse is the body of endpoints that only acknowledge.
type detailResponse struct {
	Detail string `json:"detail"`
}

// emailRequest is the body of endpoints that take just an email.
type emailRequest struct {
	Email string `json:"email"`
}

// decode reads a JSON body into v, answering 400 itself on failure.
func (a *Account) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		a.responder.BadRequest(w, r, "Invalid request body", fmt.Errorf("%w: %v", transportcore.ErrInvalidBody, err))
		return false
	}
	return true
}

// email validates and normalizes an address, answering 400 itself when it
// is not a bare address.
func (a *Account) email(w http.ResponseWriter, r *http.Request, raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		a.responder.BadRequest(w, r, "A valid email is required", err)
		return "", false
	}
	return trimmed, true
}

// password enforces the strength policy, answering 400 itself on failure.
func (a *Account) password(w http.ResponseWriter, r *http.Request, pw string) bool {
	if err := CheckPasswordStrength(pw); err != nil {
		a.responder.BadRequest(w, r, weakPasswordMessage, err)
		return false
	}
	return true
}

func (a *Account) respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	if err := transportcore.WriteJSON(w, status, v); err != nil {
		telemetry.LoggerFrom(r.Context()).Error("failed to encode response", zap.Error(err))
	}
}

func (a *Account) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookie.Name,
		Value:    token,
		Path:     "/",
		Domain:   a.cookie.Domain,
		MaxAge:   int(a.cookie.MaxAge.Seconds()),
		Secure:   a.cookie.Secure,
		HttpOnly: true,
		SameSite: a.cookie.SameSite,
	})
}

func (a *Account) clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookie.Name,
		Value:    "",
		Path:     "/",
		Domain:   a.cookie.Domain,
		MaxAge:   -1,
		Secure:   a.cookie.Secure,
		HttpOnly: true,
		SameSite: a.cookie.SameSite,
	})
}

// acknowledgeUnlessDown hides provider rejections behind a generic
// acknowledgement so responses do not reveal which emails have accounts.
// Only an unreachable provider is reported.
func (a *Account) acknowledgeUnlessDown(w http.ResponseWriter, r *http.Request, err error, detail string) {
	if err != nil {
		if errors.Is(err, identity.ErrUnavailable) || errors.Is(err, identity.ErrNotConfigured) {
			a.responder.Fail(w, r, err)
			return
		}
		telemetry.LoggerFrom(r.Context()).Info("identity provider rejected request", zap.Error(err))
	}
	a.respond(w, r, http.StatusOK, detailResponse{Detail: detail})
}
