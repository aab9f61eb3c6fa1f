package http

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/jamesprial/authgate/internal/auth"
	ierrors "github.com/jamesprial/authgate/internal/errors"
	"github.com/jamesprial/authgate/internal/telemetry"
	"github.com/jamesprial/authgate/internal/transport/transportcore"
	"github.com/jamesprial/authgate/pkg/authgate"
)

// DefaultUnavailableRetryAfter is the Retry-After sent with 503 responses
// whose cause carries no hint.
const DefaultUnavailableRetryAfter = 5 * time.Second

// errorResponse represents a JSON error response body.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// errorResponder implements transportcore.ErrorResponder.
type errorResponder struct {
	realm            string
	unavailableAfter time.Duration
}

// NewErrorResponder creates an error responder whose Bearer challenges
// name realm.
func NewErrorResponder(realm string) transportcore.ErrorResponder {
	return &errorResponder{
		realm:            realm,
		unavailableAfter: DefaultUnavailableRetryAfter,
	}
}

// Unauthorized sends a 401 Unauthorized response with WWW-Authenticate header.
// A presented but rejected token adds error="invalid_token" (RFC 6750 §3.1);
// a missing credential gets a bare challenge.
//
// Format: WWW-Authenticate: Bearer realm="<realm>", error="invalid_token"
func (e *errorResponder) Unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	challenge := ierrors.NewChallenge(e.realm)
	if errors.Is(err, auth.ErrMissingCredential) {
		challenge.ErrorCode = ""
	}
	w.Header().Set(authgate.HeaderWWWAuthenticate, challenge.Header())

	telemetry.LoggerFrom(r.Context()).Warn("unauthorized request",
		zap.String("reason", auth.Reason(err)),
		zap.Error(err),
	)
	e.write(w, r, http.StatusUnauthorized, "unauthorized", "Authentication required")
}

// TooManyRequests sends 429 with Retry-After in whole seconds, rounded up.
func (e *errorResponder) TooManyRequests(w http.ResponseWriter, r *http.Request, err error) {
	if d, ok := ierrors.RetryAfter(err); ok {
		setRetryAfter(w, d)
	}
	telemetry.LoggerFrom(r.Context()).Info("request throttled", zap.Error(err))
	e.write(w, r, http.StatusTooManyRequests, "too_many_requests", "Too many attempts. Please try again later.")
}

// Unavailable sends 503 with Retry-After.
func (e *errorResponder) Unavailable(w http.ResponseWriter, r *http.Request, err error) {
	d, ok := ierrors.RetryAfter(err)
	if !ok || d <= 0 {
		d = e.unavailableAfter
	}
	setRetryAfter(w, d)
	telemetry.LoggerFrom(r.Context()).Error("upstream unavailable", zap.Error(err))
	e.write(w, r, http.StatusServiceUnavailable, "service_unavailable", "Service temporarily unavailable")
}

// BadRequest sends a 400 Bad Request response.
func (e *errorResponder) BadRequest(w http.ResponseWriter, r *http.Request, message string, err error) {
	if message == "" {
		message = "Invalid request"
	}
	telemetry.LoggerFrom(r.Context()).Debug("bad request", zap.Error(err))
	e.write(w, r, http.StatusBadRequest, "bad_request", message)
}

// InternalError sends a 500 Internal Server Error response.
// The response body contains a generic JSON error message.
func (e *errorResponder) InternalError(w http.ResponseWriter, r *http.Request, err error) {
	telemetry.LoggerFrom(r.Context()).Error("internal server error", zap.Error(err))
	e.write(w, r, http.StatusInternalServerError, "internal_error", "An internal server error occurred")
}

// Error sends an arbitrary error response.
func (e *errorResponder) Error(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		telemetry.LoggerFrom(r.Context()).Info("request failed",
			zap.Int("status", status),
			zap.String("code", code),
			zap.Error(err),
		)
	}
	e.write(w, r, status, code, message)
}

// Fail maps the kind of err to a response.
func (e *errorResponder) Fail(w http.ResponseWriter, r *http.Request, err error) {
	switch kind := ierrors.KindOf(err); kind {
	case ierrors.ErrUnauthorized:
		e.Unauthorized(w, r, err)
	case ierrors.ErrTooManyRequests:
		e.TooManyRequests(w, r, err)
	case ierrors.ErrUnavailable:
		e.Unavailable(w, r, err)
	case ierrors.ErrBadRequest:
		e.BadRequest(w, r, "", err)
	case ierrors.ErrForbidden:
		e.Error(w, r, http.StatusForbidden, "forbidden", "Forbidden", err)
	case ierrors.ErrConflict:
		e.Error(w, r, http.StatusConflict, "conflict", "Conflict", err)
	default:
		e.InternalError(w, r, err)
	}
}

func (e *errorResponder) write(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	resp := errorResponse{Error: code, Message: message}
	if err := transportcore.WriteJSON(w, status, resp); err != nil {
		telemetry.LoggerFrom(r.Context()).Error("failed to encode error response", zap.Error(err))
	}
}

func setRetryAfter(w http.ResponseWriter, d time.Duration) {
	secs := int64(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	w.Header().Set(authgate.HeaderRetryAfter, strconv.FormatInt(secs, 10))
}
