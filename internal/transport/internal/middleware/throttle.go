package middleware

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/jamesprial/authgate/internal/abuse"
	"github.com/jamesprial/authgate/internal/telemetry"
	"github.com/jamesprial/authgate/internal/transport/transportcore"
)

// Throttle builds per-route rate limiting middleware over one limiter.
type Throttle struct {
	limiter   abuse.Limiter
	responder transportcore.ErrorResponder
	metrics   *telemetry.Metrics
}

// NewThrottle creates a Throttle. metrics may be nil.
func NewThrottle(limiter abuse.Limiter, responder transportcore.ErrorResponder, metrics *telemetry.Metrics) *Throttle {
	if limiter == nil {
		panic("limiter cannot be nil")
	}
	if responder == nil {
		panic("responder cannot be nil")
	}
	return &Throttle{limiter: limiter, responder: responder, metrics: metrics}
}

// Limit admits at most policy.Limit requests per policy.Window for each
// key that keyFunc derives, under the limiter key "<action>:<key>".
// Refused requests get 429 with Retry-After. A limiter failure fails the
// request with 503.
func (t *Throttle) Limit(action string, policy abuse.Policy, keyFunc transportcore.KeyFunc) transportcore.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := keyFunc(r)
			if !ok {
				t.responder.InternalError(w, r, transportcore.ErrNoClientKey)
				return
			}

			err := policy.Allow(r.Context(), t.limiter, abuse.Key(action, identity))
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, abuse.ErrRateLimited):
				t.metrics.AttemptThrottled(action, "rate_limited")
				t.responder.TooManyRequests(w, r, err)
			default:
				telemetry.LoggerFrom(r.Context()).Error("limiter failed",
					zap.String("action", action),
					zap.Error(err),
				)
				t.responder.Unavailable(w, r, err)
			}
		})
	}
}

// ByClientIP keys requests by the address resolved by the request context
// middleware.
func ByClientIP(r *http.Request) (string, bool) {
	return transportcore.ClientIPFromContext(r.Context())
}

// BySubject keys requests by the authenticated subject. It must run after
// authentication.
func BySubject(r *http.Request) (string, bool) {
	return transportcore.SubjectFromContext(r.Context())
}
