package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jamesprial/authgate/internal/telemetry"
	"github.com/jamesprial/authgate/internal/transport/transportcore"
)

// unmatchedRoute labels requests that matched no route, keeping metric
// cardinality bounded.
const unmatchedRoute = "unmatched"

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	bytes      int
	written    bool
}

// WriteHeader captures the status code before writing it.
func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

// Write ensures status code is captured even if WriteHeader is not called explicitly.
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

// NewLoggingMiddleware creates middleware that logs each completed request
// with the request-scoped logger and records it in metrics. metrics may
// be nil.
//
// 5xx responses log at error, 4xx at warn and the rest at info.
func NewLoggingMiddleware(metrics *telemetry.Metrics) transportcore.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			route := RoutePattern(r)
			metrics.RequestServed(r.Method, route, wrapped.statusCode, duration)

			fields := []zap.Field{
				zap.String("route", route),
				zap.Int("status", wrapped.statusCode),
				zap.Int("bytes", wrapped.bytes),
				zap.Int64("duration_ms", duration.Milliseconds()),
			}

			logger := telemetry.LoggerFrom(r.Context())
			switch {
			case wrapped.statusCode >= 500:
				logger.Error("request failed", fields...)
			case wrapped.statusCode >= 400:
				logger.Warn("request completed with client error", fields...)
			default:
				logger.Info("request completed", fields...)
			}
		})
	}
}

// RoutePattern returns the chi route pattern that served r, or
// "unmatched". It is only meaningful after routing has happened, that is
// after the next handler returned.
func RoutePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return unmatchedRoute
}
