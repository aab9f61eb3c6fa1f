package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jamesprial/authgate/internal/telemetry"
	"github.com/jamesprial/authgate/internal/transport/transportcore"
	"github.com/jamesprial/authgate/pkg/authgate"
)

// maxRequestIDLen bounds client-supplied request ids.
const maxRequestIDLen = 128

// NewRequestContextMiddleware assigns each request an id and a client
// address and stores both, together with a scoped logger, in the request
// context. An incoming X-Request-ID is reused; otherwise a UUID is
// generated. The id is echoed in the response.
//
// Proxy headers are only consulted when trustProxy is set.
func NewRequestContextMiddleware(logger *zap.Logger, trustProxy bool) transportcore.Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := strings.TrimSpace(r.Header.Get(authgate.HeaderRequestID))
			if rid == "" || len(rid) > maxRequestIDLen {
				rid = uuid.NewString()
			}
			w.Header().Set(authgate.HeaderRequestID, rid)

			ip := ClientIP(r, trustProxy)

			ctx := transportcore.ContextWithRequestID(r.Context(), rid)
			ctx = transportcore.ContextWithClientIP(ctx, ip)
			ctx = telemetry.WithLogger(ctx, logger.With(
				zap.String("request_id", rid),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("client_ip", ip),
			))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIP resolves the caller's address. With trustProxy the first
// X-Forwarded-For entry wins, then X-Real-IP; otherwise, and as the final
// fallback, the host part of RemoteAddr.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get(authgate.HeaderForwardedFor); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if ip := strings.TrimSpace(r.Header.Get(authgate.HeaderRealIP)); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
