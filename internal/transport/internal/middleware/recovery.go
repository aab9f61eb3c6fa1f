package middleware

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/jamesprial/authgate/internal/telemetry"
	"github.com/jamesprial/authgate/internal/transport/transportcore"
)

// NewRecoveryMiddleware creates middleware that recovers from panics.
// It logs the panic with a stack trace and returns a 500 Internal Server Error
// to the client to prevent connection termination.
// http.ErrAbortHandler is re-panicked so net/http can abort the response.
func NewRecoveryMiddleware(responder transportcore.ErrorResponder) transportcore.Middleware {
	if responder == nil {
		panic("responder cannot be nil")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}

				telemetry.LoggerFrom(r.Context()).Error("panic recovered",
					zap.Any("panic", recovered),
					zap.Stack("stack"),
				)
				responder.InternalError(w, r, fmt.Errorf("panic: %v", recovered))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
