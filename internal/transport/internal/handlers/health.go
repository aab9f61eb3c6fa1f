// Package handlers provides the HTTP handlers for authgate's routes.
package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/jamesprial/authgate/internal/telemetry"
	"github.com/jamesprial/authgate/internal/transport/transportcore"
)

// healthResponse represents the JSON response for health checks.
type healthResponse struct {
	Status string `json:"status"`
}

// NewHealthHandler creates a handler for the /health endpoint.
// It returns a simple JSON response indicating the server is healthy.
func NewHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := transportcore.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"}); err != nil {
			telemetry.LoggerFrom(r.Context()).Error("failed to encode health response", zap.Error(err))
		}
	})
}
