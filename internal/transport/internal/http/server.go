// Package http provides HTTP server implementation for the transport layer.
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jamesprial/authgate/internal/config"
	"github.com/jamesprial/authgate/internal/transport/transportcore"
)

// server implements transportcore.Server using net/http.Server.
type server struct {
	httpServer *http.Server
	mu         sync.RWMutex
	listener   net.Listener
}

// NewServer creates a new HTTP server with the provided configuration and handler.
// The handler is wrapped with otelhttp so each request starts a server span.
func NewServer(cfg *config.ServerConfig, handler http.Handler) transportcore.Server {
	if cfg == nil {
		panic("config cannot be nil")
	}
	if handler == nil {
		panic("handler cannot be nil")
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           otelhttp.NewHandler(handler, "authgate"),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	return &server{
		httpServer: httpServer,
	}
}

// Start begins serving HTTP requests on the configured address.
// This is a blocking call that returns when the server stops or encounters an error.
func (s *server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server without interrupting active connections.
// It waits for active connections to close or the context to be cancelled/expired.
func (s *server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return transportcore.ErrServerClosed
	}

	// Set a reasonable deadline if the context doesn't have one
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}

// Addr returns the address the server is listening on.
// This is useful when the server is configured to bind to a random port (":0").
func (s *server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener == nil {
		return s.httpServer.Addr
	}
	return s.listener.Addr().String()
}
