// Package transport provides the HTTP transport layer for authgate.
//
// # Architecture
//
// The transport package connects the token verifier, the abuse guards and
// the identity provider client to HTTP. Handlers only translate between
// JSON bodies and those services; every policy decision lives behind an
// interface injected through Config.
//
// Package structure:
//
//	internal/transport/
//	├── transport.go              # Public interfaces
//	├── errors.go                 # Transport domain errors
//	├── context.go                # Context helpers
//	├── wire.go                   # Factory functions and route table
//	├── transportcore/            # Shared types, context keys, JSON helper
//	└── internal/
//	    ├── http/
//	    │   ├── server.go         # HTTP server with graceful shutdown
//	    │   ├── router.go         # chi-backed routing
//	    │   └── response.go       # Error responder
//	    ├── middleware/
//	    │   ├── requestctx.go     # Request id, client address, scoped logger
//	    │   ├── logging.go        # Access log and request metrics
//	    │   ├── recovery.go       # Panic recovery
//	    │   ├── cors.go           # Browser origin allow-list
//	    │   ├── auth.go           # Bearer / cookie authentication
//	    │   └── throttle.go       # Per-action rate limits
//	    └── handlers/             # Credential endpoints and health
//
// # Middleware Chain
//
// Global middleware runs for every request, matched or not, in this order:
//
//  1. Request context - request id, client address, scoped logger
//  2. Logging - access log line and request counters
//  3. Recovery - catches panics and returns 500 errors
//  4. CORS - answers preflights and decorates allowed origins
//
// Per-route middleware follows: a rate limit for the action, then
// authentication where the route needs a subject. /invites authenticates
// first so its limit is keyed by subject.
//
// # Error Handling
//
// Every error body has the same shape:
//
//	{"error": "too_many_requests", "message": "Too many attempts. Please try again later."}
//
// 401 responses carry a Bearer challenge. The error parameter is only
// present when a token was offered and rejected:
//
//	HTTP/1.1 401 Unauthorized
//	WWW-Authenticate: Bearer realm="authgate", error="invalid_token"
//
// 429 and 503 responses carry Retry-After in whole seconds, rounded up.
// A failing limiter backend yields 503 rather than letting the attempt
// through.
//
// # Endpoints
//
// Public endpoints:
//   - GET /health - Health check
//   - GET /metrics - Prometheus metrics, when a registry is configured
//   - POST /logout - Clears the token cookie and revokes the session
//
// Rate limited by client address:
//   - POST /login
//   - POST /register
//   - POST /forgot-password
//   - POST /resend-confirmation
//
// Authenticated:
//   - POST /reset-password - also limited by client address
//   - POST /invites - limited by subject
//   - GET /me
//
// # Usage Example
//
//	server, _, err := transport.NewTransportServices(&transport.Config{
//		Settings:      cfg,
//		Authenticator: authenticator,
//		Limiter:       guards.Limiter,
//		Lockout:       guards.Lockout,
//		Provider:      provider,
//		Metrics:       metrics,
//		Logger:        logger,
//	})
//	if err != nil {
//		return err
//	}
//
//	go func() { errCh <- server.Start() }()
//	...
//	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//	defer cancel()
//	_ = server.Shutdown(ctx)
package transport
