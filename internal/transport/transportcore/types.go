// Package transportcore provides core types, interfaces, and primitives for the transport layer.
// This package exists to break import cycles between the transport package and its internal subpackages.
package transportcore

import (
	"context"
	"net/http"
)

// Middleware is a function that wraps an http.Handler.
// It can modify the request, response, or perform additional logic
// before or after calling the next handler in the chain.
type Middleware func(http.Handler) http.Handler

// Server manages the HTTP server lifecycle.
// Implementations must support graceful shutdown and provide
// access to the bound address after startup.
type Server interface {
	// Start begins serving HTTP requests on the configured address.
	// This is a blocking call that returns when the server stops
	// or encounters an error during startup.
	Start() error

	// Shutdown gracefully shuts down the server without interrupting
	// active connections. It waits for active connections to close
	// or the context to be cancelled/expired.
	Shutdown(ctx context.Context) error

	// Addr returns the address the server is listening on.
	// This is useful when the server is configured to bind to a random port.
	Addr() string
}

// Router handles HTTP request routing and middleware composition.
// It extends http.Handler with pattern-based routing and middleware support.
type Router interface {
	http.Handler

	// Handle registers a handler for the given pattern, written as
	// "METHOD /path" or "/path" for any method.
	Handle(pattern string, handler http.Handler)

	// HandleFunc registers a handler function for the given pattern.
	HandleFunc(pattern string, handler http.HandlerFunc)

	// Use applies middleware to every request, matched or not. It must be
	// called before any route is registered. Middleware is applied in the
	// order registered.
	Use(middlewares ...Middleware)
}

// AuthMiddleware authenticates requests with the identity provider's
// access tokens.
type AuthMiddleware interface {
	// Authenticate resolves the request's bearer token or access token
	// cookie to a subject and stores it in the request context.
	//
	// Returns 401 Unauthorized with a WWW-Authenticate challenge on failure,
	// or 503 when the signing keys cannot be fetched.
	Authenticate() Middleware
}

// KeyFunc derives the abuse-guard identity of a request. ok is false when
// no identity can be derived.
type KeyFunc func(r *http.Request) (key string, ok bool)

// ErrorResponder writes JSON error responses of the form
// {"error": "<code>", "message": "<text>"}.
type ErrorResponder interface {
	// Unauthorized sends 401 with a Bearer challenge. The body is the same
	// for every cause; err is only logged.
	Unauthorized(w http.ResponseWriter, r *http.Request, err error)

	// TooManyRequests sends 429 with Retry-After taken from err. Rate
	// limiting and lockout produce identical responses.
	TooManyRequests(w http.ResponseWriter, r *http.Request, err error)

	// Unavailable sends 503 with Retry-After.
	Unavailable(w http.ResponseWriter, r *http.Request, err error)

	// BadRequest sends 400 with message shown to the client.
	BadRequest(w http.ResponseWriter, r *http.Request, message string, err error)

	// InternalError sends 500 with a generic message.
	InternalError(w http.ResponseWriter, r *http.Request, err error)

	// Error sends status with the given code and message.
	Error(w http.ResponseWriter, r *http.Request, status int, code, message string, err error)

	// Fail picks the response from the kind of err.
	Fail(w http.ResponseWriter, r *http.Request, err error)
}
