package transport

import (
	"github.com/jamesprial/authgate/internal/transport/transportcore"
)

// Re-export types from transportcore.
// This allows external packages to import transport without creating cycles.

// Middleware is a function that wraps an http.Handler.
// It can modify the request, response, or perform additional logic
// before or after calling the next handler in the chain.
type Middleware = transportcore.Middleware

// Server manages the HTTP server lifecycle.
// Implementations must support graceful shutdown and provide
// access to the bound address after startup.
type Server = transportcore.Server

// Router handles HTTP request routing and middleware composition.
type Router = transportcore.Router

// AuthMiddleware authenticates requests with identity provider tokens.
type AuthMiddleware = transportcore.AuthMiddleware

// ErrorResponder writes JSON error responses, with a Bearer challenge on 401
// and Retry-After on 429 and 503.
type ErrorResponder = transportcore.ErrorResponder

// KeyFunc derives the abuse-guard identity of a request.
type KeyFunc = transportcore.KeyFunc
