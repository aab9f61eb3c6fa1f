package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jamesprial/authgate/internal/transport/transportcore"
)

// router implements transportcore.Router on a chi.Mux.
type router struct {
	mux *chi.Mux
}

// NewRouter creates a new chi-backed router. Unknown paths and methods are
// answered with JSON errors through responder.
func NewRouter(responder transportcore.ErrorResponder) transportcore.Router {
	mux := chi.NewRouter()
	if responder != nil {
		mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
			responder.Error(w, r, http.StatusNotFound, "not_found", "Resource not found", nil)
		})
		mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			responder.Error(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
		})
	}
	return &router{mux: mux}
}

// Handle registers a handler for the given pattern.
func (r *router) Handle(pattern string, handler http.Handler) {
	method, path := splitPattern(pattern)
	if method == "" {
		r.mux.Handle(path, handler)
		return
	}
	r.mux.Method(method, path, handler)
}

// HandleFunc registers a handler function for the given pattern.
func (r *router) HandleFunc(pattern string, handler http.HandlerFunc) {
	r.Handle(pattern, handler)
}

// Use appends middleware that runs before routing for every request,
// including unmatched ones. The first middleware registered is the
// outermost layer. It panics if called after a route was registered.
func (r *router) Use(middlewares ...transportcore.Middleware) {
	for _, mw := range middlewares {
		r.mux.Use(mw)
	}
}

// ServeHTTP implements http.Handler by delegating to the chi mux.
func (r *router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// splitPattern splits "METHOD /path" into its parts.
func splitPattern(pattern string) (method, path string) {
	pattern = strings.TrimSpace(pattern)
	if i := strings.IndexByte(pattern, ' '); i > 0 {
		return strings.ToUpper(pattern[:i]), strings.TrimSpace(pattern[i+1:])
	}
	return "", pattern
}
