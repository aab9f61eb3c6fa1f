package transport

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/jamesprial/authgate/internal/abuse"
	"github.com/jamesprial/authgate/internal/auth"
	"github.com/jamesprial/authgate/internal/config"
	"github.com/jamesprial/authgate/internal/identity"
	"github.com/jamesprial/authgate/internal/telemetry"
	"github.com/jamesprial/authgate/internal/transport/internal/handlers"
	transporthttp "github.com/jamesprial/authgate/internal/transport/internal/http"
	"github.com/jamesprial/authgate/internal/transport/internal/middleware"
	"github.com/jamesprial/authgate/pkg/authgate"
)

// Realm is the realm named in Bearer challenges.
const Realm = "authgate"

// NewServer creates a configured HTTP server.
// The server is configured with timeouts from the config and serves handler.
func NewServer(cfg *config.ServerConfig, handler http.Handler) Server {
	return transporthttp.NewServer(cfg, handler)
}

// NewRouter creates a new chi-backed router whose 404 and 405 responses
// are written by responder.
func NewRouter(responder ErrorResponder) Router {
	return transporthttp.NewRouter(responder)
}

// NewErrorResponder creates an error responder naming realm in its
// Bearer challenges.
func NewErrorResponder(realm string) ErrorResponder {
	return transporthttp.NewErrorResponder(realm)
}

// NewAuthMiddleware creates bearer authentication middleware.
func NewAuthMiddleware(authenticator auth.Authenticator, responder ErrorResponder) AuthMiddleware {
	return middleware.NewAuthMiddleware(authenticator, responder)
}

// Config holds the configuration needed for the transport layer.
type Config struct {
	// Settings is the service configuration. Server, Cookie, Rate,
	// Frontend and CORS are read.
	Settings *config.Config

	Authenticator auth.Authenticator
	Limiter       abuse.Limiter
	Lockout       abuse.LockoutTracker
	Provider      identity.Provider

	// Metrics is optional; when set, /metrics is served.
	Metrics *telemetry.Metrics

	// Logger is the base for request-scoped loggers. Nil means no logging.
	Logger *zap.Logger
}

// NewTransportServices creates all transport layer services from the configuration.
// This is a convenience function for dependency injection that wires up the complete
// HTTP transport layer with routing, middleware, and handlers.
func NewTransportServices(cfg *Config) (Server, Router, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Settings == nil {
		return nil, nil, fmt.Errorf("settings cannot be nil")
	}
	if cfg.Authenticator == nil {
		return nil, nil, fmt.Errorf("authenticator cannot be nil")
	}
	if cfg.Limiter == nil {
		return nil, nil, fmt.Errorf("limiter cannot be nil")
	}
	if cfg.Lockout == nil {
		return nil, nil, fmt.Errorf("lockout tracker cannot be nil")
	}
	if cfg.Provider == nil {
		return nil, nil, fmt.Errorf("identity provider cannot be nil")
	}
	settings := cfg.Settings

	responder := NewErrorResponder(Realm)

	account, err := handlers.NewAccount(handlers.AccountConfig{
		Provider:  cfg.Provider,
		Lockout:   cfg.Lockout,
		Responder: responder,
		Metrics:   cfg.Metrics,
		Cookie: handlers.CookieConfig{
			Name:     settings.Cookie.Name,
			Secure:   settings.Cookie.Secure,
			SameSite: sameSiteMode(settings.Cookie.SameSite),
			Domain:   settings.Cookie.Domain,
			MaxAge:   settings.Cookie.MaxAge,
		},
		ResetRedirect: settings.Frontend.ResetRedirect(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("account handlers: %w", err)
	}

	authenticate := NewAuthMiddleware(cfg.Authenticator, responder).Authenticate()
	throttle := middleware.NewThrottle(cfg.Limiter, responder, cfg.Metrics)
	loginLimit := throttle.Limit(authgate.ActionLogin, policy(settings.Rate.Login()), middleware.ByClientIP)
	registerLimit := throttle.Limit(authgate.ActionRegister, policy(settings.Rate.Register()), middleware.ByClientIP)
	resetLimit := throttle.Limit(authgate.ActionReset, policy(settings.Rate.Reset()), middleware.ByClientIP)
	inviteLimit := throttle.Limit(authgate.ActionInvite, policy(settings.Rate.Invite()), middleware.BySubject)

	router := NewRouter(responder)

	// Global middleware, outermost first. The request context comes first
	// so every later layer logs with the scoped logger.
	router.Use(
		middleware.NewRequestContextMiddleware(cfg.Logger, settings.Server.TrustProxyHeaders),
		middleware.NewLoggingMiddleware(cfg.Metrics),
		middleware.NewRecoveryMiddleware(responder),
		middleware.NewCORSMiddleware(settings.CORS.AllowedOrigins, settings.CORS.AllowCredentials),
	)

	// Public endpoints
	router.Handle("GET /health", handlers.NewHealthHandler())
	if cfg.Metrics != nil {
		router.Handle("GET /metrics", cfg.Metrics.Handler())
	}
	router.Handle("POST /logout", http.HandlerFunc(account.Logout))

	// Credential endpoints, rate limited per client address
	router.Handle("POST /login", chain(account.Login, loginLimit))
	router.Handle("POST /register", chain(account.Register, registerLimit))
	router.Handle("POST /forgot-password", chain(account.ForgotPassword, resetLimit))
	router.Handle("POST /resend-confirmation", chain(account.ResendConfirmation, resetLimit))

	// Protected endpoints
	router.Handle("POST /reset-password", chain(account.ResetPassword, resetLimit, authenticate))
	router.Handle("POST /invites", chain(account.Invite, authenticate, inviteLimit))
	router.Handle("GET /me", chain(account.Me, authenticate))

	server := NewServer(&settings.Server, router)

	return server, router, nil
}

// chain wraps h in middlewares, the first being the outermost.
func chain(h http.HandlerFunc, middlewares ...Middleware) http.Handler {
	var handler http.Handler = h
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

func policy(p config.RatePolicy) abuse.Policy {
	return abuse.Policy{Limit: p.Limit, Window: p.Window}
}

func sameSiteMode(s string) http.SameSite {
	switch s {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
