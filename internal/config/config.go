// Package config provides configuration management for authgate.
// Configuration is read from environment variables, optionally seeded from
// a .env file, with documented defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the complete service configuration.
type Config struct {
	Server   ServerConfig
	IdP      IdPConfig
	Token    TokenConfig
	Cookie   CookieConfig
	Rate     RateConfig
	Lockout  LockoutConfig
	Limiter  LimiterConfig
	Log      LogConfig
	Tracing  TracingConfig
	Frontend FrontendConfig
	CORS     CORSConfig
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr         string        `env:"SERVER_ADDR" envDefault:":8000"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`

	// TrustProxyHeaders makes X-Forwarded-For / X-Real-IP authoritative
	// for the client address. Only enable behind a trusted proxy.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" envDefault:"false"`
}

// IdPConfig locates the identity provider and its signing keys.
type IdPConfig struct {
	URL        string `env:"IDP_URL"`
	AnonKey    string `env:"IDP_ANON_KEY"`
	ServiceKey string `env:"IDP_SERVICE_KEY"`

	JWKSCacheTTL        time.Duration `env:"JWKS_CACHE_TTL" envDefault:"300s"`
	JWKSFetchTimeout    time.Duration `env:"JWKS_FETCH_TIMEOUT" envDefault:"3s"`
	JWKSRetryUnknownKID bool          `env:"JWKS_RETRY_UNKNOWN_KID" envDefault:"false"`
}

// TokenConfig constrains accepted access tokens.
type TokenConfig struct {
	Audience   string        `env:"TOKEN_AUDIENCE" envDefault:"authenticated"`
	Algorithms []string      `env:"TOKEN_ALGORITHMS" envDefault:"ES256" envSeparator:","`
	Leeway     time.Duration `env:"TOKEN_LEEWAY" envDefault:"0s"`
}

// CookieConfig shapes the access token cookie set at login.
type CookieConfig struct {
	Name     string        `env:"ACCESS_TOKEN_COOKIE" envDefault:"access_token"`
	Secure   bool          `env:"COOKIE_SECURE" envDefault:"false"`
	SameSite string        `env:"COOKIE_SAMESITE" envDefault:"lax"`
	Domain   string        `env:"COOKIE_DOMAIN"`
	MaxAge   time.Duration `env:"COOKIE_MAX_AGE" envDefault:"168h"`
}

// RatePolicy is one limiter policy.
type RatePolicy struct {
	Limit  int
	Window time.Duration
}

// RateConfig holds the per-action limiter policies.
type RateConfig struct {
	LoginLimit     int           `env:"RATE_LOGIN_LIMIT" envDefault:"10"`
	LoginWindow    time.Duration `env:"RATE_LOGIN_WINDOW" envDefault:"60s"`
	RegisterLimit  int           `env:"RATE_REGISTER_LIMIT" envDefault:"5"`
	RegisterWindow time.Duration `env:"RATE_REGISTER_WINDOW" envDefault:"1h"`
	ResetLimit     int           `env:"RATE_RESET_LIMIT" envDefault:"5"`
	ResetWindow    time.Duration `env:"RATE_RESET_WINDOW" envDefault:"1h"`
	InviteLimit    int           `env:"RATE_INVITE_LIMIT" envDefault:"20"`
	InviteWindow   time.Duration `env:"RATE_INVITE_WINDOW" envDefault:"1h"`
}

// Login returns the login policy.
func (r RateConfig) Login() RatePolicy { return RatePolicy{Limit: r.LoginLimit, Window: r.LoginWindow} }

// Register returns the registration policy.
func (r RateConfig) Register() RatePolicy {
	return RatePolicy{Limit: r.RegisterLimit, Window: r.RegisterWindow}
}

// Reset returns the policy shared by password reset and resend-confirmation.
func (r RateConfig) Reset() RatePolicy { return RatePolicy{Limit: r.ResetLimit, Window: r.ResetWindow} }

// Invite returns the invite policy.
func (r RateConfig) Invite() RatePolicy {
	return RatePolicy{Limit: r.InviteLimit, Window: r.InviteWindow}
}

// LockoutConfig configures login lockout.
type LockoutConfig struct {
	Threshold int           `env:"LOCKOUT_THRESHOLD" envDefault:"5"`
	Window    time.Duration `env:"LOCKOUT_WINDOW" envDefault:"15m"`
	Duration  time.Duration `env:"LOCKOUT_DURATION" envDefault:"300s"`
}

// LimiterConfig selects and configures the limiter backend.
type LimiterConfig struct {
	Backend       string        `env:"LIMITER_BACKEND" envDefault:"memory"`
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string        `env:"REDIS_PREFIX" envDefault:"authgate:rl:"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Env   string `env:"LOG_ENV" envDefault:"dev"`
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// TracingConfig configures span export.
type TracingConfig struct {
	Endpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"authgate"`
}

// FrontendConfig locates the web client that recovery links point at.
type FrontendConfig struct {
	URL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
}

// CORSConfig controls cross-origin access from browser clients.
type CORSConfig struct {
	AllowedOrigins   []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000,http://127.0.0.1:3000" envSeparator:","`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`
}

// ResetRedirect is where password recovery emails send the user.
func (f FrontendConfig) ResetRedirect() string {
	return strings.TrimRight(f.URL, "/") + "/reset-password"
}

// Load reads configuration from the environment after seeding it from
// envFile, when envFile is non-empty and exists. Variables already set in
// the environment win over the file. The result is validated.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return parse(env.Options{})
}

// LoadFrom builds configuration from vars only, ignoring the process
// environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.Token.Algorithms = trimAll(cfg.Token.Algorithms)
	cfg.CORS.AllowedOrigins = trimAll(cfg.CORS.AllowedOrigins)
	cfg.Cookie.SameSite = strings.ToLower(strings.TrimSpace(cfg.Cookie.SameSite))
	cfg.Limiter.Backend = strings.ToLower(strings.TrimSpace(cfg.Limiter.Backend))

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// String returns a string representation of the configuration for
// debugging. Secrets are redacted.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Addr: %s, IdP: %s, AnonKey: %s, ServiceKey: %s, JWKSCacheTTL: %v, Audience: %s, Algorithms: %v, Limiter: %s, Cookie: %s}",
		c.Server.Addr, c.IdP.URL, redact(c.IdP.AnonKey), redact(c.IdP.ServiceKey),
		c.IdP.JWKSCacheTTL, c.Token.Audience, c.Token.Algorithms, c.Limiter.Backend, c.Cookie.Name)
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "[redacted]"
}
