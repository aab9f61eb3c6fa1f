package config

import (
	"fmt"
	"net/url"
	"slices"

	"github.com/jamesprial/authgate/internal/abuse"
	"github.com/jamesprial/authgate/internal/auth"
)

// Validate checks that the configuration is valid and complete.
// It returns an error if required fields are missing or values are invalid.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := validateServer(cfg); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}
	if err := validateIdP(cfg); err != nil {
		return fmt.Errorf("invalid identity provider config: %w", err)
	}
	if err := validateToken(cfg); err != nil {
		return fmt.Errorf("invalid token config: %w", err)
	}
	if err := validateCookie(cfg); err != nil {
		return fmt.Errorf("invalid cookie config: %w", err)
	}
	if err := validateAbuse(cfg); err != nil {
		return fmt.Errorf("invalid abuse config: %w", err)
	}
	if err := validateFrontend(cfg); err != nil {
		return fmt.Errorf("invalid frontend config: %w", err)
	}
	return nil
}

// validateHTTPURL requires an absolute http or https URL.
func validateHTTPURL(name, raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return fmt.Errorf("%s must be an absolute URL", name)
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return fmt.Errorf("%s must use http or https scheme", name)
	}
	return nil
}

func validateServer(cfg *Config) error {
	if cfg.Server.Addr == "" {
		return fmt.Errorf("SERVER_ADDR is required")
	}
	if cfg.Server.ReadTimeout <= 0 {
		return fmt.Errorf("SERVER_READ_TIMEOUT must be positive")
	}
	if cfg.Server.WriteTimeout <= 0 {
		return fmt.Errorf("SERVER_WRITE_TIMEOUT must be positive")
	}
	// 0 means no idle timeout.
	if cfg.Server.IdleTimeout < 0 {
		return fmt.Errorf("SERVER_IDLE_TIMEOUT must be non-negative")
	}
	return nil
}

func validateIdP(cfg *Config) error {
	if cfg.IdP.URL == "" {
		return fmt.Errorf("IDP_URL is required")
	}
	if err := validateHTTPURL("IDP_URL", cfg.IdP.URL); err != nil {
		return err
	}
	if cfg.IdP.AnonKey == "" {
		return fmt.Errorf("IDP_ANON_KEY is required")
	}
	if cfg.IdP.JWKSCacheTTL <= 0 {
		return fmt.Errorf("JWKS_CACHE_TTL must be positive")
	}
	if cfg.IdP.JWKSFetchTimeout <= 0 {
		return fmt.Errorf("JWKS_FETCH_TIMEOUT must be positive")
	}
	return nil
}

func validateToken(cfg *Config) error {
	if cfg.Token.Audience == "" {
		return fmt.Errorf("TOKEN_AUDIENCE is required")
	}
	if len(cfg.Token.Algorithms) == 0 {
		return fmt.Errorf("TOKEN_ALGORITHMS requires at least one algorithm")
	}
	for _, alg := range cfg.Token.Algorithms {
		if !auth.IsSupportedAlgorithm(alg) {
			return fmt.Errorf("TOKEN_ALGORITHMS: unsupported algorithm %q", alg)
		}
	}
	if cfg.Token.Leeway < 0 {
		return fmt.Errorf("TOKEN_LEEWAY must be non-negative")
	}
	return nil
}

func validateCookie(cfg *Config) error {
	if cfg.Cookie.Name == "" {
		return fmt.Errorf("ACCESS_TOKEN_COOKIE is required")
	}
	if !slices.Contains([]string{"lax", "strict", "none"}, cfg.Cookie.SameSite) {
		return fmt.Errorf("COOKIE_SAMESITE must be lax, strict or none")
	}
	// Browsers drop SameSite=None cookies that are not Secure.
	if cfg.Cookie.SameSite == "none" && !cfg.Cookie.Secure {
		return fmt.Errorf("COOKIE_SAMESITE=none requires COOKIE_SECURE=true")
	}
	if cfg.Cookie.MaxAge <= 0 {
		return fmt.Errorf("COOKIE_MAX_AGE must be positive")
	}
	return nil
}

func validateAbuse(cfg *Config) error {
	policies := []struct {
		name   string
		policy RatePolicy
	}{
		{"RATE_LOGIN", cfg.Rate.Login()},
		{"RATE_REGISTER", cfg.Rate.Register()},
		{"RATE_RESET", cfg.Rate.Reset()},
		{"RATE_INVITE", cfg.Rate.Invite()},
	}
	for _, p := range policies {
		if p.policy.Limit <= 0 {
			return fmt.Errorf("%s_LIMIT must be positive", p.name)
		}
		if p.policy.Window <= 0 {
			return fmt.Errorf("%s_WINDOW must be positive", p.name)
		}
	}

	if cfg.Lockout.Threshold <= 0 {
		return fmt.Errorf("LOCKOUT_THRESHOLD must be positive")
	}
	if cfg.Lockout.Window <= 0 {
		return fmt.Errorf("LOCKOUT_WINDOW must be positive")
	}
	if cfg.Lockout.Duration <= 0 {
		return fmt.Errorf("LOCKOUT_DURATION must be positive")
	}

	switch cfg.Limiter.Backend {
	case abuse.BackendMemory:
	case abuse.BackendRedis:
		if cfg.Limiter.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis limiter backend")
		}
		if cfg.Limiter.RedisDB < 0 {
			return fmt.Errorf("REDIS_DB must be non-negative")
		}
	default:
		return fmt.Errorf("LIMITER_BACKEND must be %q or %q", abuse.BackendMemory, abuse.BackendRedis)
	}
	if cfg.Limiter.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive")
	}
	return nil
}

func validateFrontend(cfg *Config) error {
	if cfg.Frontend.URL == "" {
		return fmt.Errorf("FRONTEND_URL is required")
	}
	if err := validateHTTPURL("FRONTEND_URL", cfg.Frontend.URL); err != nil {
		return err
	}
	for _, origin := range cfg.CORS.AllowedOrigins {
		if origin == "*" {
			if cfg.CORS.AllowCredentials {
				return fmt.Errorf("ALLOWED_ORIGINS=* cannot be combined with CORS_ALLOW_CREDENTIALS")
			}
			continue
		}
		if err := validateHTTPURL("ALLOWED_ORIGINS", origin); err != nil {
			return err
		}
	}
	return nil
}
