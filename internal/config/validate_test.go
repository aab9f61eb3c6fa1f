package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a valid configuration for testing.
// Tests can override specific fields as needed.
func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8000",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		IdP: IdPConfig{
			URL:              "https://project.supabase.co",
			AnonKey:          "anon",
			JWKSCacheTTL:     300 * time.Second,
			JWKSFetchTimeout: 3 * time.Second,
		},
		Token:  TokenConfig{Audience: "authenticated", Algorithms: []string{"ES256"}},
		Cookie: CookieConfig{Name: "access_token", SameSite: "lax", MaxAge: 168 * time.Hour},
		Rate: RateConfig{
			LoginLimit: 10, LoginWindow: time.Minute,
			RegisterLimit: 5, RegisterWindow: time.Hour,
			ResetLimit: 5, ResetWindow: time.Hour,
			InviteLimit: 20, InviteWindow: time.Hour,
		},
		Lockout:  LockoutConfig{Threshold: 5, Window: 15 * time.Minute, Duration: 300 * time.Second},
		Limiter:  LimiterConfig{Backend: "memory", RedisAddr: "localhost:6379", SweepInterval: time.Minute},
		Frontend: FrontendConfig{URL: "http://localhost:3000"},
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		mutate      func(c *Config)
		wantErr     bool
		errContains string
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{name: "empty addr", mutate: func(c *Config) { c.Server.Addr = "" }, wantErr: true, errContains: "SERVER_ADDR"},
		{name: "zero read timeout", mutate: func(c *Config) { c.Server.ReadTimeout = 0 }, wantErr: true, errContains: "SERVER_READ_TIMEOUT"},
		{name: "zero write timeout", mutate: func(c *Config) { c.Server.WriteTimeout = 0 }, wantErr: true, errContains: "SERVER_WRITE_TIMEOUT"},
		{name: "zero idle timeout allowed", mutate: func(c *Config) { c.Server.IdleTimeout = 0 }},
		{name: "negative idle timeout", mutate: func(c *Config) { c.Server.IdleTimeout = -time.Second }, wantErr: true, errContains: "SERVER_IDLE_TIMEOUT"},
		{name: "relative idp url", mutate: func(c *Config) { c.IdP.URL = "project.supabase.co" }, wantErr: true, errContains: "IDP_URL"},
		{name: "ftp idp url", mutate: func(c *Config) { c.IdP.URL = "ftp://idp.example.com" }, wantErr: true, errContains: "IDP_URL"},
		{name: "http idp url allowed", mutate: func(c *Config) { c.IdP.URL = "http://kong:8000" }},
		{name: "missing anon key", mutate: func(c *Config) { c.IdP.AnonKey = "" }, wantErr: true, errContains: "IDP_ANON_KEY"},
		{name: "zero ttl", mutate: func(c *Config) { c.IdP.JWKSCacheTTL = 0 }, wantErr: true, errContains: "JWKS_CACHE_TTL"},
		{name: "zero fetch timeout", mutate: func(c *Config) { c.IdP.JWKSFetchTimeout = 0 }, wantErr: true, errContains: "JWKS_FETCH_TIMEOUT"},
		{name: "empty audience", mutate: func(c *Config) { c.Token.Audience = "" }, wantErr: true, errContains: "TOKEN_AUDIENCE"},
		{name: "no algorithms", mutate: func(c *Config) { c.Token.Algorithms = nil }, wantErr: true, errContains: "TOKEN_ALGORITHMS"},
		{name: "none algorithm", mutate: func(c *Config) { c.Token.Algorithms = []string{"none"} }, wantErr: true, errContains: "TOKEN_ALGORITHMS"},
		{name: "negative leeway", mutate: func(c *Config) { c.Token.Leeway = -time.Second }, wantErr: true, errContains: "TOKEN_LEEWAY"},
		{name: "bad samesite", mutate: func(c *Config) { c.Cookie.SameSite = "sometimes" }, wantErr: true, errContains: "COOKIE_SAMESITE"},
		{name: "samesite none insecure", mutate: func(c *Config) { c.Cookie.SameSite = "none" }, wantErr: true, errContains: "COOKIE_SECURE"},
		{name: "samesite none secure", mutate: func(c *Config) { c.Cookie.SameSite = "none"; c.Cookie.Secure = true }},
		{name: "zero register window", mutate: func(c *Config) { c.Rate.RegisterWindow = 0 }, wantErr: true, errContains: "RATE_REGISTER_WINDOW"},
		{name: "zero invite limit", mutate: func(c *Config) { c.Rate.InviteLimit = 0 }, wantErr: true, errContains: "RATE_INVITE_LIMIT"},
		{name: "zero lockout threshold", mutate: func(c *Config) { c.Lockout.Threshold = 0 }, wantErr: true, errContains: "LOCKOUT_THRESHOLD"},
		{name: "zero lockout duration", mutate: func(c *Config) { c.Lockout.Duration = 0 }, wantErr: true, errContains: "LOCKOUT_DURATION"},
		{name: "redis without addr", mutate: func(c *Config) { c.Limiter.Backend = "redis"; c.Limiter.RedisAddr = "" }, wantErr: true, errContains: "REDIS_ADDR"},
		{name: "redis", mutate: func(c *Config) { c.Limiter.Backend = "redis" }},
		{name: "zero sweep", mutate: func(c *Config) { c.Limiter.SweepInterval = 0 }, wantErr: true, errContains: "SWEEP_INTERVAL"},
		{name: "wildcard origin with credentials", mutate: func(c *Config) { c.CORS = CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true} }, wantErr: true, errContains: "ALLOWED_ORIGINS"},
		{name: "wildcard origin", mutate: func(c *Config) { c.CORS = CORSConfig{AllowedOrigins: []string{"*"}} }},
		{name: "bad origin", mutate: func(c *Config) { c.CORS.AllowedOrigins = []string{"localhost"} }, wantErr: true, errContains: "ALLOWED_ORIGINS"},
		{name: "bad frontend", mutate: func(c *Config) { c.Frontend.URL = "/reset" }, wantErr: true, errContains: "FRONTEND_URL"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	t.Parallel()
	assert.Error(t, Validate(nil))
}
