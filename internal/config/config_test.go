package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requiredVars() map[string]string {
	return map[string]string{
		"IDP_URL":      "https://project.supabase.co",
		"IDP_ANON_KEY": "anon-key",
	}
}

func withVars(extra map[string]string) map[string]string {
	vars := requiredVars()
	for k, v := range extra {
		vars[k] = v
	}
	return vars
}

func TestLoadFrom_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFrom(requiredVars())
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 120*time.Second, cfg.Server.IdleTimeout)
	assert.False(t, cfg.Server.TrustProxyHeaders)

	assert.Equal(t, 300*time.Second, cfg.IdP.JWKSCacheTTL)
	assert.Equal(t, 3*time.Second, cfg.IdP.JWKSFetchTimeout)
	assert.False(t, cfg.IdP.JWKSRetryUnknownKID)
	assert.Empty(t, cfg.IdP.ServiceKey)

	assert.Equal(t, "authenticated", cfg.Token.Audience)
	assert.Equal(t, []string{"ES256"}, cfg.Token.Algorithms)
	assert.Zero(t, cfg.Token.Leeway)

	assert.Equal(t, "access_token", cfg.Cookie.Name)
	assert.Equal(t, "lax", cfg.Cookie.SameSite)
	assert.Equal(t, 168*time.Hour, cfg.Cookie.MaxAge)

	assert.Equal(t, RatePolicy{Limit: 10, Window: time.Minute}, cfg.Rate.Login())
	assert.Equal(t, RatePolicy{Limit: 5, Window: time.Hour}, cfg.Rate.Register())
	assert.Equal(t, RatePolicy{Limit: 5, Window: time.Hour}, cfg.Rate.Reset())
	assert.Equal(t, RatePolicy{Limit: 20, Window: time.Hour}, cfg.Rate.Invite())

	assert.Equal(t, 5, cfg.Lockout.Threshold)
	assert.Equal(t, 15*time.Minute, cfg.Lockout.Window)
	assert.Equal(t, 300*time.Second, cfg.Lockout.Duration)

	assert.Equal(t, "memory", cfg.Limiter.Backend)
	assert.Equal(t, "localhost:6379", cfg.Limiter.RedisAddr)
	assert.Equal(t, "authgate:rl:", cfg.Limiter.RedisPrefix)
	assert.Equal(t, time.Minute, cfg.Limiter.SweepInterval)

	assert.Equal(t, "dev", cfg.Log.Env)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Tracing.Endpoint)
	assert.Equal(t, "http://localhost:3000/reset-password", cfg.Frontend.ResetRedirect())
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.CORS.AllowCredentials)
}

func TestLoadFrom_Overrides(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFrom(withVars(map[string]string{
		"SERVER_ADDR":            ":9000",
		"TRUST_PROXY_HEADERS":    "true",
		"IDP_SERVICE_KEY":        "service",
		"JWKS_CACHE_TTL":         "1m",
		"JWKS_RETRY_UNKNOWN_KID": "true",
		"TOKEN_ALGORITHMS":       "ES256, RS256 ,",
		"TOKEN_LEEWAY":           "5s",
		"COOKIE_SAMESITE":        " Strict ",
		"COOKIE_SECURE":          "true",
		"RATE_LOGIN_LIMIT":       "3",
		"LIMITER_BACKEND":        "REDIS",
		"REDIS_DB":               "2",
		"FRONTEND_URL":           "https://app.example.com/",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.True(t, cfg.Server.TrustProxyHeaders)
	assert.Equal(t, "service", cfg.IdP.ServiceKey)
	assert.Equal(t, time.Minute, cfg.IdP.JWKSCacheTTL)
	assert.True(t, cfg.IdP.JWKSRetryUnknownKID)
	assert.Equal(t, []string{"ES256", "RS256"}, cfg.Token.Algorithms)
	assert.Equal(t, 5*time.Second, cfg.Token.Leeway)
	assert.Equal(t, "strict", cfg.Cookie.SameSite)
	assert.Equal(t, 3, cfg.Rate.Login().Limit)
	assert.Equal(t, "redis", cfg.Limiter.Backend)
	assert.Equal(t, 2, cfg.Limiter.RedisDB)
	assert.Equal(t, "https://app.example.com/reset-password", cfg.Frontend.ResetRedirect())
}

func TestLoadFrom_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		vars        map[string]string
		errContains string
	}{
		{name: "missing IDP_URL", vars: map[string]string{"IDP_ANON_KEY": "k"}, errContains: "IDP_URL"},
		{name: "missing IDP_ANON_KEY", vars: map[string]string{"IDP_URL": "https://idp.example.com"}, errContains: "IDP_ANON_KEY"},
		{name: "bad duration", vars: withVars(map[string]string{"JWKS_CACHE_TTL": "soon"}), errContains: "parse env"},
		{name: "bad int", vars: withVars(map[string]string{"RATE_LOGIN_LIMIT": "ten"}), errContains: "parse env"},
		{name: "zero limit", vars: withVars(map[string]string{"RATE_LOGIN_LIMIT": "0"}), errContains: "RATE_LOGIN_LIMIT"},
		{name: "hmac algorithm", vars: withVars(map[string]string{"TOKEN_ALGORITHMS": "HS256"}), errContains: "HS256"},
		{name: "unknown backend", vars: withVars(map[string]string{"LIMITER_BACKEND": "memcached"}), errContains: "LIMITER_BACKEND"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := LoadFrom(tt.vars)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	// Not parallel: godotenv and t.Setenv modify the process environment.
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"IDP_URL=https://from-file.example.com\nIDP_ANON_KEY=file-key\nRATE_LOGIN_LIMIT=7\n",
	), 0o600))

	// Variables already in the environment win over the file.
	t.Setenv("RATE_LOGIN_LIMIT", "9")
	t.Setenv("IDP_URL", "")
	t.Setenv("IDP_ANON_KEY", "")
	require.NoError(t, os.Unsetenv("IDP_URL"))
	require.NoError(t, os.Unsetenv("IDP_ANON_KEY"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://from-file.example.com", cfg.IdP.URL)
	assert.Equal(t, "file-key", cfg.IdP.AnonKey)
	assert.Equal(t, 9, cfg.Rate.LoginLimit)
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	t.Setenv("IDP_URL", "https://idp.example.com")
	t.Setenv("IDP_ANON_KEY", "anon")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, "https://idp.example.com", cfg.IdP.URL)
}

func TestConfig_StringRedactsSecrets(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFrom(withVars(map[string]string{"IDP_SERVICE_KEY": "super-secret"}))
	require.NoError(t, err)

	s := cfg.String()
	assert.NotContains(t, s, "super-secret")
	assert.NotContains(t, s, "anon-key")
	assert.Contains(t, s, "[redacted]")
}
