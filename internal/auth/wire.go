package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/jamesprial/authgate/internal/auth/internal/credential"
	"github.com/jamesprial/authgate/internal/auth/internal/jwks"
	"github.com/jamesprial/authgate/internal/auth/internal/token"
	"github.com/jamesprial/authgate/pkg/authgate"
)

// Config holds the configuration needed to construct auth services.
type Config struct {
	// IdentityURL is the identity provider base URL; the key set is read
	// from IdentityURL + authgate.JWKSPath unless JWKSURL is set.
	IdentityURL string

	// JWKSURL overrides the derived key set location.
	JWKSURL string

	// KeyTTL is how long a fetched key set is served. Zero means 300s.
	KeyTTL time.Duration

	// FetchTimeout bounds a single key set fetch. Zero means 3s.
	FetchTimeout time.Duration

	// RetryUnknownKey forces one refresh when a token's kid is unknown.
	RetryUnknownKey bool

	// Audience is the required aud claim. Empty means "authenticated".
	Audience string

	// Algorithms is the signing algorithm allow-list. Empty means ES256.
	Algorithms []string

	// Leeway is the tolerance applied to exp.
	Leeway time.Duration

	// CookieName is the fallback credential cookie. Empty means "access_token".
	CookieName string

	// HTTPClient is used for key set fetches. Nil means a default client.
	HTTPClient *http.Client

	Clock    clockwork.Clock
	Logger   *zap.Logger
	Observer Observer
}

// KeySetURL returns the key set location for cfg.
func (c *Config) KeySetURL() string {
	if c.JWKSURL != "" {
		return c.JWKSURL
	}
	return strings.TrimRight(c.IdentityURL, "/") + authgate.JWKSPath
}

func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("auth config cannot be nil")
	}
	if c.IdentityURL == "" && c.JWKSURL == "" {
		return fmt.Errorf("identity URL or JWKS URL is required")
	}
	for _, alg := range c.Algorithms {
		if !IsSupportedAlgorithm(alg) {
			return fmt.Errorf("unsupported signing algorithm %q", alg)
		}
	}
	return nil
}

// IsSupportedAlgorithm reports whether alg may appear in Config.Algorithms.
func IsSupportedAlgorithm(alg string) bool {
	return token.SupportedAlgorithms[alg]
}

// NewKeySource creates the cached key source for cfg.
func NewKeySource(cfg *Config) (KeySource, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	url := cfg.KeySetURL()
	cache := jwks.NewCache(jwks.NewFetcher(url, cfg.HTTPClient), jwks.Options{
		TTL:          cfg.KeyTTL,
		FetchTimeout: cfg.FetchTimeout,
		Clock:        cfg.Clock,
		Logger:       logger.With(zap.String("jwks_url", url)),
		Observer:     cfg.Observer,
	})
	return cache, nil
}

// NewTokenVerifier creates a verifier reading keys from source.
func NewTokenVerifier(cfg *Config, source KeySource) (TokenVerifier, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, fmt.Errorf("key source cannot be nil")
	}
	audience := cfg.Audience
	if audience == "" {
		audience = authgate.DefaultAudience
	}
	return token.NewVerifier(source, token.Options{
		Audience:        audience,
		Algorithms:      cfg.Algorithms,
		Leeway:          cfg.Leeway,
		RetryUnknownKey: cfg.RetryUnknownKey,
		Clock:           cfg.Clock,
		Observer:        cfg.Observer,
	}), nil
}

// NewAuthenticator creates a request authenticator on top of verifier.
func NewAuthenticator(cfg *Config, verifier TokenVerifier) (Authenticator, error) {
	if verifier == nil {
		return nil, fmt.Errorf("token verifier cannot be nil")
	}
	cookie := authgate.DefaultAccessTokenCookie
	if cfg != nil && cfg.CookieName != "" {
		cookie = cfg.CookieName
	}
	return credential.NewAuthenticator(verifier, cookie), nil
}

// ExtractToken returns the request's raw access token without verifying it.
func ExtractToken(r *http.Request, cookieName string) (string, bool) {
	return credential.Extract(r, cookieName)
}

// NewAuthServices creates the key source, verifier and authenticator.
func NewAuthServices(cfg *Config) (KeySource, TokenVerifier, Authenticator, error) {
	source, err := NewKeySource(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("key source: %w", err)
	}
	verifier, err := NewTokenVerifier(cfg, source)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("token verifier: %w", err)
	}
	authenticator, err := NewAuthenticator(cfg, verifier)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("authenticator: %w", err)
	}
	return source, verifier, authenticator, nil
}
