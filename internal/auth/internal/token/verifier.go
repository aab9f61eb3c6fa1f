// Package token verifies identity provider access tokens.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jamesprial/authgate/internal/auth/authcore"
	"github.com/jamesprial/authgate/internal/auth/autherr"
)

var tracer = otel.Tracer("github.com/jamesprial/authgate/internal/auth/token")

// SupportedAlgorithms are the asymmetric algorithms a verifier may be
// configured to accept. HMAC and "none" are never accepted.
var SupportedAlgorithms = map[string]bool{
	"ES256": true,
	"ES384": true,
	"ES512": true,
	"RS256": true,
	"RS384": true,
	"RS512": true,
	"PS256": true,
	"PS384": true,
	"PS512": true,
	"EdDSA": true,
}

// Options configures a Verifier.
type Options struct {
	// Audience is the required aud value.
	Audience string

	// Algorithms is the allow-list; empty means ES256 only.
	Algorithms []string

	// Leeway is subtracted from the current time when checking exp.
	Leeway time.Duration

	// RetryUnknownKey forces one key set refresh when a kid is not found.
	RetryUnknownKey bool

	Clock    clockwork.Clock
	Observer authcore.Observer
}

// Verifier validates signed access tokens against a KeySource.
type Verifier struct {
	keys       authcore.KeySource
	audience   string
	algorithms []string
	allowed    map[string]bool
	leeway     time.Duration
	retry      bool
	clock      clockwork.Clock
	obs        authcore.Observer
}

// NewVerifier creates a verifier. It panics if keys is nil or an
// algorithm outside SupportedAlgorithms is requested.
func NewVerifier(keys authcore.KeySource, opts Options) *Verifier {
	if keys == nil {
		panic("token: key source cannot be nil")
	}
	if len(opts.Algorithms) == 0 {
		opts.Algorithms = []string{"ES256"}
	}
	allowed := make(map[string]bool, len(opts.Algorithms))
	for _, alg := range opts.Algorithms {
		if !SupportedAlgorithms[alg] {
			panic(fmt.Sprintf("token: unsupported algorithm %q", alg))
		}
		allowed[alg] = true
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Observer == nil {
		opts.Observer = authcore.NopObserver{}
	}
	return &Verifier{
		keys:       keys,
		audience:   opts.Audience,
		algorithms: opts.Algorithms,
		allowed:    allowed,
		leeway:     opts.Leeway,
		retry:      opts.RetryUnknownKey,
		clock:      opts.Clock,
		obs:        opts.Observer,
	}
}

// Verify checks tokenString and returns its claims.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*authcore.Claims, error) {
	ctx, span := tracer.Start(ctx, "token.Verify")
	defer span.End()

	claims, err := v.verify(ctx, tokenString)
	v.obs.TokenVerified(err)
	if err != nil {
		span.SetAttributes(attribute.String("auth.reason", autherr.Reason(err)))
		span.SetStatus(codes.Error, autherr.Reason(err))
		return nil, err
	}
	return claims, nil
}

func (v *Verifier) verify(ctx context.Context, tokenString string) (*authcore.Claims, error) {
	kid, err := keyID(tokenString)
	if err != nil {
		return nil, err
	}

	key, err := v.lookup(ctx, kid)
	if err != nil {
		return nil, err
	}

	registered := &jwt.RegisteredClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods(v.algorithms),
		jwt.WithoutClaimsValidation(),
	)
	_, err = parser.ParseWithClaims(tokenString, registered, func(t *jwt.Token) (any, error) {
		alg := t.Method.Alg()
		if !v.allowed[alg] {
			return nil, fmt.Errorf("algorithm %q not allowed", alg)
		}
		if key.Algorithm != "" && key.Algorithm != alg {
			return nil, fmt.Errorf("key %q is for %s, token uses %s", kid, key.Algorithm, alg)
		}
		return key.Key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, autherr.NewMalformedTokenError("Verify", err)
		}
		return nil, autherr.NewInvalidSignatureError("Verify", err)
	}

	if !containsAudience(registered.Audience, v.audience) {
		return nil, autherr.NewInvalidAudienceError("Verify", v.audience, registered.Audience)
	}

	if registered.ExpiresAt == nil {
		return nil, autherr.NewMalformedTokenError("Verify", errors.New("missing exp claim"))
	}
	now := v.clock.Now()
	if now.After(registered.ExpiresAt.Add(v.leeway)) {
		return nil, autherr.NewExpiredTokenError("Verify",
			fmt.Errorf("expired at %s", registered.ExpiresAt.UTC().Format(time.RFC3339)))
	}

	if registered.Subject == "" {
		return nil, autherr.NewMalformedTokenError("Verify", errors.New("missing sub claim"))
	}

	return &authcore.Claims{
		Subject:   registered.Subject,
		Audience:  registered.Audience,
		ExpiresAt: registered.ExpiresAt.Time,
		KeyID:     kid,
	}, nil
}

// lookup resolves kid against the current key set, optionally refreshing
// once when the kid is unknown.
func (v *Verifier) lookup(ctx context.Context, kid string) (authcore.PublicKey, error) {
	set, err := v.keys.Keys(ctx)
	if err != nil {
		return authcore.PublicKey{}, err
	}
	if key, ok := set.Lookup(kid); ok {
		return key, nil
	}
	if !v.retry {
		return authcore.PublicKey{}, autherr.NewUnknownSigningKeyError("Verify", kid)
	}

	set, err = v.keys.Refresh(ctx)
	if err != nil {
		return authcore.PublicKey{}, err
	}
	if key, ok := set.Lookup(kid); ok {
		return key, nil
	}
	return authcore.PublicKey{}, autherr.NewUnknownSigningKeyError("Verify", kid)
}

// keyID reads kid from the unverified header.
func keyID(tokenString string) (string, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return "", autherr.NewMalformedTokenError("Verify", err)
	}
	kid, ok := token.Header["kid"].(string)
	if !ok || kid == "" {
		return "", autherr.NewMalformedTokenError("Verify", errors.New("missing kid in token header"))
	}
	return kid, nil
}

func containsAudience(audiences []string, want string) bool {
	for _, aud := range audiences {
		if aud == want {
			return true
		}
	}
	return false
}
