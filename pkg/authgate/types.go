// Package authgate provides the wire-level constants shared by authgate
// and its clients.
package authgate

import "time"

// Token constants.
const (
	// BearerScheme is the Authorization scheme accepted for access tokens (RFC 6750).
	BearerScheme = "Bearer"

	// DefaultAudience is the audience the identity provider stamps on user tokens.
	DefaultAudience = "authenticated"

	// DefaultAlgorithm is the only signing algorithm accepted unless configured otherwise.
	DefaultAlgorithm = "ES256"

	// DefaultAccessTokenCookie is the cookie carrying the access token for browser clients.
	DefaultAccessTokenCookie = "access_token"

	// DefaultCookieMaxAge is the lifetime of the access token cookie.
	DefaultCookieMaxAge = 7 * 24 * time.Hour

	// JWKSPath is the identity provider's key set path, relative to its base URL.
	JWKSPath = "/auth/v1/.well-known/jwks.json"
)

// Abuse-guard actions. Limiter keys are "<action>:<identity>".
const (
	ActionLogin    = "login"
	ActionRegister = "register"
	ActionReset    = "reset"
	ActionInvite   = "invite"
)

// HTTP header names.
const (
	// HeaderAuthorization is the Authorization HTTP header name.
	HeaderAuthorization = "Authorization"

	// HeaderWWWAuthenticate is the WWW-Authenticate HTTP header name.
	HeaderWWWAuthenticate = "WWW-Authenticate"

	// HeaderContentType is the Content-Type HTTP header name.
	HeaderContentType = "Content-Type"

	// HeaderRetryAfter is the Retry-After HTTP header name.
	HeaderRetryAfter = "Retry-After"

	// HeaderRequestID carries the request correlation id.
	HeaderRequestID = "X-Request-ID"

	// HeaderForwardedFor is consulted for the client address when proxy headers are trusted.
	HeaderForwardedFor = "X-Forwarded-For"

	// HeaderRealIP is the single-address alternative to X-Forwarded-For.
	HeaderRealIP = "X-Real-IP"
)

// Content type constants.
const (
	// ContentTypeJSON is the application/json content type.
	ContentTypeJSON = "application/json"
)
