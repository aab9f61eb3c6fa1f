package authgate

import (
	"strings"
	"testing"
	"time"
)

func TestTokenDefaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "BearerScheme", got: BearerScheme, want: "Bearer"},
		{name: "DefaultAudience", got: DefaultAudience, want: "authenticated"},
		{name: "DefaultAlgorithm", got: DefaultAlgorithm, want: "ES256"},
		{name: "DefaultAccessTokenCookie", got: DefaultAccessTokenCookie, want: "access_token"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.got != tt.want {
				t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestDefaultCookieMaxAge(t *testing.T) {
	t.Parallel()

	if DefaultCookieMaxAge != 168*time.Hour {
		t.Errorf("DefaultCookieMaxAge = %v, want 168h", DefaultCookieMaxAge)
	}
}

func TestJWKSPath(t *testing.T) {
	t.Parallel()

	if !strings.HasPrefix(JWKSPath, "/") {
		t.Errorf("JWKSPath %q must be absolute", JWKSPath)
	}
	if !strings.HasSuffix(JWKSPath, "jwks.json") {
		t.Errorf("JWKSPath %q must point at the key set document", JWKSPath)
	}
}

func TestActionsAreDistinct(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for _, a := range []string{ActionLogin, ActionRegister, ActionReset, ActionInvite} {
		if a == "" || strings.Contains(a, ":") {
			t.Errorf("action %q must be non-empty and colon free", a)
		}
		if seen[a] {
			t.Errorf("action %q is duplicated", a)
		}
		seen[a] = true
	}
}
