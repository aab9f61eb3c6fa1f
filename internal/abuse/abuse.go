// Package abuse guards credential endpoints with per-key sliding-window
// rate limits and per-identity lockout after repeated failures.
package abuse

import (
	"context"
	"strings"
	"time"

	"github.com/jamesprial/authgate/pkg/authgate"
)

// Limiter is a sliding-window attempt limiter.
type Limiter interface {
	// CheckAndRecord admits and records the attempt if fewer than limit
	// attempts for key fall inside window, and returns ErrRateLimited
	// otherwise. Refused attempts are not recorded. The operation is
	// atomic per key.
	CheckAndRecord(ctx context.Context, key string, limit int, window time.Duration) error
}

// LockoutTracker counts failed credential checks per identity key.
type LockoutTracker interface {
	// Check returns ErrLockedOut while key is locked.
	Check(key string) error

	// RecordFailure counts a failure and reports whether it locked key.
	RecordFailure(key string) bool

	// RecordSuccess clears failures and any lock for key.
	RecordSuccess(key string)
}

// Policy is a limit over a trailing window.
type Policy struct {
	Limit  int
	Window time.Duration
}

// Allow applies p to key on l.
func (p Policy) Allow(ctx context.Context, l Limiter, key string) error {
	return l.CheckAndRecord(ctx, key, p.Limit, p.Window)
}

// Key composes a limiter key from an action and an identity, such as
// "login:203.0.113.7" or "invite:<user id>".
func Key(action, identity string) string {
	return action + ":" + identity
}

// LoginKey is the limiter key for login attempts from ip.
func LoginKey(ip string) string {
	return Key(authgate.ActionLogin, ip)
}

// IdentityKey is the lockout key for an email attempted from ip. The
// email is trimmed and lower-cased.
func IdentityKey(email, ip string) string {
	return strings.ToLower(strings.TrimSpace(email)) + "|" + ip
}
