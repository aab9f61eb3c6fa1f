// Package authcore holds the types shared between internal/auth and its
// internal packages.
package authcore

import (
	"context"
	"crypto"
	"sort"
	"time"
)

// PublicKey is one verification key published by the identity provider.
// Algorithm may be empty when the provider omits "alg".
type PublicKey struct {
	KeyID     string
	Algorithm string
	Key       crypto.PublicKey
}

// KeySet is an immutable snapshot of the provider's keys. A new fetch
// produces a new KeySet; existing snapshots are never mutated.
type KeySet struct {
	keys      map[string]PublicKey
	FetchedAt time.Time
	ExpiresAt time.Time
}

// NewKeySet indexes keys by id. Later duplicates of a kid win.
func NewKeySet(keys []PublicKey, fetchedAt, expiresAt time.Time) *KeySet {
	m := make(map[string]PublicKey, len(keys))
	for _, k := range keys {
		m[k.KeyID] = k
	}
	return &KeySet{keys: m, FetchedAt: fetchedAt, ExpiresAt: expiresAt}
}

// Lookup returns the key for kid.
func (s *KeySet) Lookup(kid string) (PublicKey, bool) {
	if s == nil {
		return PublicKey{}, false
	}
	k, ok := s.keys[kid]
	return k, ok
}

// Fresh reports whether the set may still be served at now.
func (s *KeySet) Fresh(now time.Time) bool {
	return s != nil && now.Before(s.ExpiresAt)
}

// Len returns the number of keys.
func (s *KeySet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Keys returns the keys sorted by id.
func (s *KeySet) Keys() []PublicKey {
	if s == nil {
		return nil
	}
	out := make([]PublicKey, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].KeyID < out[j].KeyID })
	return out
}

// Claims are the verified claims of an access token.
type Claims struct {
	Subject   string
	Audience  []string
	ExpiresAt time.Time
	KeyID     string
}

// KeySource yields the current key set.
type KeySource interface {
	// Keys returns a fresh key set, fetching if the cached one expired.
	Keys(ctx context.Context) (*KeySet, error)

	// Refresh fetches unconditionally.
	Refresh(ctx context.Context) (*KeySet, error)
}

// Observer receives verification and fetch outcomes. Implementations must
// be safe for concurrent use.
type Observer interface {
	KeysFetched(count int, elapsed time.Duration, err error)
	TokenVerified(err error)
}

// NopObserver discards everything.
type NopObserver struct{}

// KeysFetched implements Observer.
func (NopObserver) KeysFetched(int, time.Duration, error) {}

// TokenVerified implements Observer.
func (NopObserver) TokenVerified(error) {}
