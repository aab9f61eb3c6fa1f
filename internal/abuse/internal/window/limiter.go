// Package window implements an in-memory sliding-window attempt limiter.
package window

import (
	"context"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/jonboulle/clockwork"

	"github.com/jamesprial/authgate/internal/abuse/abuseerr"
)

const shardCount = 32

// bucket holds the attempt times for one key, oldest first.
type bucket struct {
	hits   []time.Time
	window time.Duration
}

// prune drops attempts at or before cutoff.
func (b *bucket) prune(cutoff time.Time) {
	i := 0
	for i < len(b.hits) && !b.hits[i].After(cutoff) {
		i++
	}
	if i > 0 {
		b.hits = append(b.hits[:0], b.hits[i:]...)
	}
}

type shard struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

// Limiter counts attempts per key over a trailing window. Keys are spread
// over fixed shards so unrelated keys rarely contend.
type Limiter struct {
	shards [shardCount]*shard
	clock  clockwork.Clock
}

// New creates a Limiter. A nil clock means the wall clock.
func New(clock clockwork.Clock) *Limiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	l := &Limiter{clock: clock}
	for i := range l.shards {
		l.shards[i] = &shard{buckets: make(map[string]*bucket)}
	}
	return l
}

func (l *Limiter) shardFor(key string) *shard {
	return l.shards[xxhash.Sum64String(key)%shardCount]
}

// CheckAndRecord admits the attempt and records it when fewer than limit
// attempts fall inside the window; otherwise it returns a rate-limited
// error carrying the time until the oldest attempt leaves the window.
// Refused attempts are not recorded. A non-positive limit or window
// disables limiting for the call.
func (l *Limiter) CheckAndRecord(_ context.Context, key string, limit int, window time.Duration) error {
	if limit <= 0 || window <= 0 {
		return nil
	}

	now := l.clock.Now()
	s := l.shardFor(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{}
		s.buckets[key] = b
	}
	b.window = window
	b.prune(now.Add(-window))

	if len(b.hits) >= limit {
		retryAfter := b.hits[0].Add(window).Sub(now)
		return abuseerr.NewRateLimitedError("CheckAndRecord", key, retryAfter)
	}

	b.hits = append(b.hits, now)
	return nil
}

// Count returns the attempts currently inside key's window.
func (l *Limiter) Count(key string) int {
	now := l.clock.Now()
	s := l.shardFor(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[key]
	if !ok {
		return 0
	}
	b.prune(now.Add(-b.window))
	return len(b.hits)
}

// Sweep removes buckets with no attempts left in their window and returns
// how many were removed.
func (l *Limiter) Sweep() int {
	now := l.clock.Now()
	removed := 0
	for _, s := range l.shards {
		s.mu.Lock()
		for key, b := range s.buckets {
			b.prune(now.Add(-b.window))
			if len(b.hits) == 0 {
				delete(s.buckets, key)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	n := 0
	for _, s := range l.shards {
		s.mu.Lock()
		n += len(s.buckets)
		s.mu.Unlock()
	}
	return n
}
