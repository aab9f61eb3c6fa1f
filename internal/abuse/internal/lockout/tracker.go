// Package lockout tracks failed credential attempts per identity and locks
// the identity out once a threshold is crossed.
package lockout

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	gocache "github.com/patrickmn/go-cache"

	"github.com/jamesprial/authgate/internal/abuse/abuseerr"
)

// Defaults applied to zero Options fields.
const (
	DefaultThreshold = 5
	DefaultWindow    = 15 * time.Minute
	DefaultDuration  = 300 * time.Second
)

// Options configures a Tracker.
type Options struct {
	// Threshold is the number of failures inside Window that locks the key.
	Threshold int

	// Window is how far back failures are counted.
	Window time.Duration

	// Duration is how long a lock lasts.
	Duration time.Duration

	Clock clockwork.Clock
}

type record struct {
	failures    []time.Time
	lockedUntil time.Time
}

func (r *record) locked(now time.Time) bool {
	return !r.lockedUntil.IsZero() && now.Before(r.lockedUntil)
}

func (r *record) prune(cutoff time.Time) {
	i := 0
	for i < len(r.failures) && !r.failures[i].After(cutoff) {
		i++
	}
	if i > 0 {
		r.failures = append(r.failures[:0], r.failures[i:]...)
	}
}

// Tracker records credential failures. Each operation is atomic; a
// check followed by a record is not, so concurrent attempts for one key
// lock within one extra attempt of the threshold.
type Tracker struct {
	mu        sync.Mutex
	records   *gocache.Cache
	clock     clockwork.Clock
	threshold int
	window    time.Duration
	duration  time.Duration
}

// New creates a Tracker. Expired records are only removed by Sweep.
func New(opts Options) *Tracker {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Tracker{
		records:   gocache.New(gocache.NoExpiration, 0),
		clock:     opts.Clock,
		threshold: opts.Threshold,
		window:    opts.Window,
		duration:  opts.Duration,
	}
}

func (t *Tracker) get(key string) *record {
	v, ok := t.records.Get(key)
	if !ok {
		return nil
	}
	return v.(*record)
}

// store writes rec back with a TTL covering its longest-lived state.
func (t *Tracker) store(key string, rec *record, now time.Time) {
	ttl := t.window
	if rem := rec.lockedUntil.Sub(now); rem > ttl {
		ttl = rem
	}
	t.records.Set(key, rec, ttl)
}

// Check returns a locked-out error while key is locked. An expired lock is
// cleared here.
func (t *Tracker) Check(key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec := t.get(key)
	if rec == nil || rec.lockedUntil.IsZero() {
		return nil
	}

	now := t.clock.Now()
	if rec.locked(now) {
		return abuseerr.NewLockedOutError("Check", key, rec.lockedUntil.Sub(now))
	}

	rec.lockedUntil = time.Time{}
	rec.prune(now.Add(-t.window))
	if len(rec.failures) == 0 {
		t.records.Delete(key)
	} else {
		t.store(key, rec, now)
	}
	return nil
}

// RecordFailure counts a failed attempt and reports whether it locked the
// key. Failures are ignored while a lock is active.
func (t *Tracker) RecordFailure(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	rec := t.get(key)
	if rec == nil {
		rec = &record{}
	}
	if rec.locked(now) {
		return false
	}
	rec.lockedUntil = time.Time{}

	rec.prune(now.Add(-t.window))
	rec.failures = append(rec.failures, now)

	lockedNow := false
	if len(rec.failures) >= t.threshold {
		rec.failures = nil
		rec.lockedUntil = now.Add(t.duration)
		lockedNow = true
	}
	t.store(key, rec, now)
	return lockedNow
}

// RecordSuccess clears failures and any lock for key.
func (t *Tracker) RecordSuccess(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records.Delete(key)
}

// Failures returns the failures currently counted for key.
func (t *Tracker) Failures(key string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec := t.get(key)
	if rec == nil {
		return 0
	}
	now := t.clock.Now()
	cutoff := now.Add(-t.window)
	n := 0
	for _, f := range rec.failures {
		if f.After(cutoff) {
			n++
		}
	}
	return n
}

// Sweep drops records whose TTL has passed and returns how many went.
func (t *Tracker) Sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	before := t.records.ItemCount()
	t.records.DeleteExpired()
	return before - t.records.ItemCount()
}

// Len returns the number of stored records, expired or not.
func (t *Tracker) Len() int {
	return t.records.ItemCount()
}
