package jwks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/jamesprial/authgate/internal/auth/authcore"
	"github.com/jamesprial/authgate/internal/auth/autherr"
)

// Defaults for the key cache.
const (
	DefaultTTL          = 300 * time.Second
	DefaultFetchTimeout = 3 * time.Second
)

// KeyFetcher loads the current keys from the identity provider.
type KeyFetcher interface {
	Fetch(ctx context.Context) ([]authcore.PublicKey, error)
}

// Options configures a Cache. Zero values take the defaults.
type Options struct {
	TTL          time.Duration
	FetchTimeout time.Duration
	Clock        clockwork.Clock
	Logger       *zap.Logger
	Observer     authcore.Observer
}

// Cache serves the provider's key set, refetching once it has expired.
// Concurrent callers that find the same stale set share a single fetch.
// A failed fetch leaves the previous set in place but an expired set is
// never returned.
type Cache struct {
	fetcher KeyFetcher
	ttl     time.Duration
	timeout time.Duration
	clock   clockwork.Clock
	logger  *zap.Logger
	obs     authcore.Observer

	mu      sync.RWMutex
	current *authcore.KeySet

	group singleflight.Group
}

// NewCache creates a key cache backed by fetcher.
func NewCache(fetcher KeyFetcher, opts Options) *Cache {
	if fetcher == nil {
		panic("jwks: fetcher cannot be nil")
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Observer == nil {
		opts.Observer = authcore.NopObserver{}
	}
	return &Cache{
		fetcher: fetcher,
		ttl:     opts.TTL,
		timeout: opts.FetchTimeout,
		clock:   opts.Clock,
		logger:  opts.Logger,
		obs:     opts.Observer,
	}
}

// Keys returns the cached set while it is fresh and fetches otherwise.
func (c *Cache) Keys(ctx context.Context) (*authcore.KeySet, error) {
	if set := c.Snapshot(); set.Fresh(c.clock.Now()) {
		return set, nil
	}
	return c.load(ctx, "stale")
}

// Refresh fetches regardless of the cached set's age. Calls that overlap
// an in-flight refresh share its result.
func (c *Cache) Refresh(ctx context.Context) (*authcore.KeySet, error) {
	return c.load(ctx, "forced")
}

// Snapshot returns the cached set without fetching. It may be nil or expired.
func (c *Cache) Snapshot() *authcore.KeySet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

func (c *Cache) load(ctx context.Context, mode string) (*authcore.KeySet, error) {
	ch := c.group.DoChan(mode, func() (interface{}, error) {
		// A stale caller may arrive just after another flight stored a
		// fresh set; reuse it instead of fetching again.
		if mode == "stale" {
			if set := c.Snapshot(); set.Fresh(c.clock.Now()) {
				return set, nil
			}
		}
		return c.fetch(ctx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*authcore.KeySet), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) fetch(ctx context.Context) (*authcore.KeySet, error) {
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	start := c.clock.Now()
	keys, err := c.fetcher.Fetch(fetchCtx)
	elapsed := c.clock.Since(start)
	if err != nil {
		if !errors.Is(err, autherr.ErrUpstreamUnavailable) {
			err = autherr.NewUpstreamUnavailableError("Refresh", "", err)
		}
		c.obs.KeysFetched(0, elapsed, err)
		c.logger.Warn("jwks refresh failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		return nil, err
	}

	now := c.clock.Now()
	set := authcore.NewKeySet(keys, now, now.Add(c.ttl))

	c.mu.Lock()
	c.current = set
	c.mu.Unlock()

	c.obs.KeysFetched(set.Len(), elapsed, nil)
	c.logger.Debug("jwks refreshed", zap.Int("keys", set.Len()), zap.Time("expires_at", set.ExpiresAt))
	return set, nil
}
