package abuse

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jamesprial/authgate/internal/abuse/internal/lockout"
	"github.com/jamesprial/authgate/internal/abuse/internal/redisstore"
	"github.com/jamesprial/authgate/internal/abuse/internal/sweep"
	"github.com/jamesprial/authgate/internal/abuse/internal/window"
)

// Limiter backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds the configuration needed to construct abuse guards.
type Config struct {
	// Backend selects the limiter store: BackendMemory or BackendRedis.
	Backend string

	// Redis is required for BackendRedis.
	Redis redis.Scripter

	// RedisPrefix namespaces limiter keys in Redis.
	RedisPrefix string

	// LockoutThreshold, LockoutWindow and LockoutDuration configure the
	// tracker; zero values take the lockout defaults (5, 15m, 300s).
	LockoutThreshold int
	LockoutWindow    time.Duration
	LockoutDuration  time.Duration

	// SweepInterval is how often idle in-memory state is evicted.
	SweepInterval time.Duration

	Clock  clockwork.Clock
	Logger *zap.Logger
}

// Sweeper evicts idle in-memory state on a schedule.
type Sweeper = sweep.Sweeper

// Services bundles the abuse guards.
type Services struct {
	Limiter Limiter
	Lockout LockoutTracker
	Sweeper *Sweeper
}

// NewLimiter creates the configured limiter. The second return is non-nil
// when the limiter keeps in-process state that needs sweeping.
func NewLimiter(cfg *Config) (Limiter, sweep.Sweepable, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("abuse config cannot be nil")
	}
	switch cfg.Backend {
	case "", BackendMemory:
		l := window.New(cfg.Clock)
		return l, l, nil
	case BackendRedis:
		if cfg.Redis == nil {
			return nil, nil, fmt.Errorf("redis backend requires a redis client")
		}
		return redisstore.New(cfg.Redis, cfg.RedisPrefix, cfg.Clock), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown limiter backend %q", cfg.Backend)
	}
}

// NewLockoutTracker creates the in-memory lockout tracker.
func NewLockoutTracker(cfg *Config) *lockout.Tracker {
	return lockout.New(lockout.Options{
		Threshold: cfg.LockoutThreshold,
		Window:    cfg.LockoutWindow,
		Duration:  cfg.LockoutDuration,
		Clock:     cfg.Clock,
	})
}

// NewAbuseServices creates the limiter, lockout tracker and a sweeper over
// their in-memory state. The sweeper is not started.
func NewAbuseServices(cfg *Config) (*Services, error) {
	limiter, sweepable, err := NewLimiter(cfg)
	if err != nil {
		return nil, err
	}
	tracker := NewLockoutTracker(cfg)

	targets := []sweep.Target{{Name: "lockout", Store: tracker}}
	if sweepable != nil {
		targets = append(targets, sweep.Target{Name: "limiter", Store: sweepable})
	}

	interval := cfg.SweepInterval
	if interval <= 0 {
		interval = time.Minute
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sweeper, err := sweep.New(interval, logger.Named("sweep"), targets...)
	if err != nil {
		return nil, err
	}

	return &Services{Limiter: limiter, Lockout: tracker, Sweeper: sweeper}, nil
}
