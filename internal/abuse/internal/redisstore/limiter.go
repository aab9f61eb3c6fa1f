// Package redisstore implements the sliding-window limiter on Redis sorted
// sets so several authgate instances share one view of each key.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"

	"github.com/jamesprial/authgate/internal/abuse/abuseerr"
)

// DefaultPrefix namespaces limiter keys.
const DefaultPrefix = "authgate:rl:"

// slidingWindow prunes, counts and conditionally records in one round trip.
// Scores are unix milliseconds. Returns {1, 0} when admitted and
// {0, oldestScore} when refused.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count >= limit then
  local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  return {0, tonumber(oldest[2])}
end
redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, 0}
`)

// Limiter is a Redis-backed sliding-window limiter.
type Limiter struct {
	client redis.Scripter
	prefix string
	clock  clockwork.Clock
}

// New creates a Limiter. An empty prefix means DefaultPrefix.
func New(client redis.Scripter, prefix string, clock clockwork.Clock) *Limiter {
	if client == nil {
		panic("redisstore: client cannot be nil")
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Limiter{client: client, prefix: prefix, clock: clock}
}

// CheckAndRecord behaves like the in-memory limiter; the script makes the
// prune, count and append atomic on the server.
func (l *Limiter) CheckAndRecord(ctx context.Context, key string, limit int, window time.Duration) error {
	if limit <= 0 || window <= 0 {
		return nil
	}

	now := l.clock.Now()
	nowMs := now.UnixMilli()
	windowMs := window.Milliseconds()
	if windowMs < 1 {
		windowMs = 1
	}
	member := fmt.Sprintf("%d-%s", nowMs, uuid.NewString())

	res, err := slidingWindow.Run(ctx, l.client, []string{l.prefix + key}, nowMs, windowMs, limit, member).Int64Slice()
	if err != nil {
		return abuseerr.NewBackendError("CheckAndRecord", key, err)
	}
	if len(res) != 2 {
		return abuseerr.NewBackendError("CheckAndRecord", key, fmt.Errorf("unexpected script reply %v", res))
	}
	if res[0] == 1 {
		return nil
	}

	retryAfter := time.Duration(res[1]+windowMs-nowMs) * time.Millisecond
	return abuseerr.NewRateLimitedError("CheckAndRecord", key, retryAfter)
}
