// Package ratelimit provides a Redis-backed fixed-window rate limiter for
// abuse-prone public endpoints.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter enforces a per-key request budget within a rolling fixed
// window. Check-and-increment runs as one Lua script so concurrent
// requests cannot race past the limit.
type Limiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	script *redis.Script
}

// fixedWindowScript atomically increments the counter and reports whether
// the request is still within budget. The TTL is set when the key is
// created, so the window starts at the first request.
const fixedWindowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
    redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
if current > tonumber(ARGV[1]) then
    return 0
end
return 1
`

// New creates a limiter allowing limit requests per window per key.
func New(client *redis.Client, limit int, window time.Duration) *Limiter {
	return &Limiter{
		client: client,
		limit:  limit,
		window: window,
		script: redis.NewScript(fixedWindowScript),
	}
}

// Allow reports whether the caller identified by key may proceed. A Redis
// failure is returned as an error so the caller can decide whether to
// fail open or closed.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	res, err := l.script.Run(ctx, l.client,
		[]string{"ratelimit:" + key},
		l.limit, l.window.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit check: %w", err)
	}
	return res == 1, nil
}
