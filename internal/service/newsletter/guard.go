package newsletter

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// dispatchLockKey is shared by every process of the service; holding it
// means a dispatch run is in flight somewhere.
const dispatchLockKey = "newsletter:dispatch:lock"

// RedisGuard serializes dispatch runs via Redis SET NX with a TTL. A
// random ownership value plus a Lua release script prevents one process
// from releasing a lock held by another after its own TTL expired.
type RedisGuard struct {
	client *redis.Client
	value  string
	ttl    time.Duration
}

// NewRedisGuard creates a dispatch guard. ttl should comfortably exceed
// the longest expected dispatch run; an expired lock self-heals.
func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	b := make([]byte, 16)
	rand.Read(b)
	return &RedisGuard{
		client: client,
		value:  hex.EncodeToString(b),
		ttl:    ttl,
	}
}

// Acquire tries to take the dispatch lock. Returns false when another run
// holds it.
func (g *RedisGuard) Acquire(ctx context.Context) (bool, error) {
	ok, err := g.client.SetNX(ctx, dispatchLockKey, g.value, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire dispatch lock: %w", err)
	}
	return ok, nil
}

// Release drops the lock only if this guard still owns it.
func (g *RedisGuard) Release(ctx context.Context) error {
	script := redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`)
	_, err := script.Run(ctx, g.client, []string{dispatchLockKey}, g.value).Result()
	return err
}
