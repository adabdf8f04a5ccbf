package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/campushq/campuschat-core/internal/core/ports/driven"
	"github.com/redis/go-redis/v9"
)

// Verify interface compliance
var _ driven.DistributedLock = (*Lock)(nil)

const lockKeyPrefix = "lock:"

// releaseLock deletes the key only when this holder's token is still in
// it, so one replica can never drop a lock another replica took over
// after expiry
var releaseLock = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	end
	return 0
`)

// Lock is a SETNX-based lock keyed by name. Each instance holds a random
// token so releases are owner-checked.
type Lock struct {
	client *redis.Client
	token  string
}

// NewLock creates a Redis-backed lock for this instance
func NewLock(client *redis.Client) *Lock {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return &Lock{client: client, token: hex.EncodeToString(b)}
}

// Acquire takes the named lock for ttl. The TTL bounds how long a
// crashed holder can block other replicas.
func (l *Lock) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, lockKeyPrefix+name, l.token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", name, err)
	}
	return ok, nil
}

// Release drops the named lock if this instance still holds it. Releasing
// a lock that expired or belongs to another holder is a no-op.
func (l *Lock) Release(ctx context.Context, name string) error {
	err := releaseLock.Run(ctx, l.client, []string{lockKeyPrefix + name}, l.token).Err()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("release lock %s: %w", name, err)
	}
	return nil
}
