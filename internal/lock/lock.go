// Package lock provides short-lived mutual exclusion across service
// instances, backed by Redis.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLocked = errors.New("resource is locked")

// releaseScript deletes the key only if it still holds our token, so an
// expired lock re-acquired by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

// Lock is a held lock. Release is safe to call more than once.
type Lock struct {
	client *redis.Client
	key    string
	token  string
}

// Acquire takes the lock on key for at most ttl. It does not wait: a held
// lock yields ErrLocked immediately.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (*Lock, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, lockKey(key), token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return &Lock{client: l.client, key: lockKey(key), token: token}, nil
}

func (lk *Lock) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, lk.client, []string{lk.key}, lk.token).Err(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

func lockKey(key string) string {
	return "lock:" + key
}
