// Package runlock keeps two scheduled sync runs for the same selection from
// overlapping. The lock is a Redis key written with SET NX PX and released
// only by the holder that wrote it.
package runlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLocked is returned by Acquire when another holder owns the key
var ErrLocked = errors.New("lock is held by another run")

// Release gives up a lock obtained from Acquire
type Release func(ctx context.Context) error

// Locker acquires named, expiring locks
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Release, error)
	Close() error
}

// releaseScript deletes the key only when it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker on a single Redis instance
type RedisLocker struct {
	client *redis.Client
	prefix string
}

// New returns a RedisLocker for redisURL, or a no-op Locker when redisURL is empty
func New(redisURL string) (Locker, error) {
	if redisURL == "" {
		return Noop{}, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	return NewRedisLocker(redis.NewClient(opts)), nil
}

// NewRedisLocker wraps an existing client
func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client, prefix: "ytagg:lock:"}
}

// Acquire sets key if absent. It returns ErrLocked when the key already exists.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Release, error) {
	fullKey := l.prefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", fullKey, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", fullKey, ErrLocked)
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{fullKey}, token).Err(); err != nil {
			return fmt.Errorf("failed to release lock %s: %w", fullKey, err)
		}
		return nil
	}
	return release, nil
}

// Close closes the underlying client
func (l *RedisLocker) Close() error {
	return l.client.Close()
}

// Noop is a Locker that always succeeds
type Noop struct{}

func (Noop) Acquire(context.Context, string, time.Duration) (Release, error) {
	return func(context.Context) error { return nil }, nil
}

func (Noop) Close() error { return nil }
