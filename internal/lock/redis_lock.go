// Package lock provides the cluster-wide mutex that serializes reservation
// mutations when several server instances share one record store.
package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired is returned when the lock could not be taken before the
// wait deadline.
var ErrNotAcquired = errors.New("lock not acquired")

// releaseScript deletes the key only when it still holds our token, so an
// expired lease that was taken over by another instance is left alone.
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// RedisLocker is a single-key lease lock on Redis (SET NX PX + token).
type RedisLocker struct {
	rdb   *redis.Client
	key   string
	ttl   time.Duration
	wait  time.Duration
	retry time.Duration
}

// NewRedisLocker returns a locker on key.  ttl is the lease length and must
// exceed the longest read-decide-write span; wait bounds how long Lock
// retries when the caller's context has no earlier deadline.
func NewRedisLocker(rdb *redis.Client, key string, ttl, wait time.Duration) *RedisLocker {
	if key == "" {
		key = "gear:reservation:lock"
	}
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if wait <= 0 {
		wait = 5 * time.Second
	}
	return &RedisLocker{rdb: rdb, key: key, ttl: ttl, wait: wait, retry: 20 * time.Millisecond}
}

// Lock blocks until the lease is held, ctx is done or the wait budget is
// spent.  The returned func releases the lease; calling it twice is safe.
func (l *RedisLocker) Lock(ctx context.Context) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()
	token := uuid.NewString()
	for {
		ok, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ErrNotAcquired
			}
			return nil, err
		}
		if ok {
			return l.releaser(token), nil
		}
		select {
		case <-ctx.Done():
			return nil, ErrNotAcquired
		case <-time.After(l.retry):
		}
	}
}

func (l *RedisLocker) releaser(token string) func() {
	done := false
	return func() {
		if done {
			return
		}
		done = true
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.rdb, []string{l.key}, token).Err()
	}
}
