package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisLocker_LockAndRelease(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	l := NewRedisLocker(rdb, "test:lock", time.Second, 200*time.Millisecond)

	unlock, err := l.Lock(context.Background())
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock"))

	unlock()
	unlock()
	assert.False(t, mr.Exists("test:lock"))
}

func TestRedisLocker_SecondLockerWaitsThenFails(t *testing.T) {
	_, rdb := setupTestRedis(t)
	a := NewRedisLocker(rdb, "test:lock", 5*time.Second, 100*time.Millisecond)
	b := NewRedisLocker(rdb, "test:lock", 5*time.Second, 100*time.Millisecond)

	unlock, err := a.Lock(context.Background())
	require.NoError(t, err)
	defer unlock()

	_, err = b.Lock(context.Background())
	assert.ErrorIs(t, err, ErrNotAcquired)
}

func TestRedisLocker_ReleaseDoesNotStealForeignLease(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	l := NewRedisLocker(rdb, "test:lock", time.Second, 100*time.Millisecond)

	unlock, err := l.Lock(context.Background())
	require.NoError(t, err)

	// lease expired and another instance took over
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set("test:lock", "someone-else"))

	unlock()
	got, err := mr.Get("test:lock")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestRedisLocker_MutualExclusion(t *testing.T) {
	_, rdb := setupTestRedis(t)
	l := NewRedisLocker(rdb, "test:lock", 5*time.Second, 5*time.Second)

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background())
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside)
}
