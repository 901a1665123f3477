package locker

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLockKey = "attendance:2:2024-03-04"

func newRedisPair(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *RedisLocker, *RedisLocker) {
	t.Helper()

	mr := miniredis.RunT(t)
	newClient := func() *redis.Client {
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		return client
	}
	return mr, NewRedisLocker(newClient(), ttl, nil), NewRedisLocker(newClient(), ttl, nil)
}

func TestRedisLocker_SecondHolderTimesOut(t *testing.T) {
	mr, first, second := newRedisPair(t, time.Minute)

	unlock, err := first.Lock(context.Background(), testLockKey)
	require.NoError(t, err)
	defer unlock()
	assert.True(t, mr.Exists("lock:"+testLockKey))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = second.Lock(ctx, testLockKey)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRedisLocker_SecondHolderWaitsForRelease(t *testing.T) {
	mr, first, second := newRedisPair(t, time.Minute)

	unlock, err := first.Lock(context.Background(), testLockKey)
	require.NoError(t, err)

	acquired := make(chan func(), 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		next, err := second.Lock(ctx, testLockKey)
		if !assert.NoError(t, err) {
			close(acquired)
			return
		}
		acquired <- next
	}()

	select {
	case <-acquired:
		t.Fatal("second locker acquired a held key")
	case <-time.After(100 * time.Millisecond):
	}

	unlock()

	select {
	case next, ok := <-acquired:
		require.True(t, ok)
		assert.True(t, mr.Exists("lock:"+testLockKey))
		next()
		assert.False(t, mr.Exists("lock:"+testLockKey))
	case <-time.After(2 * time.Second):
		t.Fatal("second locker never acquired the released key")
	}
}

func TestRedisLocker_StaleReleaseKeepsNewHolder(t *testing.T) {
	mr, first, second := newRedisPair(t, time.Second)
	ctx := context.Background()

	staleUnlock, err := first.Lock(ctx, testLockKey)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)
	require.False(t, mr.Exists("lock:"+testLockKey))

	unlock, err := second.Lock(ctx, testLockKey)
	require.NoError(t, err)
	owner, err := mr.Get("lock:" + testLockKey)
	require.NoError(t, err)

	staleUnlock()
	got, err := mr.Get("lock:" + testLockKey)
	require.NoError(t, err)
	assert.Equal(t, owner, got)

	unlock()
	assert.False(t, mr.Exists("lock:"+testLockKey))
}

func TestRedisLocker_ReleaseIsIdempotent(t *testing.T) {
	mr, first, second := newRedisPair(t, time.Minute)
	ctx := context.Background()

	unlock, err := first.Lock(ctx, testLockKey)
	require.NoError(t, err)
	unlock()

	next, err := second.Lock(ctx, testLockKey)
	require.NoError(t, err)
	defer next()

	unlock()
	assert.True(t, mr.Exists("lock:"+testLockKey))
}

func TestRedisLocker_KeysAreIndependent(t *testing.T) {
	_, first, second := newRedisPair(t, time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	a, err := first.Lock(ctx, "attendance:2:2024-03-04")
	require.NoError(t, err)
	defer a()
	b, err := second.Lock(ctx, "attendance:2:2024-03-05")
	require.NoError(t, err)
	defer b()
}

func TestRedisLocker_RequiresClient(t *testing.T) {
	_, err := NewRedisLocker(nil, time.Second, nil).Lock(context.Background(), testLockKey)
	assert.Error(t, err)
}
