package redislock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocker(t *testing.T, ttl time.Duration) (*Locker, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, ttl), s
}

func TestLockIsExclusive(t *testing.T) {
	ctx := context.Background()
	locker, s := newLocker(t, time.Minute)

	held, err := locker.Lock(ctx, "sweep")
	require.NoError(t, err)
	assert.True(t, s.Exists(keyPrefix+"sweep"))

	_, err = locker.Lock(ctx, "sweep")
	assert.ErrorIs(t, err, ErrLocked)

	_, err = locker.Lock(ctx, "other")
	assert.NoError(t, err)

	require.NoError(t, held.Unlock(ctx))
	assert.False(t, s.Exists(keyPrefix+"sweep"))

	again, err := locker.Lock(ctx, "sweep")
	require.NoError(t, err)
	assert.NoError(t, again.Unlock(ctx))
}

func TestLockExpires(t *testing.T) {
	ctx := context.Background()
	locker, s := newLocker(t, time.Second)

	stale, err := locker.Lock(ctx, "sweep")
	require.NoError(t, err)
	s.FastForward(2 * time.Second)

	fresh, err := locker.Lock(ctx, "sweep")
	require.NoError(t, err)

	assert.Error(t, stale.Unlock(ctx), "expired holder must not release the new lock")
	assert.True(t, s.Exists(keyPrefix+"sweep"))
	assert.NoError(t, fresh.Unlock(ctx))
}

func TestNewFromURL(t *testing.T) {
	s := miniredis.RunT(t)

	locker, err := NewFromURL(context.Background(), "redis://"+s.Addr()+"/0", time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = locker.Close() })

	_, err = NewFromURL(context.Background(), "not a url", time.Minute)
	assert.Error(t, err)
}
