package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, NewRedisStore(rdb)
}

func TestRedisStoreGetMissing(t *testing.T) {
	_, rs := newTestRedis(t)

	_, err := rs.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCacheNotFound)
}

func TestRedisStoreSetGetExpire(t *testing.T) {
	mr, rs := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, rs.Set(ctx, "spimex:last_dates:1", []byte(`[{"date":"2025-02-10"}]`)))

	b, err := rs.Get(ctx, "spimex:last_dates:1")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"date":"2025-02-10"}]`, string(b))

	mr.SetTime(time.Date(2025, 2, 10, 12, 0, 0, 0, time.UTC))
	require.NoError(t, rs.ExpireAt(ctx, "spimex:last_dates:1", time.Date(2025, 2, 10, 14, 11, 0, 0, time.UTC)))
	assert.Equal(t, 2*time.Hour+11*time.Minute, mr.TTL("spimex:last_dates:1"))

	mr.FastForward(3 * time.Hour)
	_, err = rs.Get(ctx, "spimex:last_dates:1")
	assert.ErrorIs(t, err, ErrCacheNotFound)
}

func TestRedisStoreExpireAtMissingKey(t *testing.T) {
	_, rs := newTestRedis(t)
	assert.NoError(t, rs.ExpireAt(context.Background(), "missing", time.Now().Add(time.Hour)))
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr, rs := newTestRedis(t)
	ctx := context.Background()
	mr.Close()

	_, err := rs.Get(ctx, "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheNotFound)

	assert.Error(t, rs.Set(ctx, "k", []byte("v")))
	assert.Error(t, rs.Ping(ctx))
}

func TestDialRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := DialRedis(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	_ = rdb.Close()

	addr := mr.Addr()
	mr.Close()
	_, err = DialRedis(context.Background(), addr, "", 0)
	assert.Error(t, err)
}

func TestRedisStoreSetUntil(t *testing.T) {
	mr, rs := newTestRedis(t)
	ctx := context.Background()
	now := time.Date(2025, 2, 10, 20, 0, 0, 0, time.UTC)
	mr.SetTime(now)

	require.NoError(t, rs.SetUntil(ctx, "k", []byte("v"), now.Add(18*time.Hour+11*time.Minute)))

	got, err := rs.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
	assert.Equal(t, 18*time.Hour+11*time.Minute, mr.TTL("k"))
}
