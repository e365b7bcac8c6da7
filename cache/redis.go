package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements the Store interface on top of a redis client
type RedisStore struct {
	rdb redis.UniversalClient
}

// NewRedisStore wraps an existing client. The caller owns the client and closes it.
func NewRedisStore(rdb redis.UniversalClient) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// DialRedis creates a client for addr and pings it
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// Get implements Reader interface
func (rs *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := rs.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return b, nil
}

// Set implements Writer interface
func (rs *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := rs.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// ExpireAt implements Writer interface. Redis reports false for a missing key,
// which is not treated as an error.
func (rs *RedisStore) ExpireAt(ctx context.Context, key string, at time.Time) error {
	if err := rs.rdb.ExpireAt(ctx, key, at).Err(); err != nil {
		return fmt.Errorf("redis expireat %s: %w", key, err)
	}
	return nil
}

// SetUntil implements ExpiringWriter interface with SET ... EXAT
func (rs *RedisStore) SetUntil(ctx context.Context, key string, value []byte, at time.Time) error {
	if err := rs.rdb.SetArgs(ctx, key, value, redis.SetArgs{ExpireAt: at}).Err(); err != nil {
		return fmt.Errorf("redis set %s until %s: %w", key, at.Format(time.RFC3339), err)
	}
	return nil
}

// Ping implements Pinger interface
func (rs *RedisStore) Ping(ctx context.Context) error {
	return rs.rdb.Ping(ctx).Err()
}
