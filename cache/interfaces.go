// Package cache provides the key-value store contract used by the query layer,
// the key generator for query results and the daily cutoff expiry policy.
package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCacheNotFound is returned when a cache entry is not found or expired
	ErrCacheNotFound = errors.New("cache entry not found or expired")
)

// Reader defines the interface for reading cache entries
type Reader interface {
	// Get returns the stored payload for key, or ErrCacheNotFound when absent
	Get(ctx context.Context, key string) ([]byte, error)
}

// Writer defines the interface for writing cache entries
type Writer interface {
	// Set stores value under key without an expiry
	Set(ctx context.Context, key string, value []byte) error
	// ExpireAt schedules key for removal at the given instant.
	// Calling it for a missing key is not an error.
	ExpireAt(ctx context.Context, key string, at time.Time) error
}

// Store combines both cache operations
type Store interface {
	Reader
	Writer
}

// ExpiringWriter is implemented by stores that can write a value and its
// expiry in one operation. Callers prefer it over Set followed by ExpireAt.
type ExpiringWriter interface {
	SetUntil(ctx context.Context, key string, value []byte, at time.Time) error
}

// Pinger is implemented by stores that can report their health
type Pinger interface {
	Ping(ctx context.Context) error
}
