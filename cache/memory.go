package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore implements the Store interface in process memory. It backs
// CACHE_BACKEND=memory for local runs and is shared by tests.
type MemoryStore struct {
	mu    sync.Mutex // serializes ExpireAt's read-modify-write
	items *gocache.Cache
	now   func() time.Time
}

// NewMemoryStore creates an empty store that sweeps expired entries every cleanupInterval
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{
		items: gocache.New(gocache.NoExpiration, cleanupInterval),
		now:   time.Now,
	}
}

// Get implements Reader interface
func (ms *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := ms.items.Get(key)
	if !ok {
		return nil, ErrCacheNotFound
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, ErrCacheNotFound
	}
	return append([]byte(nil), b...), nil
}

// Set implements Writer interface
func (ms *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.items.Set(key, append([]byte(nil), value...), gocache.NoExpiration)
	return nil
}

// ExpireAt implements Writer interface
func (ms *MemoryStore) ExpireAt(_ context.Context, key string, at time.Time) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	v, ok := ms.items.Get(key)
	if !ok {
		return nil
	}
	ttl := at.Sub(ms.now())
	if ttl <= 0 {
		ms.items.Delete(key)
		return nil
	}
	ms.items.Set(key, v, ttl)
	return nil
}

// SetUntil implements ExpiringWriter interface
func (ms *MemoryStore) SetUntil(_ context.Context, key string, value []byte, at time.Time) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ttl := at.Sub(ms.now())
	if ttl <= 0 {
		ms.items.Delete(key)
		return nil
	}
	ms.items.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

// Ping implements Pinger interface
func (ms *MemoryStore) Ping(context.Context) error {
	return nil
}

// Len reports the number of stored entries, including expired ones not yet swept
func (ms *MemoryStore) Len() int {
	return ms.items.ItemCount()
}
