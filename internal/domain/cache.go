package domain

import (
	"context"
	"time"
)

// CacheBackend names a supported cache store implementation
type CacheBackend string

const (
	CacheBackendMemory  CacheBackend = "memory"
	CacheBackendRedis   CacheBackend = "redis"
	CacheBackendSharded CacheBackend = "sharded"
)

// CacheStore defines the interface for opaque string blob caching
type CacheStore interface {
	// Get returns the stored value and whether it was found. Expired entries are never returned.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key. A ttl <= 0 means the entry does not expire.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry. Backends may refuse with ErrCacheClearUnsupported.
	Clear(ctx context.Context) error
}

// CacheEntry is a single cached value with an optional expiry
type CacheEntry struct {
	Value     string
	ExpiresAt time.Time
}

// Expired reports whether the entry is past its expiry at now
func (e CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}
