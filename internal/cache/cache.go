package cache

import "time"

// Cache is a small key-value store with per-entry expiry. The server uses it for
// lookups that are cheap to redo but hit the database on every request otherwise,
// such as role permissions.
type Cache[K comparable, V any] interface {
	// Get returns the value and whether it was present and not expired.
	Get(key K) (V, bool)

	// Set stores value. ttl <= 0 uses the cache default; a zero default never expires.
	Set(key K, value V, ttl time.Duration)

	// GetOrLoad returns the cached value or calls load and caches its result.
	// Errors from load are returned and not cached.
	GetOrLoad(key K, load func(K) (V, error)) (V, error)

	// Delete removes a key if present.
	Delete(key K)

	// Len returns the number of non-expired items currently stored.
	Len() int

	// Clear removes all entries.
	Clear()

	// PurgeExpired removes expired entries and returns how many were dropped.
	PurgeExpired() int
}
