package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time // zero means no expiration
}

func (e entry[V]) expired(at time.Time) bool {
	return !e.expiresAt.IsZero() && at.After(e.expiresAt)
}

// SimpleCache is a map guarded by a RWMutex. Expired entries are ignored on read and
// dropped by PurgeExpired.
type SimpleCache[K comparable, V any] struct {
	mu         sync.RWMutex
	defaultTTL time.Duration
	items      map[K]entry[V]
}

// Options controls construction of a SimpleCache.
type Options struct {
	// DefaultTTL applies when Set or GetOrLoad is given no TTL. Zero means entries never expire.
	DefaultTTL time.Duration
}

// NewSimpleCache constructs a new SimpleCache with the given options.
func NewSimpleCache[K comparable, V any](opts Options) *SimpleCache[K, V] {
	return &SimpleCache[K, V]{
		defaultTTL: opts.DefaultTTL,
		items:      make(map[K]entry[V]),
	}
}

// now is a small indirection to allow test stubbing.
var now = time.Now

func (c *SimpleCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero V
	e, ok := c.items[key]
	if !ok || e.expired(now()) {
		return zero, false
	}
	return e.value, true
}

func (c *SimpleCache[K, V]) Set(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(key, value, ttl)
}

func (c *SimpleCache[K, V]) setLocked(key K, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	var exp time.Time
	if ttl > 0 {
		exp = now().Add(ttl)
	}
	c.items[key] = entry[V]{value: value, expiresAt: exp}
}

// GetOrLoad does not hold the lock while load runs, so two callers racing on a cold key
// may both load; the later result wins.
func (c *SimpleCache[K, V]) GetOrLoad(key K, load func(K) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := load(key)
	if err != nil {
		var zero V
		return zero, err
	}
	c.Set(key, v, 0)
	return v, nil
}

func (c *SimpleCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *SimpleCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	at := now()
	count := 0
	for _, e := range c.items {
		if !e.expired(at) {
			count++
		}
	}
	return count
}

func (c *SimpleCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]entry[V])
}

func (c *SimpleCache[K, V]) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	at := now()
	removed := 0
	for k, e := range c.items {
		if e.expired(at) {
			delete(c.items, k)
			removed++
		}
	}
	return removed
}

var _ Cache[string, []string] = (*SimpleCache[string, []string])(nil)
