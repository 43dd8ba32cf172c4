// Package render caches sanitized HTML for Markdown text.
//
// Entries are keyed by a SHA-256 fingerprint of the source text and kept in insertion
// order. A hit refreshes the entry's timestamp without moving it. Sweep drops entries not
// refreshed within TTL and then trims the oldest-inserted entries down to MaxSize; it runs
// on a background ticker between Start and Stop, and after any insert that breaches the
// cap. Inputs longer than LargeInputThreshold go through RenderLarge, which renders on a
// bounded worker and never touches the store.
package render

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTTL                 = time.Hour
	DefaultMaxSize             = 100
	DefaultLargeInputThreshold = 10000
	DefaultSweepInterval       = 10 * time.Minute
	DefaultLargeWorkers        = 2
)

// Renderer is the Markdown collaborator. It must be deterministic for a given input.
type Renderer interface {
	Render(text string) (string, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(text string) (string, error)

func (f RendererFunc) Render(text string) (string, error) { return f(text) }

// Options configures a Cache. Zero values take the Default* constants.
type Options struct {
	TTL                 time.Duration
	MaxSize             int
	LargeInputThreshold int
	SweepInterval       time.Duration
	LargeWorkers        int

	Clock  Clock
	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.TTL <= 0 {
		o.TTL = DefaultTTL
	}
	if o.MaxSize <= 0 {
		o.MaxSize = DefaultMaxSize
	}
	if o.LargeInputThreshold <= 0 {
		o.LargeInputThreshold = DefaultLargeInputThreshold
	}
	if o.SweepInterval <= 0 {
		o.SweepInterval = DefaultSweepInterval
	}
	if o.LargeWorkers <= 0 {
		o.LargeWorkers = DefaultLargeWorkers
	}
	if o.Clock == nil {
		o.Clock = SystemClock()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

type entry struct {
	key       string
	value     string
	timestamp time.Time
}

// Cache is safe for concurrent use.
type Cache struct {
	renderer Renderer
	opts     Options
	clock    Clock
	logger   *zap.Logger

	mu    sync.Mutex
	items map[string]*list.Element
	order *list.List // front = oldest inserted

	misses singleflight.Group
	large  *semaphore.Weighted
	tasks  sync.WaitGroup

	stats struct {
		hits, misses, evictions, large atomic.Uint64
	}

	lifecycle sync.Mutex
	stopped   bool
	cancel    context.CancelFunc
	loop      sync.WaitGroup
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Size         int    `json:"size"`
	MaxSize      int    `json:"maxSize"`
	Hits         uint64 `json:"hits"`
	Misses       uint64 `json:"misses"`
	Evictions    uint64 `json:"evictions"`
	LargeRenders uint64 `json:"largeRenders"`
}

// New builds an empty cache in front of r. Call Start to enable background sweeps.
func New(r Renderer, opts Options) *Cache {
	opts = opts.withDefaults()
	return &Cache{
		renderer: r,
		opts:     opts,
		clock:    opts.Clock,
		logger:   opts.Logger,
		items:    make(map[string]*list.Element),
		order:    list.New(),
		large:    semaphore.NewWeighted(int64(opts.LargeWorkers)),
	}
}

// Fingerprint is the cache key for text.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Render returns sanitized HTML for text, computing it at most once per fingerprint
// while the entry is cached. Concurrent misses on the same text share one render.
func (c *Cache) Render(text string) (string, error) {
	if text == "" {
		return "", nil
	}
	key := Fingerprint(text)
	if v, ok := c.lookup(key); ok {
		return v, nil
	}

	v, err, _ := c.misses.Do(key, func() (any, error) {
		// A caller that missed just before us may have stored it already.
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		c.stats.misses.Add(1)
		out, err := c.invoke(text)
		if err != nil {
			return "", err
		}
		c.store(key, out)
		return out, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Cache) lookup(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return "", false
	}
	e := el.Value.(*entry)
	e.timestamp = c.clock.Now()
	c.stats.hits.Add(1)
	return e.value, true
}

func (c *Cache) store(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry)
		e.value = value
		e.timestamp = now
		return
	}
	c.items[key] = c.order.PushBack(&entry{key: key, value: value, timestamp: now})
	if len(c.items) > c.opts.MaxSize {
		c.sweepLocked(now)
	}
}

// invoke calls the collaborator, turning errors and panics into *RenderError.
func (c *Cache) invoke(text string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = "", &RenderError{Err: fmt.Errorf("renderer panicked: %v", r)}
		}
	}()
	out, err = c.renderer.Render(text)
	if err != nil {
		return "", asRenderError(err)
	}
	return out, nil
}

// Sweep removes entries idle for longer than TTL, then the oldest-inserted entries until
// at most MaxSize remain. It scans the whole store because hits refresh timestamps out of
// insertion order. It returns the number of entries removed.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweepLocked(c.clock.Now())
}

func (c *Cache) sweepLocked(now time.Time) int {
	removed := 0
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if now.Sub(el.Value.(*entry).timestamp) > c.opts.TTL {
			c.removeLocked(el)
			removed++
		}
		el = next
	}
	for len(c.items) > c.opts.MaxSize {
		c.removeLocked(c.order.Front())
		removed++
	}
	if removed > 0 {
		c.stats.evictions.Add(uint64(removed))
		c.logger.Debug("render cache swept", zap.Int("removed", removed), zap.Int("size", len(c.items)))
	}
	return removed
}

func (c *Cache) removeLocked(el *list.Element) {
	delete(c.items, el.Value.(*entry).key)
	c.order.Remove(el)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Cache) Stats() Stats {
	return Stats{
		Size:         c.Len(),
		MaxSize:      c.opts.MaxSize,
		Hits:         c.stats.hits.Load(),
		Misses:       c.stats.misses.Load(),
		Evictions:    c.stats.evictions.Load(),
		LargeRenders: c.stats.large.Load(),
	}
}

// Start runs Sweep every SweepInterval until ctx is done or Stop is called.
// Calling Start on a running or stopped cache is a no-op.
func (c *Cache) Start(ctx context.Context) {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	if c.cancel != nil || c.stopped {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	ticker := c.clock.NewTicker(c.opts.SweepInterval)

	c.loop.Add(1)
	go c.sweepLoop(ctx, ticker)
	c.logger.Info("render cache started",
		zap.Duration("ttl", c.opts.TTL),
		zap.Int("max_size", c.opts.MaxSize),
		zap.Duration("sweep_interval", c.opts.SweepInterval))
}

func (c *Cache) sweepLoop(ctx context.Context, ticker Ticker) {
	defer c.loop.Done()
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			c.Sweep()
		}
	}
}

// Stop ends the sweep loop and waits for in-flight large renders; later RenderLarge
// calls fail with ErrStopped. It is safe to call more than once and on a cache that
// was never started.
func (c *Cache) Stop() {
	c.lifecycle.Lock()
	c.stopped = true
	cancel := c.cancel
	c.cancel = nil
	c.lifecycle.Unlock()

	if cancel != nil {
		cancel()
		c.loop.Wait()
		c.logger.Info("render cache stopped")
	}
	c.tasks.Wait()
}
