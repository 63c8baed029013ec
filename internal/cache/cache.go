// Package cache is the client-side query cache for repository reads. Entries
// are keyed by (operation, parameters); writes invalidate an enumerated set
// of keys, which marks them stale rather than evicting them, so concurrent
// readers always see the previous complete value while a single coalesced
// refetch runs (stale-while-revalidate).
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Key identifies one cached read.
type Key struct {
	Op     string
	Params string
}

// NewKey builds a Key from an operation name and its parameter tuple.
func NewKey(op string, params ...string) Key {
	return Key{Op: op, Params: strings.Join(params, "\x1f")}
}

func (k Key) String() string {
	if k.Params == "" {
		return k.Op
	}
	return k.Op + "(" + k.Params + ")"
}

// Counter is the slice of the metrics surface the cache needs.
type Counter interface {
	IncrementCacheHits(op string)
	IncrementCacheMisses(op string)
	IncrementCacheRefreshes(op string)
}

type entry struct {
	value     any
	fetchedAt time.Time
	stale     bool
}

// Cache is a process-local stale-while-revalidate cache shared across all
// read call-sites of one client process.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]*entry
	group   singleflight.Group

	logger  *slog.Logger
	metrics Counter
	now     func() time.Time

	refreshTimeout time.Duration
}

// Option configures the Cache.
type Option func(*Cache)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

func WithMetrics(m Counter) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

// WithClock injects a time source for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New constructs an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:        make(map[Key]*entry),
		now:            time.Now,
		refreshTimeout: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Get returns the cached value for key, fetching through fetch on a miss.
// A fresh entry is served directly. A stale entry is served immediately
// while one background refetch (coalesced across callers) brings it up to
// date. Only a true miss blocks on the fetch.
func (c *Cache) Get(ctx context.Context, key Key, ttl time.Duration, fetch func(ctx context.Context) (any, error)) (any, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	var value any
	var isStale bool
	if ok {
		value = e.value
		isStale = e.stale || c.now().Sub(e.fetchedAt) >= ttl
	}
	c.mu.RUnlock()

	if ok && !isStale {
		c.countHit(key.Op)
		return value, nil
	}

	if ok {
		// Serve the previous complete value and refresh behind it.
		c.countHit(key.Op)
		go c.refreshDetached(key, fetch)
		return value, nil
	}

	c.countMiss(key.Op)
	fresh, err, _ := c.group.Do(key.String(), func() (any, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.store(key, v)
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return fresh, nil
}

// Refresh refetches key immediately, coalesced with any in-flight refetch
// for the same key. Used by the background refreshers.
func (c *Cache) Refresh(ctx context.Context, key Key, fetch func(ctx context.Context) (any, error)) error {
	_, err, _ := c.group.Do(key.String(), func() (any, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.store(key, v)
		return v, nil
	})
	if err == nil && c.metrics != nil {
		c.metrics.IncrementCacheRefreshes(key.Op)
	}
	return err
}

// Invalidate marks the given keys stale. The next read serves the old value
// and triggers a refetch; nothing blocks.
func (c *Cache) Invalidate(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		if e, ok := c.entries[key]; ok {
			e.stale = true
		}
	}
}

// InvalidateOp marks every entry of an operation stale regardless of
// parameters.
func (c *Cache) InvalidateOp(op string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if key.Op == op {
			e.stale = true
		}
	}
}

func (c *Cache) store(key Key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &entry{value: value, fetchedAt: c.now()}
}

// refreshDetached runs a stale-entry refetch decoupled from the caller's
// deadline; the caller already has its answer.
func (c *Cache) refreshDetached(key Key, fetch func(ctx context.Context) (any, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), c.refreshTimeout)
	defer cancel()
	if err := c.Refresh(ctx, key, fetch); err != nil {
		c.logger.Warn("stale cache refetch failed",
			"key", key.String(),
			"error", err,
		)
	}
}

func (c *Cache) countHit(op string) {
	if c.metrics != nil {
		c.metrics.IncrementCacheHits(op)
	}
}

func (c *Cache) countMiss(op string) {
	if c.metrics != nil {
		c.metrics.IncrementCacheMisses(op)
	}
}

// Fetch is a typed wrapper over Cache.Get.
func Fetch[T any](ctx context.Context, c *Cache, key Key, ttl time.Duration, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	v, err := c.Get(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		// A mismatch means a writer stored a different type under this key;
		// surfacing it beats silently serving a zero value.
		return zero, fmt.Errorf("cache: entry %s holds %T, want %T", key.String(), v, zero)
	}
	return typed, nil
}
