package querycache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"imhungri/pkg/contextx"
	"imhungri/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const cleanupInterval = time.Minute

// Policy carries the two durations attached to a logical query key.
type Policy struct {
	// StaleTime is how long a cached value is served without any refetch.
	StaleTime time.Duration
	// RetentionTime is how long an entry is kept before eviction.
	RetentionTime time.Duration
}

type FetchFunc func(ctx context.Context) (any, error)

type entry struct {
	data      any
	fetchedAt time.Time
	policy    Policy
}

// Cache is a stale-while-revalidate cache for query results.
//
// Reads within the stale window return the cached value with no network
// call. Reads past it still return the cached value synchronously but
// schedule exactly one background refetch per key. A miss blocks on the
// first fetch. Manual writes bypass staleness entirely.
type Cache struct {
	store *gocache.Cache
	now   func() time.Time

	mu       sync.Mutex
	inflight map[Key]bool
	subs     map[Key][]func(any)

	refetches sync.WaitGroup
}

type Option func(*Cache)

// WithNow overrides the clock, for staleness tests.
func WithNow(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

func New(opts ...Option) *Cache {
	c := &Cache{
		store:    gocache.New(gocache.NoExpiration, cleanupInterval),
		now:      time.Now,
		inflight: make(map[Key]bool),
		subs:     make(map[Key][]func(any)),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get returns the value under key, fetching it when needed per the policy.
func (c *Cache) Get(ctx context.Context, key Key, policy Policy, fetch FetchFunc) (any, error) {
	c.mu.Lock()

	if v, ok := c.store.Get(key.String()); ok {
		e := v.(entry)
		stale := c.now().Sub(e.fetchedAt) >= e.policy.StaleTime
		c.mu.Unlock()

		if stale {
			staleServesTotal.WithLabelValues(key.Prefix()).Inc()
			c.refetchAsync(ctx, key, policy, fetch)
		} else {
			hitsTotal.WithLabelValues(key.Prefix()).Inc()
		}

		return e.data, nil
	}

	c.mu.Unlock()

	missesTotal.WithLabelValues(key.Prefix()).Inc()

	data, err := fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", key, err)
	}

	c.put(key, policy, data, c.now())

	return data, nil
}

// Write overwrites the entry under key, marking it fresh. Used by the
// realtime syncer and for seeding; staleness checks are not consulted.
func (c *Cache) Write(key Key, policy Policy, data any) {
	c.put(key, policy, data, c.now())
	c.notify(key, data)
}

// Update applies fn to the current entry data, keeping its fetch time: a
// manual overwrite does not revalidate the entry. No-op when the key is
// absent (e.g. evicted between the optimistic write and its revert).
func (c *Cache) Update(key Key, fn func(any) any) {
	c.mu.Lock()

	v, ok := c.store.Get(key.String())
	if !ok {
		c.mu.Unlock()
		return
	}

	e := v.(entry)
	e.data = fn(e.data)
	c.store.Set(key.String(), e, e.policy.RetentionTime)

	c.mu.Unlock()

	c.notify(key, e.data)
}

// Remove evicts the entry under key, if any.
func (c *Cache) Remove(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.Delete(key.String())
}

// Peek returns the cached data without fetching or touching staleness.
func (c *Cache) Peek(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.store.Get(key.String())
	if !ok {
		return nil, false
	}

	return v.(entry).data, true
}

// Subscribe registers fn to run after every write to key. Subscribers model
// screens re-rendering on cache changes; fn must not block.
func (c *Cache) Subscribe(key Key, fn func(any)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.subs[key] = append(c.subs[key], fn)
}

// WaitRefetches blocks until all scheduled background refetches settle.
func (c *Cache) WaitRefetches() {
	c.refetches.Wait()
}

func (c *Cache) put(key Key, policy Policy, data any, fetchedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.Set(key.String(), entry{
		data:      data,
		fetchedAt: fetchedAt,
		policy:    policy,
	}, policy.RetentionTime)
}

func (c *Cache) refetchAsync(ctx context.Context, key Key, policy Policy, fetch FetchFunc) {
	c.mu.Lock()

	if c.inflight[key] {
		c.mu.Unlock()
		return
	}

	c.inflight[key] = true
	c.mu.Unlock()

	refetchesTotal.WithLabelValues(key.Prefix()).Inc()
	c.refetches.Add(1)

	// The refetch outlives the triggering read.
	bgCtx := context.WithoutCancel(ctx)

	go func() {
		defer c.refetches.Done()

		data, err := fetch(bgCtx)

		c.mu.Lock()
		delete(c.inflight, key)
		c.mu.Unlock()

		if err != nil {
			// Keep serving the stale value; the next stale read retries.
			logger(bgCtx).Warn(
				"background refetch failed",
				slog.String(logx.FieldCacheKey, key.String()),
				logx.Error(err),
			)

			return
		}

		c.put(key, policy, data, c.now())
		c.notify(key, data)
	}()
}

func (c *Cache) notify(key Key, data any) {
	c.mu.Lock()
	subs := make([]func(any), len(c.subs[key]))
	copy(subs, c.subs[key])
	c.mu.Unlock()

	for _, fn := range subs {
		fn(data)
	}
}

// Fetch is the typed companion of Cache.Get.
func Fetch[T any](ctx context.Context, c *Cache, key Key, policy Policy, fetch func(ctx context.Context) (T, error)) (T, error) {
	v, err := c.Get(ctx, key, policy, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return v.(T), nil
}
