package querycache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"imhungri/internal/querycache"
)

var testPolicy = querycache.Policy{ //nolint:gochecknoglobals
	StaleTime:     30 * time.Second,
	RetentionTime: 5 * time.Minute,
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func TestGetMissBlocksOnFirstFetch(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	cache := querycache.New()

	var fetches atomic.Int32

	v, err := querycache.Fetch(ctx, cache, "feed", testPolicy, func(context.Context) (string, error) {
		fetches.Add(1)
		return "fresh", nil
	})
	rq.NoError(err)
	rq.Equal("fresh", v)
	rq.EqualValues(1, fetches.Load())
}

func TestGetMissSurfacesFetchError(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	cache := querycache.New()
	errBoom := errors.New("boom")

	_, err := cache.Get(ctx, "feed", testPolicy, func(context.Context) (any, error) {
		return nil, errBoom
	})
	rq.ErrorIs(err, errBoom)

	_, ok := cache.Peek("feed")
	rq.False(ok)
}

func TestGetWithinStaleTimeSkipsNetwork(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	clock := newFakeClock()
	cache := querycache.New(querycache.WithNow(clock.Now))

	var fetches atomic.Int32

	fetch := func(context.Context) (any, error) {
		fetches.Add(1)
		return "v1", nil
	}

	_, err := cache.Get(ctx, "feed", testPolicy, fetch)
	rq.NoError(err)

	clock.Advance(testPolicy.StaleTime - time.Second)

	v, err := cache.Get(ctx, "feed", testPolicy, fetch)
	rq.NoError(err)
	rq.Equal("v1", v)
	rq.EqualValues(1, fetches.Load(), "read within stale window must not fetch")
}

func TestGetPastStaleTimeServesStaleAndRefetchesOnce(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	clock := newFakeClock()
	cache := querycache.New(querycache.WithNow(clock.Now))

	var fetches atomic.Int32

	fetch := func(context.Context) (any, error) {
		n := fetches.Add(1)
		if n == 1 {
			return "v1", nil
		}
		return "v2", nil
	}

	_, err := cache.Get(ctx, "feed", testPolicy, fetch)
	rq.NoError(err)

	clock.Advance(testPolicy.StaleTime)

	// The stale value is returned synchronously.
	v, err := cache.Get(ctx, "feed", testPolicy, fetch)
	rq.NoError(err)
	rq.Equal("v1", v)

	// A concurrent stale read must not schedule a second refetch.
	v, err = cache.Get(ctx, "feed", testPolicy, fetch)
	rq.NoError(err)
	rq.Equal("v1", v)

	cache.WaitRefetches()
	rq.EqualValues(2, fetches.Load(), "exactly one background refetch")

	v, ok := cache.Peek("feed")
	rq.True(ok)
	rq.Equal("v2", v)
}

func TestBackgroundRefetchFailureKeepsStaleValue(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	clock := newFakeClock()
	cache := querycache.New(querycache.WithNow(clock.Now))

	var fetches atomic.Int32

	fetch := func(context.Context) (any, error) {
		if fetches.Add(1) > 1 {
			return nil, errors.New("backend down")
		}
		return "v1", nil
	}

	_, err := cache.Get(ctx, "feed", testPolicy, fetch)
	rq.NoError(err)

	clock.Advance(testPolicy.StaleTime)

	v, err := cache.Get(ctx, "feed", testPolicy, fetch)
	rq.NoError(err)
	rq.Equal("v1", v)

	cache.WaitRefetches()

	v, ok := cache.Peek("feed")
	rq.True(ok)
	rq.Equal("v1", v)
}

func TestUpdateIsNoOpWhenKeyAbsent(t *testing.T) {
	rq := require.New(t)

	cache := querycache.New()

	called := false

	cache.Update("deal:d1", func(v any) any {
		called = true
		return v
	})

	rq.False(called)

	_, ok := cache.Peek("deal:d1")
	rq.False(ok)
}

func TestUpdateKeepsFetchTime(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	clock := newFakeClock()
	cache := querycache.New(querycache.WithNow(clock.Now))

	var fetches atomic.Int32

	fetch := func(context.Context) (any, error) {
		fetches.Add(1)
		return "v1", nil
	}

	_, err := cache.Get(ctx, "feed", testPolicy, fetch)
	rq.NoError(err)

	clock.Advance(testPolicy.StaleTime)

	// A manual overwrite does not revalidate: the next read still refetches.
	cache.Update("feed", func(any) any { return "optimistic" })

	v, err := cache.Get(ctx, "feed", testPolicy, fetch)
	rq.NoError(err)
	rq.Equal("optimistic", v)

	cache.WaitRefetches()
	rq.EqualValues(2, fetches.Load())
}

func TestSubscribeNotifiedOnWriteAndUpdate(t *testing.T) {
	rq := require.New(t)

	cache := querycache.New()

	var got []any

	cache.Subscribe("deal:d1", func(v any) {
		got = append(got, v)
	})

	cache.Write("deal:d1", testPolicy, "a")
	cache.Update("deal:d1", func(any) any { return "b" })

	rq.Equal([]any{"a", "b"}, got)
}

func TestRemoveEvictsEntry(t *testing.T) {
	rq := require.New(t)

	cache := querycache.New()

	cache.Write("deal:d1", testPolicy, "a")
	cache.Remove("deal:d1")

	_, ok := cache.Peek("deal:d1")
	rq.False(ok)
}
