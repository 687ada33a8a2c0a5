package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"imhungri/internal/domain/entity"
	"imhungri/internal/infrastructure/realtime"
	"imhungri/internal/querycache"
	"imhungri/internal/worker"
)

var testPolicy = querycache.Policy{ //nolint:gochecknoglobals
	StaleTime:     30 * time.Second,
	RetentionTime: 5 * time.Minute,
}

func intPtr(v int) *int { return &v }

func runSyncer(t *testing.T, cache *querycache.Cache, events ...realtime.Event) {
	t.Helper()

	ch := make(chan realtime.Event, len(events))
	for _, e := range events {
		ch <- e
	}
	close(ch)

	// A closed channel makes Run drain everything and return.
	worker.NewSyncer(ch, cache).Run(context.Background())
}

func TestSyncerUpdatesVotesEverywhere(t *testing.T) {
	rq := require.New(t)

	cache := querycache.New()
	cache.Write(querycache.KeyFeed, testPolicy, []entity.Deal{
		{ID: "d1", Votes: 10, Upvoted: true},
		{ID: "d2", Votes: 2},
	})
	cache.Write(querycache.KeyDeal("d1"), testPolicy, entity.Deal{ID: "d1", Votes: 10, Upvoted: true})

	runSyncer(t, cache, realtime.Event{Op: realtime.OpUpdate, DealID: "d1", Votes: intPtr(14)})

	data, _ := cache.Peek(querycache.KeyFeed)
	deals := data.([]entity.Deal)
	rq.Equal(14, deals[0].Votes)
	rq.True(deals[0].Upvoted, "viewer flags survive a server tally update")
	rq.Equal(2, deals[1].Votes)

	v, ok := cache.Peek(querycache.KeyDeal("d1"))
	rq.True(ok)
	rq.Equal(14, v.(entity.Deal).Votes)
}

func TestSyncerDeleteRemovesDeal(t *testing.T) {
	rq := require.New(t)

	cache := querycache.New()
	cache.Write(querycache.KeyFeed, testPolicy, []entity.Deal{
		{ID: "d1", Votes: 10},
		{ID: "d2", Votes: 2},
	})
	cache.Write(querycache.KeyDeal("d1"), testPolicy, entity.Deal{ID: "d1", Votes: 10})

	runSyncer(t, cache, realtime.Event{Op: realtime.OpDelete, DealID: "d1"})

	_, ok := cache.Peek(querycache.KeyDeal("d1"))
	rq.False(ok)

	data, _ := cache.Peek(querycache.KeyFeed)
	deals := data.([]entity.Deal)
	rq.Len(deals, 1)
	rq.Equal("d2", deals[0].ID)
}

func TestSyncerIgnoresUnknownDeal(t *testing.T) {
	rq := require.New(t)

	cache := querycache.New()
	cache.Write(querycache.KeyFeed, testPolicy, []entity.Deal{{ID: "d1", Votes: 10}})

	runSyncer(t, cache,
		realtime.Event{Op: realtime.OpUpdate, DealID: "ghost", Votes: intPtr(99)},
		realtime.Event{Op: "noop", DealID: "d1"},
	)

	data, _ := cache.Peek(querycache.KeyFeed)
	deals := data.([]entity.Deal)
	rq.Equal(10, deals[0].Votes)
}
