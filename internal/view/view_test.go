package view_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"imhungri/internal/domain/entity"
	"imhungri/internal/domain/value"
	"imhungri/internal/optimistic"
	"imhungri/internal/querycache"
	"imhungri/internal/store"
	"imhungri/internal/view"
)

var testPolicy = querycache.Policy{ //nolint:gochecknoglobals
	StaleTime:     30 * time.Second,
	RetentionTime: 5 * time.Minute,
}

// fakeAPI serves deals straight from the cache and routes vote toggles
// through a real mutator, mirroring the service wiring.
type fakeAPI struct {
	mu         sync.Mutex
	cache      *querycache.Cache
	mutator    *optimistic.Mutator
	feed       []entity.Deal
	persistErr error
}

func (a *fakeAPI) Feed(ctx context.Context) ([]entity.Deal, error) {
	return querycache.Fetch(ctx, a.cache, querycache.KeyFeed, testPolicy,
		func(context.Context) ([]entity.Deal, error) {
			a.mu.Lock()
			defer a.mu.Unlock()

			return a.feed, nil
		})
}

func (a *fakeAPI) Deal(ctx context.Context, dealID string) (entity.Deal, error) {
	return querycache.Fetch(ctx, a.cache, querycache.KeyDeal(dealID), testPolicy,
		func(context.Context) (entity.Deal, error) {
			a.mu.Lock()
			defer a.mu.Unlock()

			for _, d := range a.feed {
				if d.ID == dealID {
					return d, nil
				}
			}

			return entity.Deal{}, nil
		})
}

func (a *fakeAPI) Vote(ctx context.Context, dealID string, kind value.VoteKind) (entity.Deal, error) {
	keys := []querycache.Key{querycache.KeyFeed, querycache.KeyDeal(dealID)}

	return a.mutator.Do(ctx, dealID, kind, keys,
		func(d entity.Deal) entity.Deal {
			return d.WithVoteState(d.VoteState().Apply(kind))
		},
		func(context.Context) error {
			a.mu.Lock()
			defer a.mu.Unlock()

			return a.persistErr
		},
	)
}

type viewFixture struct {
	cache   *querycache.Cache
	pending *store.PendingUpdates
	mutator *optimistic.Mutator
	api     *fakeAPI
}

func newViewFixture(feed ...entity.Deal) *viewFixture {
	cache := querycache.New()
	pending := store.NewPendingUpdates()
	mutator := optimistic.NewMutator(cache)
	api := &fakeAPI{cache: cache, mutator: mutator, feed: feed}

	mutator.OnSettle(func(dealID string, d entity.Deal) {
		pending.Publish(dealID, entity.VotePatch(d))
	})

	return &viewFixture{
		cache:   cache,
		pending: pending,
		mutator: mutator,
		api:     api,
	}
}

func intPtr(v int) *int { return &v }

func TestFeedFocusAppliesAndClearsPendingPatch(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	f := newViewFixture(entity.Deal{ID: "d1", Votes: 3}, entity.Deal{ID: "d2", Votes: 1})
	feed := view.NewFeedView(f.api, f.cache, f.pending)

	_, err := feed.Load(ctx)
	rq.NoError(err)

	f.pending.Publish("d1", entity.DealPatch{Votes: intPtr(5)})

	feed.Focus()

	data, ok := f.cache.Peek(querycache.KeyFeed)
	rq.True(ok)

	deals := data.([]entity.Deal)
	rq.Equal(5, deals[0].Votes)
	rq.Equal(1, deals[1].Votes, "untouched deal keeps its state")

	rq.Zero(f.pending.Len(), "consumed patch must be cleared")
}

func TestFeedFocusWithoutCachedFeedKeepsPatch(t *testing.T) {
	rq := require.New(t)

	f := newViewFixture()
	feed := view.NewFeedView(f.api, f.cache, f.pending)

	f.pending.Publish("d1", entity.DealPatch{Votes: intPtr(5)})

	feed.Focus()

	rq.Equal(1, f.pending.Len(), "patch stays pending until a feed holds the deal")
}

func TestDetailVotePropagatesToFeedOnFocus(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	f := newViewFixture(entity.Deal{ID: "d1", Votes: 10})
	detail := view.NewDetailView(f.api, "d1")

	opened, err := detail.Open(ctx)
	rq.NoError(err)
	rq.Equal(10, opened.Votes)

	next, err := detail.Vote(ctx, value.VoteKindUpvote)
	rq.NoError(err)
	rq.Equal(11, next.Votes)
	rq.True(next.Upvoted)

	f.mutator.Wait()

	// The feed loads a stale server copy afterwards; focus reconciles it.
	feed := view.NewFeedView(f.api, f.cache, f.pending)

	loaded, err := feed.Load(ctx)
	rq.NoError(err)
	rq.Equal(10, loaded[0].Votes)

	feed.Focus()

	data, _ := f.cache.Peek(querycache.KeyFeed)
	deals := data.([]entity.Deal)
	rq.Equal(11, deals[0].Votes)
	rq.True(deals[0].Upvoted)
}

func TestDetailVotesMergeLastWriteWins(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	f := newViewFixture(entity.Deal{ID: "d1", Votes: 10})
	detail := view.NewDetailView(f.api, "d1")

	_, err := detail.Open(ctx)
	rq.NoError(err)

	// Upvote, then favorite: both settle into one merged patch.
	_, err = detail.Vote(ctx, value.VoteKindUpvote)
	rq.NoError(err)
	f.mutator.Wait()

	_, err = detail.Vote(ctx, value.VoteKindFavorite)
	rq.NoError(err)
	f.mutator.Wait()

	feed := view.NewFeedView(f.api, f.cache, f.pending)

	_, err = feed.Load(ctx)
	rq.NoError(err)

	feed.Focus()

	data, _ := f.cache.Peek(querycache.KeyFeed)
	deals := data.([]entity.Deal)
	rq.Equal(11, deals[0].Votes)
	rq.True(deals[0].Upvoted)
	rq.True(deals[0].Favorited)
}

func TestDetailVoteRejectionNotAppliedOnFocus(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	f := newViewFixture(entity.Deal{ID: "d1", Votes: 10})
	f.api.persistErr = errors.New("vote rejected")

	detail := view.NewDetailView(f.api, "d1")

	_, err := detail.Open(ctx)
	rq.NoError(err)

	next, err := detail.Vote(ctx, value.VoteKindUpvote)
	rq.NoError(err)
	rq.Equal(11, next.Votes)

	f.mutator.Wait()

	feed := view.NewFeedView(f.api, f.cache, f.pending)

	_, err = feed.Load(ctx)
	rq.NoError(err)

	feed.Focus()

	data, _ := f.cache.Peek(querycache.KeyFeed)
	deals := data.([]entity.Deal)
	rq.Equal(10, deals[0].Votes, "rejected vote must not reach the feed")
	rq.False(deals[0].Upvoted)
}

func TestFeedOnChangeNotified(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	f := newViewFixture(entity.Deal{ID: "d1", Votes: 3})
	feed := view.NewFeedView(f.api, f.cache, f.pending)

	var (
		mu       sync.Mutex
		rendered [][]entity.Deal
	)

	feed.OnChange(func(deals []entity.Deal) {
		mu.Lock()
		defer mu.Unlock()

		rendered = append(rendered, deals)
	})

	_, err := feed.Load(ctx)
	rq.NoError(err)

	f.pending.Publish("d1", entity.DealPatch{Votes: intPtr(4)})
	feed.Focus()

	mu.Lock()
	defer mu.Unlock()

	rq.NotEmpty(rendered)
	last := rendered[len(rendered)-1]
	rq.Equal(4, last[0].Votes)
}
