package view

import (
	"context"

	"imhungri/internal/domain/entity"
	"imhungri/internal/domain/value"
	"imhungri/internal/querycache"
	"imhungri/internal/store"
)

type dealAPI interface {
	Feed(ctx context.Context) ([]entity.Deal, error)
	Deal(ctx context.Context, dealID string) (entity.Deal, error)
	Vote(ctx context.Context, dealID string, kind value.VoteKind) (entity.Deal, error)
}

// FeedView is the feed screen's session: it reads the shared feed cache entry
// and drains pending cross-screen patches whenever it regains focus.
type FeedView struct {
	api     dealAPI
	cache   *querycache.Cache
	pending *store.PendingUpdates
}

func NewFeedView(api dealAPI, cache *querycache.Cache, pending *store.PendingUpdates) *FeedView {
	return &FeedView{
		api:     api,
		cache:   cache,
		pending: pending,
	}
}

// Load returns the feed, served from cache within the stale window.
func (v *FeedView) Load(ctx context.Context) ([]entity.Deal, error) {
	return v.api.Feed(ctx)
}

// Focus runs when the screen becomes visible again. Pending patches for deals
// currently in the feed are applied to the cached list and cleared, so a vote
// made on the detail screen shows up without a refetch.
func (v *FeedView) Focus() {
	data, ok := v.cache.Peek(querycache.KeyFeed)
	if !ok {
		return
	}

	deals, ok := data.([]entity.Deal)
	if !ok {
		return
	}

	for _, d := range deals {
		patch, ok := v.pending.Consume(d.ID)
		if !ok {
			continue
		}

		v.cache.Update(querycache.KeyFeed, func(data any) any {
			current, ok := data.([]entity.Deal)
			if !ok {
				return data
			}

			updated := make([]entity.Deal, len(current))
			copy(updated, current)

			for i, cd := range updated {
				if cd.ID == d.ID {
					updated[i] = patch.Apply(cd)
				}
			}

			return updated
		})
	}
}

// Vote applies a toggle straight from a feed card.
func (v *FeedView) Vote(ctx context.Context, dealID string, kind value.VoteKind) (entity.Deal, error) {
	return v.api.Vote(ctx, dealID, kind)
}

// OnChange registers fn to run after every feed cache write, modeling a
// screen re-render. fn must not block.
func (v *FeedView) OnChange(fn func([]entity.Deal)) {
	v.cache.Subscribe(querycache.KeyFeed, func(data any) {
		if deals, ok := data.([]entity.Deal); ok {
			fn(deals)
		}
	})
}
