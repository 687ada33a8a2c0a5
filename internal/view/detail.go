package view

import (
	"context"

	"imhungri/internal/domain/entity"
	"imhungri/internal/domain/value"
)

// DetailView is a deal detail screen's session. It works on the deal's own
// cache entry, an independent copy of whatever the feed holds. Cross-screen
// propagation of its vote toggles rides on the mutator's settle path, so the
// feed only ever picks up outcomes that survived persistence.
type DetailView struct {
	api    dealAPI
	dealID string
}

func NewDetailView(api dealAPI, dealID string) *DetailView {
	return &DetailView{
		api:    api,
		dealID: dealID,
	}
}

// Open loads the deal into its detail cache entry.
func (v *DetailView) Open(ctx context.Context) (entity.Deal, error) {
	return v.api.Deal(ctx, v.dealID)
}

// Vote applies the toggle. The returned deal is the optimistic next state;
// the settled state reaches other screens through the pending buffer once
// persistence resolves.
func (v *DetailView) Vote(ctx context.Context, kind value.VoteKind) (entity.Deal, error) {
	return v.api.Vote(ctx, v.dealID, kind)
}
