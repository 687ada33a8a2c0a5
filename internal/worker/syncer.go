package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"imhungri/pkg/contextx"
	"imhungri/pkg/logx"

	"imhungri/internal/domain/entity"
	"imhungri/internal/infrastructure/realtime"
	"imhungri/internal/querycache"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// Syncer folds realtime deal events into the query cache. Server tallies win
// over any local arithmetic: an update event overwrites the cached counter
// but keeps the viewer's own vote flags, which the server event does not
// carry.
type Syncer struct {
	events <-chan realtime.Event
	cache  *querycache.Cache

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	isRunning  bool
	wg         sync.WaitGroup
}

func NewSyncer(events <-chan realtime.Event, cache *querycache.Cache) *Syncer {
	return &Syncer{
		events: events,
		cache:  cache,
	}
}

func (w *Syncer) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return errors.New("syncer is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel
	w.isRunning = true

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			w.isRunning = false
			w.cancelFunc = nil
			w.mu.Unlock()
		}()

		w.Run(runCtx)
	}()

	return nil
}

func (w *Syncer) Stop() {
	w.mu.Lock()

	if !w.isRunning {
		w.mu.Unlock()
		return
	}

	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	w.mu.Unlock()

	w.wg.Wait()
}

func (w *Syncer) Run(ctx context.Context) {
	logger(ctx).Info("realtime syncer started")

	for {
		select {
		case <-ctx.Done():
			logger(ctx).Info("realtime syncer stopped")
			return
		case event, ok := <-w.events:
			if !ok {
				logger(ctx).Info("event stream closed, syncer stopping")
				return
			}

			w.apply(ctx, event)
		}
	}
}

func (w *Syncer) apply(ctx context.Context, event realtime.Event) {
	switch event.Op {
	case realtime.OpUpdate:
		if event.Votes == nil {
			return
		}

		w.setVotes(event.DealID, *event.Votes)
	case realtime.OpDelete:
		w.removeDeal(event.DealID)
	default:
		logger(ctx).Warn("unknown realtime op",
			slog.String("op", event.Op),
			slog.String(logx.FieldDealID, event.DealID))
	}
}

func (w *Syncer) setVotes(dealID string, votes int) {
	patch := func(d entity.Deal) entity.Deal {
		d.Votes = votes
		return d
	}

	w.cache.Update(querycache.KeyDeal(dealID), func(data any) any {
		if d, ok := data.(entity.Deal); ok && d.ID == dealID {
			return patch(d)
		}

		return data
	})

	w.cache.Update(querycache.KeyFeed, func(data any) any {
		deals, ok := data.([]entity.Deal)
		if !ok {
			return data
		}

		for i, d := range deals {
			if d.ID != dealID {
				continue
			}

			updated := make([]entity.Deal, len(deals))
			copy(updated, deals)
			updated[i] = patch(d)

			return updated
		}

		return deals
	})
}

func (w *Syncer) removeDeal(dealID string) {
	w.cache.Remove(querycache.KeyDeal(dealID))

	w.cache.Update(querycache.KeyFeed, func(data any) any {
		deals, ok := data.([]entity.Deal)
		if !ok {
			return data
		}

		updated := make([]entity.Deal, 0, len(deals))

		for _, d := range deals {
			if d.ID != dealID {
				updated = append(updated, d)
			}
		}

		return updated
	})
}
