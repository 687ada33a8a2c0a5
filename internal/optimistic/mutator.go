package optimistic

import (
	"context"
	"log/slog"
	"sync"

	"imhungri/pkg/contextx"
	"imhungri/pkg/errcodes"
	"imhungri/pkg/logx"

	"imhungri/internal/domain"
	"imhungri/internal/domain/entity"
	"imhungri/internal/domain/value"
	"imhungri/internal/querycache"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type PersistFunc func(ctx context.Context) error

type tokenKey struct {
	dealID string
	kind   value.VoteKind
}

// Mutator applies a user-initiated toggle to every cache copy of a deal
// synchronously, then persists it in the background, reverting the copies on
// failure.
//
// Rapid repeated taps are resolved with a per (deal id, kind) token: each
// mutation takes the next token, and only the outcome of the latest token may
// touch the cache. A slow failure from an earlier tap is discarded instead of
// clobbering newer optimistic state.
type Mutator struct {
	cache *querycache.Cache

	mu          sync.Mutex
	tokens      map[tokenKey]uint64
	settleHooks []func(dealID string, deal entity.Deal)

	wg sync.WaitGroup
}

func NewMutator(cache *querycache.Cache) *Mutator {
	return &Mutator{
		cache:  cache,
		tokens: make(map[tokenKey]uint64),
	}
}

// Do runs one optimistic mutation cycle.
//
// The next state is written into every key that currently holds a copy of the
// deal before Do returns, so the UI reflects the change in the same render
// pass. Persistence failures are reverted and swallowed: callers never handle
// them. The returned deal is the optimistic next state.
func (m *Mutator) Do(
	ctx context.Context,
	dealID string,
	kind value.VoteKind,
	keys []querycache.Key,
	next func(entity.Deal) entity.Deal,
	persist PersistFunc,
) (entity.Deal, error) {
	snapshots := make(map[querycache.Key]entity.Deal, len(keys))

	var nextDeal, snapshot entity.Deal

	found := false

	for _, key := range keys {
		var (
			prev entity.Deal
			ok   bool
		)

		m.cache.Update(key, func(data any) any {
			var updated any
			updated, prev, ok = updateDealIn(data, dealID, next)
			return updated
		})

		if ok {
			if !found {
				snapshot = prev
			}

			snapshots[key] = prev
			nextDeal = next(prev)
			found = true
		}
	}

	if !found {
		return entity.Deal{}, domain.NewError(errcodes.DealNotFound, "deal not in cache")
	}

	token := m.take(dealID, kind)

	mutationsTotal.WithLabelValues(kind.String()).Inc()
	m.wg.Add(1)

	// The persist call outlives the tap handler; screen unmount does not
	// cancel it.
	bgCtx := context.WithoutCancel(ctx)

	go func() {
		defer m.wg.Done()

		err := persist(bgCtx)
		if err == nil {
			m.settle(dealID, kind, token)

			if d, ok := m.currentDeal(keys, dealID); ok {
				m.notifySettle(dealID, d)
			}

			return
		}

		if !m.isLatest(dealID, kind, token) {
			logger(bgCtx).Debug(
				"stale persist outcome discarded",
				slog.String(logx.FieldDealID, dealID),
				slog.String(logx.FieldVoteKind, kind.String()),
				slog.Uint64(logx.FieldMutationToken, token),
			)

			return
		}

		m.settle(dealID, kind, token)

		revertsTotal.WithLabelValues(kind.String()).Inc()
		logger(bgCtx).Error(
			"persistence failed, reverting optimistic state",
			slog.String(logx.FieldDealID, dealID),
			slog.String(logx.FieldVoteKind, kind.String()),
			logx.Error(domain.WrapError(err, errcodes.PersistenceFailed, "optimistic persist rejected")),
		)

		for key, prev := range snapshots {
			m.cache.Update(key, func(data any) any {
				updated, _, _ := updateDealIn(data, dealID, func(entity.Deal) entity.Deal {
					return prev
				})
				return updated
			})
		}

		// The revert is settled state too: hand the restored snapshot to
		// subscribers so a buffered optimistic patch cannot outlive the
		// rejection.
		m.notifySettle(dealID, snapshot)
	}()

	return nextDeal, nil
}

// OnSettle registers fn to run after a mutation's persist outcome has been
// applied to the cache: on success fn receives the deal's current cached
// state, on a reverted failure the restored snapshot. Stale outcomes do not
// fire. Settle hooks are how cross-screen buffers converge on the settled
// state instead of a later-rejected optimistic one.
func (m *Mutator) OnSettle(fn func(dealID string, deal entity.Deal)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.settleHooks = append(m.settleHooks, fn)
}

func (m *Mutator) notifySettle(dealID string, deal entity.Deal) {
	m.mu.Lock()
	hooks := make([]func(string, entity.Deal), len(m.settleHooks))
	copy(hooks, m.settleHooks)
	m.mu.Unlock()

	for _, fn := range hooks {
		fn(dealID, deal)
	}
}

// Wait blocks until all in-flight persists settle. For tests and shutdown.
func (m *Mutator) Wait() {
	m.wg.Wait()
}

func (m *Mutator) take(dealID string, kind value.VoteKind) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	tk := tokenKey{dealID: dealID, kind: kind}
	m.tokens[tk]++

	return m.tokens[tk]
}

func (m *Mutator) isLatest(dealID string, kind value.VoteKind, token uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.tokens[tokenKey{dealID: dealID, kind: kind}] == token
}

func (m *Mutator) settle(dealID string, kind value.VoteKind, token uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tk := tokenKey{dealID: dealID, kind: kind}
	if m.tokens[tk] == token {
		delete(m.tokens, tk)
	}
}

func (m *Mutator) currentDeal(keys []querycache.Key, dealID string) (entity.Deal, bool) {
	for _, key := range keys {
		data, ok := m.cache.Peek(key)
		if !ok {
			continue
		}

		if d, ok := findDealIn(data, dealID); ok {
			return d, true
		}
	}

	return entity.Deal{}, false
}

func findDealIn(data any, dealID string) (entity.Deal, bool) {
	switch v := data.(type) {
	case []entity.Deal:
		for _, d := range v {
			if d.ID == dealID {
				return d, true
			}
		}
	case entity.Deal:
		if v.ID == dealID {
			return v, true
		}
	}

	return entity.Deal{}, false
}

// updateDealIn applies fn to the deal's copy inside a cache entry, which is
// either a feed slice or a single detail deal. Cached data is never mutated
// in place: list entries are copied so readers always observe a fully-formed
// version.
func updateDealIn(data any, dealID string, fn func(entity.Deal) entity.Deal) (any, entity.Deal, bool) {
	switch v := data.(type) {
	case []entity.Deal:
		for i, d := range v {
			if d.ID != dealID {
				continue
			}

			updated := make([]entity.Deal, len(v))
			copy(updated, v)
			updated[i] = fn(d)

			return updated, d, true
		}

		return v, entity.Deal{}, false
	case entity.Deal:
		if v.ID != dealID {
			return v, entity.Deal{}, false
		}

		return fn(v), v, true
	default:
		return data, entity.Deal{}, false
	}
}
