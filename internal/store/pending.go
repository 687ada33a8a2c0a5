package store

import (
	"sync"

	"imhungri/internal/domain/entity"
)

// PendingUpdates carries deal patches between screens that do not share a
// cache key: a detail screen publishes, the feed consumes on focus.
//
// Patches live for the process only and have no TTL. A patch nobody consumes
// is simply never applied; the backend stays the source of truth.
type PendingUpdates struct {
	mu      sync.Mutex
	patches map[string]entity.DealPatch
}

func NewPendingUpdates() *PendingUpdates {
	return &PendingUpdates{
		patches: make(map[string]entity.DealPatch),
	}
}

// Publish merges patch into any pending patch for id, last write wins per
// field.
func (p *PendingUpdates) Publish(id string, patch entity.DealPatch) {
	if patch.IsZero() {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.patches[id] = p.patches[id].Merge(patch)
}

// Consume returns the pending patch for id and atomically removes it.
func (p *PendingUpdates) Consume(id string) (entity.DealPatch, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	patch, ok := p.patches[id]
	if ok {
		delete(p.patches, id)
	}

	return patch, ok
}

// Clear removes the pending patch for id without returning it.
func (p *PendingUpdates) Clear(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.patches, id)
}

// Len reports the number of pending patches.
func (p *PendingUpdates) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.patches)
}
