package store

import (
	"sync"

	"imhungri/internal/domain/value"
)

// Location keeps the last known device coordinates for feed/discovery
// queries.
type Location struct {
	mu     sync.RWMutex
	coords value.Coordinates
	known  bool
}

func NewLocation() *Location {
	return &Location{}
}

func (l *Location) Set(coords value.Coordinates) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.coords = coords
	l.known = true
}

func (l *Location) Get() (value.Coordinates, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.coords, l.known
}
