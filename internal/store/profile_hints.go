package store

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"imhungri/internal/domain/entity"
)

const profileHintCleanupInterval = 10 * time.Minute

// ProfileHints caches last-known display profiles as a fast-path hint while
// the real profile loads. Never a source of truth.
type ProfileHints struct {
	cache *gocache.Cache
	ttl   time.Duration
}

func NewProfileHints(ttl time.Duration) *ProfileHints {
	return &ProfileHints{
		cache: gocache.New(ttl, profileHintCleanupInterval),
		ttl:   ttl,
	}
}

func (h *ProfileHints) Put(profile entity.Profile) {
	h.cache.Set(profile.ID, profile, h.ttl)
}

func (h *ProfileHints) Get(id string) (entity.Profile, bool) {
	v, ok := h.cache.Get(id)
	if !ok {
		return entity.Profile{}, false
	}

	return v.(entity.Profile), true
}
