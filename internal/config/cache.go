package config

import (
	"time"

	"imhungri/internal/querycache"
)

// Cache carries the staleness windows per query family. Feed data changes
// fast, profiles and restaurants barely at all.
type Cache struct {
	FeedStaleTime        time.Duration `env:"CACHE_FEED_STALE_TIME" envDefault:"30s"`
	FeedRetentionTime    time.Duration `env:"CACHE_FEED_RETENTION_TIME" envDefault:"5m"`
	DealStaleTime        time.Duration `env:"CACHE_DEAL_STALE_TIME" envDefault:"30s"`
	DealRetentionTime    time.Duration `env:"CACHE_DEAL_RETENTION_TIME" envDefault:"5m"`
	ProfileStaleTime     time.Duration `env:"CACHE_PROFILE_STALE_TIME" envDefault:"5m"`
	ProfileRetentionTime time.Duration `env:"CACHE_PROFILE_RETENTION_TIME" envDefault:"30m"`
	PlacesStaleTime      time.Duration `env:"CACHE_PLACES_STALE_TIME" envDefault:"10m"`
	PlacesRetentionTime  time.Duration `env:"CACHE_PLACES_RETENTION_TIME" envDefault:"1h"`
}

func (c Cache) FeedPolicy() querycache.Policy {
	return querycache.Policy{StaleTime: c.FeedStaleTime, RetentionTime: c.FeedRetentionTime}
}

func (c Cache) DealPolicy() querycache.Policy {
	return querycache.Policy{StaleTime: c.DealStaleTime, RetentionTime: c.DealRetentionTime}
}

func (c Cache) ProfilePolicy() querycache.Policy {
	return querycache.Policy{StaleTime: c.ProfileStaleTime, RetentionTime: c.ProfileRetentionTime}
}

func (c Cache) PlacesPolicy() querycache.Policy {
	return querycache.Policy{StaleTime: c.PlacesStaleTime, RetentionTime: c.PlacesRetentionTime}
}
