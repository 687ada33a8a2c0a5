package querycache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals
var (
	hitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imhungri_querycache_hits_total",
		Help: "Reads served from cache within the stale window.",
	}, []string{"key"})

	staleServesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imhungri_querycache_stale_serves_total",
		Help: "Reads served from cache past the stale window.",
	}, []string{"key"})

	missesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imhungri_querycache_misses_total",
		Help: "Reads that blocked on a first fetch.",
	}, []string{"key"})

	refetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imhungri_querycache_refetches_total",
		Help: "Background refetches scheduled for stale entries.",
	}, []string{"key"})
)
