package optimistic

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals
var (
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imhungri_optimistic_mutations_total",
		Help: "Optimistic mutations started.",
	}, []string{"kind"})

	revertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imhungri_optimistic_reverts_total",
		Help: "Optimistic mutations reverted after a persistence failure.",
	}, []string{"kind"})
)
