package coordinator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// fetchesTotal counts coordinator-driven page fetches by operation
	// (sync, load_more) and outcome.
	fetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_coordinator_fetches_total",
			Help: "Total coordinator page fetches by operation and status",
		},
		[]string{"operation", "status"},
	)
)
