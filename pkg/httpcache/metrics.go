package httpcache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks response cache hits.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_response_cache_hits_total",
			Help: "Total number of photo API response cache hits",
		},
	)

	// CacheMisses tracks response cache misses.
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_response_cache_misses_total",
			Help: "Total number of photo API response cache misses",
		},
	)

	// CacheSize tracks bytes written to the response cache.
	CacheSize = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_response_cache_written_bytes_total",
			Help: "Total bytes written to the photo API response cache",
		},
	)

	// CacheErrors tracks cache operation errors.
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_response_cache_errors_total",
			Help: "Total number of response cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
