package feed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PagesAppended counts pages successfully appended to any feed.
	PagesAppended = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_feed_pages_appended_total",
			Help: "Total number of result pages appended to feed caches",
		},
	)

	// PhotosCached counts photos accumulated across all feeds.
	PhotosCached = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_feed_photos_cached_total",
			Help: "Total number of photos stored in feed caches",
		},
	)

	// OutOfOrderInsertions counts violations of the sequential append
	// invariant. Any non-zero value indicates a coordination bug.
	OutOfOrderInsertions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_feed_out_of_order_insertions_total",
			Help: "Total number of rejected out-of-order page insertions",
		},
	)

	// FetchSuppressed counts fetch attempts rejected because one was
	// already in flight for the same identity.
	FetchSuppressed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_feed_fetch_suppressed_total",
			Help: "Total number of duplicate in-flight fetches suppressed",
		},
	)
)
