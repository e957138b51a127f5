// Package prefetch warms caches for the views a hovering user is about
// to open: the photo's detail, its owner's profile and the owner's
// first batch of photos. Purely a side channel - it never touches the
// visible feed state and never surfaces an error.
package prefetch

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/tigerabrodi/hinata/pkg/feed"
)

// The owner-photos endpoint is not paginated search; one generous batch
// covers the profile grid.
const (
	OwnerPhotosPage    = 1
	OwnerPhotosPerPage = 50
)

var prefetchesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gallery_prefetches_total",
		Help: "Total prefetch requests by target and status",
	},
	[]string{"target", "status"},
)

// API is the slice of the fetch collaborator the scheduler needs.
type API interface {
	GetPhoto(ctx context.Context, id string) (*feed.Photo, error)
	GetUser(ctx context.Context, username string) (*feed.User, error)
	GetUserPhotos(ctx context.Context, username string, page, perPage int) ([]feed.Photo, error)
}

// Scheduler fires best-effort warming fetches. It does no
// de-duplication of its own: repeated hovers are absorbed by the fetch
// collaborator's response cache, which is exactly the staleness window
// the direct navigation path uses.
type Scheduler struct {
	api    API
	logger zerolog.Logger
}

// NewScheduler creates a scheduler over the shared fetch collaborator.
func NewScheduler(api API, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		api:    api,
		logger: logger.With().Str("component", "prefetch").Logger(),
	}
}

// Prefetch launches up to three independent, unawaited fetches for the
// photo: detail, owner profile, owner photos. Safe to call redundantly;
// failures are swallowed (logged at debug only).
func (s *Scheduler) Prefetch(ctx context.Context, photo feed.Photo) {
	go s.warm(ctx, "photo_detail", func() error {
		_, err := s.api.GetPhoto(ctx, photo.ID)
		return err
	})

	username := photo.User.Username
	if username == "" {
		return
	}
	go s.warm(ctx, "owner_detail", func() error {
		_, err := s.api.GetUser(ctx, username)
		return err
	})
	go s.warm(ctx, "owner_photos", func() error {
		_, err := s.api.GetUserPhotos(ctx, username, OwnerPhotosPage, OwnerPhotosPerPage)
		return err
	})
}

func (s *Scheduler) warm(_ context.Context, target string, fetch func() error) {
	if err := fetch(); err != nil {
		prefetchesTotal.WithLabelValues(target, "error").Inc()
		s.logger.Debug().Err(err).Str("target", target).Msg("Prefetch failed")
		return
	}
	prefetchesTotal.WithLabelValues(target, "warmed").Inc()
}
