// Package coordinator drives sequential page fetches for a search feed
// and keeps the externally visible URL state in agreement with the
// page cache.
//
// The URL is the single source of truth for "what page am I on". The
// coordinator only ever advances the URL after a successful append
// (success-then-advance), so a reload at any moment reproduces exactly
// what was visible. Conversely, when the URL claims a deeper page than
// the cache holds - a shared deep link, a reload, back/forward - the
// coordinator replays the missing pages strictly in order.
package coordinator

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tigerabrodi/hinata/pkg/feed"
	"github.com/tigerabrodi/hinata/pkg/navigation"
	"github.com/tigerabrodi/hinata/pkg/query"
)

// Fetcher is the external collaborator performing the actual search
// request. The coordinator never does network I/O itself.
type Fetcher interface {
	SearchPhotos(ctx context.Context, q query.SearchQuery, page int) (feed.Page, error)
}

// Phase is the coordinator's externally observable state.
type Phase string

const (
	// PhaseIdle means no active query (empty search text).
	PhaseIdle Phase = "idle"

	// PhaseSyncing means the URL requests a deeper page than the cache
	// holds and intermediate fetches are being replayed.
	PhaseSyncing Phase = "syncing"

	// PhaseSettled means cache depth satisfies the URL's requested
	// page and no fetch is outstanding.
	PhaseSettled Phase = "settled"

	// PhaseFetchingNext means one additional page is in flight from a
	// user-triggered load-more.
	PhaseFetchingNext Phase = "fetching_next"

	// PhaseErrored means the last fetch failed. The only retry path is
	// the same user action that triggered the fetch.
	PhaseErrored Phase = "errored"
)

// Coordinator orchestrates fetches for one navigator. The cache may be
// shared across coordinators; per-identity mutual exclusion lives in
// the cache's fetch status, so a fetch issued for an identity the user
// has since navigated away from still lands in that identity's own
// feed state - it just may never be rendered.
type Coordinator struct {
	cache   *feed.Cache
	fetcher Fetcher
	nav     navigation.Navigator
	logger  zerolog.Logger

	mu    sync.Mutex
	phase Phase
}

// New creates a coordinator over the given cache, fetcher and
// navigator. All three are owned by the composition root.
func New(cache *feed.Cache, fetcher Fetcher, nav navigation.Navigator, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		cache:   cache,
		fetcher: fetcher,
		nav:     nav,
		logger:  logger.With().Str("component", "coordinator").Logger(),
		phase:   PhaseIdle,
	}
}

// Phase returns the current coordinator phase.
func (c *Coordinator) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Coordinator) setPhase(p Phase) {
	c.mu.Lock()
	c.phase = p
	c.mu.Unlock()
}

// Submit navigates to a new search. A change in any field besides the
// page number restarts pagination at page 1 - surfacing a deep page of
// stale-filtered results would be worse than starting over. The new
// params get a fresh history entry, then the feed is synced.
func (c *Coordinator) Submit(ctx context.Context, params navigation.Params) error {
	if !params.SameSearch(c.nav.Current()) {
		params.Page = 1
	}
	c.nav.Push(params)
	return c.Sync(ctx)
}

// Sync brings the cache up to the page depth the URL requests,
// fetching missing pages sequentially, one at a time, never out of
// order. It stops early when the API reports no further pages or a
// fetch fails. A fetch already in flight for the identity suppresses
// the replay entirely rather than queueing behind it.
func (c *Coordinator) Sync(ctx context.Context) error {
	params := c.nav.Current()
	q := params.SearchQuery()
	if !q.IsActive() {
		c.setPhase(PhaseIdle)
		return nil
	}
	id := q.Identity()

	for {
		count, _ := c.cache.Snapshot(id)
		if count >= params.Page {
			c.setPhase(PhaseSettled)
			return nil
		}
		if count > 0 && !c.cache.HasNextPage(id) {
			// The URL asks for more pages than the API has. Settle on
			// what exists; the URL is left alone.
			c.logger.Warn().
				Str("identity", string(id)).
				Int("requested_page", params.Page).
				Int("available_pages", count).
				Msg("URL requests pages beyond API total")
			c.setPhase(PhaseSettled)
			return nil
		}

		c.setPhase(PhaseSyncing)
		fetched, err := c.fetchPage(ctx, id, q, count+1, "sync")
		if err != nil {
			c.setPhase(PhaseErrored)
			return err
		}
		if !fetched {
			// Another driver holds the in-flight slot for this
			// identity; replaying would double-fetch.
			return nil
		}
	}
}

// LoadMore issues exactly one fetch for the next page, triggered by the
// user (or the infinite-scroll sentinel acting for them). It is a
// no-op unless the feed has a next page and no fetch is in flight -
// that check is the backpressure keeping rapid scrolling from turning
// into a request storm. The URL page number advances only after the
// fetch succeeds, and via Replace so incremental loads do not pollute
// back/forward history.
func (c *Coordinator) LoadMore(ctx context.Context) error {
	params := c.nav.Current()
	q := params.SearchQuery()
	if !q.IsActive() {
		c.setPhase(PhaseIdle)
		return nil
	}
	id := q.Identity()

	if !c.cache.HasNextPage(id) {
		return nil
	}
	count, status := c.cache.Snapshot(id)
	if status == feed.StatusFetching {
		return nil
	}

	c.setPhase(PhaseFetchingNext)
	fetched, err := c.fetchPage(ctx, id, q, count+1, "load_more")
	if err != nil {
		c.setPhase(PhaseErrored)
		return err
	}
	if !fetched {
		return nil
	}

	params.Page = count + 1
	c.nav.Replace(params)
	c.setPhase(PhaseSettled)
	return nil
}

// fetchPage performs one guarded fetch-and-append. The identity is
// captured at issue time, so a result arriving after the user navigated
// to a different search still appends to the right feed state.
// Returns fetched=false when suppressed by an in-flight fetch.
func (c *Coordinator) fetchPage(ctx context.Context, id query.Identity, q query.SearchQuery, page int, op string) (bool, error) {
	if !c.cache.BeginFetch(id) {
		c.logger.Debug().
			Str("identity", string(id)).
			Int("page", page).
			Msg("Fetch suppressed, already in flight")
		return false, nil
	}

	result, err := c.fetcher.SearchPhotos(ctx, q, page)
	if err != nil {
		c.cache.MarkErrored(id)
		fetchesTotal.WithLabelValues(op, "error").Inc()
		c.logger.Warn().
			Err(err).
			Str("identity", string(id)).
			Int("page", page).
			Msg("Page fetch failed")
		return false, err
	}

	if err := c.cache.AppendPage(id, page, result); err != nil {
		fetchesTotal.WithLabelValues(op, "append_error").Inc()
		return false, err
	}
	fetchesTotal.WithLabelValues(op, "success").Inc()
	return true, nil
}
