package feed

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tigerabrodi/hinata/pkg/query"
)

var (
	// ErrOutOfOrderInsertion indicates a page was appended out of
	// sequence. The coordinator guarantees sequential fetch order, so
	// hitting this is a coordination bug, not a recoverable condition.
	ErrOutOfOrderInsertion = errors.New("out-of-order page insertion")
)

// Status is the fetch status of one identity's feed. It doubles as the
// mutual-exclusion flag guaranteeing at most one fetch in flight per
// identity.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusFetching Status = "fetching"
	StatusFetched  Status = "fetched"
	StatusErrored  Status = "errored"
)

// State is the ordered pages and fetch status for one identity.
// Pages only grow, in page-number order, and are never evicted; the
// cache is bounded by the size of a single search session.
type State struct {
	pages  []Page
	status Status
}

// PageCount returns the number of pages cached so far.
func (s *State) PageCount() int { return len(s.pages) }

// Status returns the current fetch status.
func (s *State) Status() Status { return s.status }

// Cache is the append-only page cache, a registry of feed states keyed
// by search identity. It is owned by the composition root and handed to
// the coordinator and prefetch scheduler explicitly; there is no
// package-level instance.
//
// The cache performs no I/O itself - fetching is the coordinator's job.
type Cache struct {
	mu     sync.Mutex
	feeds  map[query.Identity]*State
	logger zerolog.Logger
}

// NewCache creates an empty cache.
func NewCache(logger zerolog.Logger) *Cache {
	return &Cache{
		feeds:  make(map[query.Identity]*State),
		logger: logger.With().Str("component", "feed-cache").Logger(),
	}
}

// locked returns the state for the identity, creating a fresh idle one
// on first access. Caller must hold c.mu.
func (c *Cache) locked(id query.Identity) *State {
	state, ok := c.feeds[id]
	if !ok {
		state = &State{status: StatusIdle}
		c.feeds[id] = state
		c.logger.Debug().Str("identity", string(id)).Msg("Created feed state")
	}
	return state
}

// Snapshot returns the current page count and status for the identity,
// lazily creating the state on first access.
func (c *Cache) Snapshot(id query.Identity) (pageCount int, status Status) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.locked(id)
	return len(state.pages), state.status
}

// BeginFetch flips the identity's status to fetching. It returns false
// without side effects when a fetch is already in flight - the caller
// must treat that as a no-op, not queue a retry.
func (c *Cache) BeginFetch(id query.Identity) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.locked(id)
	if state.status == StatusFetching {
		FetchSuppressed.Inc()
		return false
	}
	state.status = StatusFetching
	return true
}

// AppendPage inserts the page at pageNumber (1-based) and marks the
// feed fetched. The page number must be exactly one past the highest
// cached page; anything else returns ErrOutOfOrderInsertion and resets
// the status so the feed is not wedged in fetching.
func (c *Cache) AppendPage(id query.Identity, pageNumber int, page Page) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.locked(id)
	if want := len(state.pages) + 1; pageNumber != want {
		state.status = StatusErrored
		OutOfOrderInsertions.Inc()
		c.logger.Error().
			Str("identity", string(id)).
			Int("page", pageNumber).
			Int("expected", want).
			Msg("Out-of-order page insertion")
		return fmt.Errorf("%w: got page %d, expected %d", ErrOutOfOrderInsertion, pageNumber, want)
	}

	state.pages = append(state.pages, page)
	state.status = StatusFetched
	PagesAppended.Inc()
	PhotosCached.Add(float64(len(page.Photos)))

	c.logger.Debug().
		Str("identity", string(id)).
		Int("page", pageNumber).
		Int("photos", len(page.Photos)).
		Int("total_pages", page.TotalPages).
		Msg("Appended page")
	return nil
}

// MarkErrored records a failed fetch. The failed page is not appended;
// the user's next action is the only retry path.
func (c *Cache) MarkErrored(id query.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.locked(id).status = StatusErrored
}

// Flatten concatenates the photos of every cached page in page order,
// tagging each with its zero-based page index. Recomputed on demand;
// at session scale there is nothing worth diffing incrementally.
func (c *Cache) Flatten(id query.Identity) []PhotoWithOrigin {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.locked(id)
	out := make([]PhotoWithOrigin, 0, len(state.pages)*12)
	for pageIndex, page := range state.pages {
		for _, photo := range page.Photos {
			out = append(out, PhotoWithOrigin{Photo: photo, PageIndex: pageIndex})
		}
	}
	return out
}

// HasNextPage reports whether more pages exist beyond what is cached.
// Before the first fetch the answer is optimistically true. Once pages
// exist, the server-declared TotalPages of the last page is
// authoritative - even if TotalItems implies more.
func (c *Cache) HasNextPage(id query.Identity) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.locked(id)
	if len(state.pages) == 0 {
		return true
	}
	last := state.pages[len(state.pages)-1]
	return len(state.pages) < last.TotalPages
}

// TotalItems returns the server-declared total result count, or 0
// before the first page arrives.
func (c *Cache) TotalItems(id query.Identity) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.locked(id)
	if len(state.pages) == 0 {
		return 0
	}
	return state.pages[0].TotalItems
}
