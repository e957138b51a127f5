package coordinator

import (
	"github.com/tigerabrodi/hinata/pkg/feed"
)

// ViewState is the user-visible render state. Exactly one applies at a
// time: loading (skeleton), results, empty (no matches) and error are
// mutually exclusive by construction.
type ViewState string

const (
	// ViewIdle means there is nothing to show: no active query.
	ViewIdle ViewState = "idle"

	// ViewLoading means the first page is still in flight (skeleton).
	ViewLoading ViewState = "loading"

	// ViewResults means at least one photo is available to render.
	ViewResults ViewState = "results"

	// ViewEmpty means the search completed with no matches.
	ViewEmpty ViewState = "empty"

	// ViewError means the last fetch failed and nothing is cached.
	ViewError ViewState = "error"
)

// View is a render-ready snapshot of the current feed.
type View struct {
	State       ViewState              `json:"state"`
	Photos      []feed.PhotoWithOrigin `json:"photos"`
	TotalItems  int                    `json:"total_items"`
	HasNextPage bool                   `json:"has_next_page"`
}

// View derives the current render state from the navigator and cache.
//
// Priority order mirrors what the user should see: a skeleton while the
// first page loads, results whenever any photo is cached (even if a
// later fetch failed - stale results beat an error screen), then the
// error state, then empty.
func (c *Coordinator) View() View {
	params := c.nav.Current()
	q := params.SearchQuery()
	if !q.IsActive() {
		return View{State: ViewIdle}
	}
	id := q.Identity()

	count, status := c.cache.Snapshot(id)
	photos := c.cache.Flatten(id)

	view := View{
		Photos:      photos,
		TotalItems:  c.cache.TotalItems(id),
		HasNextPage: c.cache.HasNextPage(id),
	}

	switch {
	case status == feed.StatusFetching && count == 0:
		view.State = ViewLoading
	case len(photos) > 0:
		view.State = ViewResults
	case status == feed.StatusErrored:
		view.State = ViewError
	case status == feed.StatusFetched:
		view.State = ViewEmpty
	default:
		// Active query, nothing fetched yet: the skeleton is about to
		// appear, show it already.
		view.State = ViewLoading
	}
	return view
}
