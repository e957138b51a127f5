// Package query defines search parameters and derives the stable cache
// identities that group all pages of one logical search.
package query

import (
	"fmt"
	"strings"
)

// OrderBy controls the result ordering of a photo search.
type OrderBy string

const (
	// OrderByRelevant sorts results by relevance (API default).
	OrderByRelevant OrderBy = "relevant"

	// OrderByLatest sorts results by upload time, newest first.
	OrderByLatest OrderBy = "latest"
)

// IsValid reports whether the order is one of the supported values.
func (o OrderBy) IsValid() bool {
	return o == OrderByRelevant || o == OrderByLatest
}

// Color is an optional color filter for a photo search.
// An empty Color means no filter.
type Color string

// Supported color filter values.
const (
	ColorBlackAndWhite Color = "black_and_white"
	ColorBlack         Color = "black"
	ColorWhite         Color = "white"
	ColorYellow        Color = "yellow"
	ColorOrange        Color = "orange"
	ColorRed           Color = "red"
	ColorPurple        Color = "purple"
	ColorMagenta       Color = "magenta"
	ColorGreen         Color = "green"
	ColorTeal          Color = "teal"
	ColorBlue          Color = "blue"
)

// Colors lists all supported color filters in a stable order.
var Colors = []Color{
	ColorBlackAndWhite,
	ColorBlack,
	ColorWhite,
	ColorYellow,
	ColorOrange,
	ColorRed,
	ColorPurple,
	ColorMagenta,
	ColorGreen,
	ColorTeal,
	ColorBlue,
}

// IsValid reports whether the color is empty (no filter) or one of the
// supported values.
func (c Color) IsValid() bool {
	if c == "" {
		return true
	}
	for _, known := range Colors {
		if c == known {
			return true
		}
	}
	return false
}

// SearchQuery holds the normalized parameters of one photo search.
// A SearchQuery is a value: construct a new one instead of mutating.
// The page number is deliberately not part of the query - all pages of
// a search share one cache identity.
type SearchQuery struct {
	// Text is the search term. A query with empty (or all-whitespace)
	// text is inactive and never triggers a fetch.
	Text string

	// OrderBy is the result ordering. Zero value means relevant.
	OrderBy OrderBy

	// Color is the optional color filter. Empty means no filter.
	Color Color

	// PerPage is the page size requested from the API.
	PerPage int
}

// IsActive reports whether the query has non-empty search text after
// trimming whitespace. Inactive queries collapse to SentinelIdentity.
func (q SearchQuery) IsActive() bool {
	return strings.TrimSpace(q.Text) != ""
}

// Identity is a stable key grouping all pages of one logical search.
// Equal queries (page excluded) derive equal identities.
type Identity string

// SentinelIdentity is the reserved identity shared by all inactive
// (empty-text) queries. No fetch ever populates it, so blank queries
// cost nothing and allocate a single cache slot.
const SentinelIdentity Identity = "photos:placeholder"

// Identity derives the cache identity for the query.
//
// The derived tuple order is fixed: text, orderBy, color, perPage.
// Changing the order invalidates every existing cache key, so treat
// any modification here as a breaking change.
func (q SearchQuery) Identity() Identity {
	if !q.IsActive() {
		return SentinelIdentity
	}

	orderBy := q.OrderBy
	if orderBy == "" {
		orderBy = OrderByRelevant
	}

	parts := []string{
		"photos", "search",
		strings.TrimSpace(q.Text),
		string(orderBy),
		string(q.Color),
		fmt.Sprintf("%d", q.PerPage),
	}
	return Identity(strings.Join(parts, ":"))
}

// PhotoDetailIdentity derives the cache identity for one photo's detail view.
func PhotoDetailIdentity(photoID string) Identity {
	if photoID == "" {
		return SentinelIdentity
	}
	return Identity("photos:" + photoID)
}

// UserDetailIdentity derives the cache identity for one user's profile.
func UserDetailIdentity(username string) Identity {
	if username == "" {
		return SentinelIdentity
	}
	return Identity("users:" + username)
}

// UserPhotosIdentity derives the cache identity for one user's photo listing.
func UserPhotosIdentity(username string) Identity {
	if username == "" {
		return SentinelIdentity
	}
	return Identity("users:" + username + ":photos")
}
