// Package navigation models the address-bar contract of the gallery:
// the URL query string is the single source of truth for what the user
// is looking at, including how deep they have paginated.
package navigation

import (
	"net/url"
	"strconv"

	"github.com/tigerabrodi/hinata/pkg/query"
)

// Query-parameter names as they appear in the URL.
const (
	ParamQuery   = "query"
	ParamPage    = "page"
	ParamColor   = "color"
	ParamOrderBy = "orderBy"
)

// DefaultPerPage is the fixed page size. It is part of the cache
// identity but is never serialized into the URL.
const DefaultPerPage = 12

// Params is the navigable state of the gallery.
type Params struct {
	Query   string
	Page    int
	Color   query.Color
	OrderBy query.OrderBy
}

// SearchQuery converts the params into a normalized search query with
// the fixed page size applied.
func (p Params) SearchQuery() query.SearchQuery {
	return query.SearchQuery{
		Text:    p.Query,
		OrderBy: p.OrderBy,
		Color:   p.Color,
		PerPage: DefaultPerPage,
	}
}

// SameSearch reports whether two params describe the same search,
// ignoring the page number.
func (p Params) SameSearch(other Params) bool {
	return p.SearchQuery().Identity() == other.SearchQuery().Identity()
}

// ParseParams decodes URL query values into Params, applying defaults:
// page 1, orderBy relevant. Unknown color or orderBy values fall back
// to their defaults rather than failing - a garbled URL should degrade
// to a working search, not an error page.
func ParseParams(values url.Values) Params {
	p := Params{
		Query:   values.Get(ParamQuery),
		Page:    1,
		OrderBy: query.OrderByRelevant,
	}

	if page, err := strconv.Atoi(values.Get(ParamPage)); err == nil && page > 0 {
		p.Page = page
	}
	if color := query.Color(values.Get(ParamColor)); color != "" && color.IsValid() {
		p.Color = color
	}
	if orderBy := query.OrderBy(values.Get(ParamOrderBy)); orderBy.IsValid() {
		p.OrderBy = orderBy
	}
	return p
}

// Values encodes the params back into URL query values. Defaults are
// serialized explicitly except the empty color filter; perPage never
// appears.
func (p Params) Values() url.Values {
	values := url.Values{}
	values.Set(ParamQuery, p.Query)
	values.Set(ParamPage, strconv.Itoa(p.Page))
	values.Set(ParamOrderBy, string(p.OrderBy))
	if p.Color != "" {
		values.Set(ParamColor, string(p.Color))
	}
	return values
}

// Navigator is the routing collaborator: synchronous read of the
// current params, and two write modes. Push creates a new history
// entry (a fresh search); Replace overwrites the current one (page
// advances during infinite scroll must not pollute back/forward
// history).
type Navigator interface {
	Current() Params
	Push(Params)
	Replace(Params)
}

// History is an in-memory Navigator with back/forward traversal. It
// stands in for the browser history in server-side sessions and tests.
type History struct {
	entries []Params
	pos     int
}

// NewHistory creates a history positioned at the initial params.
func NewHistory(initial Params) *History {
	return &History{entries: []Params{initial}}
}

// Current returns the params at the history cursor.
func (h *History) Current() Params { return h.entries[h.pos] }

// Push appends a new entry after the cursor, discarding any forward
// entries, and moves to it.
func (h *History) Push(p Params) {
	h.entries = append(h.entries[:h.pos+1], p)
	h.pos = len(h.entries) - 1
}

// Replace overwrites the entry at the cursor.
func (h *History) Replace(p Params) {
	h.entries[h.pos] = p
}

// Back moves the cursor one entry back. Reports whether it moved.
func (h *History) Back() bool {
	if h.pos == 0 {
		return false
	}
	h.pos--
	return true
}

// Forward moves the cursor one entry forward. Reports whether it moved.
func (h *History) Forward() bool {
	if h.pos >= len(h.entries)-1 {
		return false
	}
	h.pos++
	return true
}

// Len returns the number of history entries.
func (h *History) Len() int { return len(h.entries) }
