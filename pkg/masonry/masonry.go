// Package masonry computes a deterministic masonry grid layout from the
// intrinsic aspect ratios of photos. No I/O and no measurement of
// rendered output: width and height come straight from the API, so the
// layout is known before a single image byte is fetched and space can
// be reserved without layout shift.
package masonry

import (
	"math"

	"github.com/tigerabrodi/hinata/pkg/feed"
)

// RowSpanMultiplier converts an aspect ratio into grid rows to span.
// 22 balances typical photo ratios on both narrow and wide layouts;
// tune per the image corpus being served.
const RowSpanMultiplier = 22

// EagerItemCount is how many leading items load eagerly in the narrow
// (single-column) layout, where only the top of the feed is above the
// fold.
const EagerItemCount = 3

// Source tags where an item in the layout came from.
type Source int

const (
	// SourcePaginated marks an item that arrived via paginated search
	// results and carries a meaningful page index.
	SourcePaginated Source = iota

	// SourcePlain marks an item from a flat, non-paginated listing
	// (e.g. a user's photo grid).
	SourcePlain
)

// Item is one layout input: a photo tagged with its origin. PageIndex
// is only meaningful when Source is SourcePaginated.
type Item struct {
	Photo     feed.Photo
	Source    Source
	PageIndex int
}

// FromFlattened converts a flattened feed view into layout items.
func FromFlattened(photos []feed.PhotoWithOrigin) []Item {
	items := make([]Item, len(photos))
	for i, p := range photos {
		items[i] = Item{Photo: p.Photo, Source: SourcePaginated, PageIndex: p.PageIndex}
	}
	return items
}

// FromPhotos converts a plain photo listing into layout items.
func FromPhotos(photos []feed.Photo) []Item {
	items := make([]Item, len(photos))
	for i, p := range photos {
		items[i] = Item{Photo: p, Source: SourcePlain}
	}
	return items
}

// Tile is one laid-out grid cell.
type Tile struct {
	Photo feed.Photo `json:"photo"`

	// RowSpan is the number of grid rows the tile occupies, >= 1.
	RowSpan int `json:"row_span"`

	// LazyLoad reports whether the image byte fetch should be deferred
	// until the tile nears the viewport.
	LazyLoad bool `json:"lazy_load"`
}

// RowSpan returns the number of grid rows a photo of the given
// dimensions spans. Rounds up so an item never overflows its rows.
//
// Example: 1200x800 -> ceil(800/1200 * 22) = ceil(14.67) = 15.
//
// Width must be positive; validated photos guarantee this, and a
// non-positive width falls back to a square span rather than dividing
// by zero.
func RowSpan(width, height int) int {
	if width <= 0 || height <= 0 {
		return RowSpanMultiplier
	}
	span := int(math.Ceil(float64(height) / float64(width) * RowSpanMultiplier))
	if span < 1 {
		span = 1
	}
	return span
}

// Layout computes the tile sequence for the items under the current
// layout mode.
//
// Lazy-load policy:
//   - narrow (single column): the first EagerItemCount items in
//     flattened order are eager, everything after is lazy, regardless
//     of originating page;
//   - wide: paginated items from the first page are eager, later pages
//     are lazy (they accrue via infinite scroll and start off-screen);
//     plain items are always eager.
func Layout(items []Item, wideLayout bool) []Tile {
	tiles := make([]Tile, len(items))
	for i, item := range items {
		tiles[i] = Tile{
			Photo:    item.Photo,
			RowSpan:  RowSpan(item.Photo.Width, item.Photo.Height),
			LazyLoad: lazyLoad(item, i, wideLayout),
		}
	}
	return tiles
}

func lazyLoad(item Item, index int, wideLayout bool) bool {
	if wideLayout {
		return item.Source == SourcePaginated && item.PageIndex >= 1
	}
	return index >= EagerItemCount
}
