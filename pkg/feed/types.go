// Package feed holds the photo domain model and the append-only page
// cache that backs infinite-scroll search results.
package feed

import "fmt"

// PhotoURLs carries the rendition URLs served by the photo API.
type PhotoURLs struct {
	Small   string `json:"small"`
	Regular string `json:"regular"`
}

// ProfileImage carries a user's avatar renditions.
type ProfileImage struct {
	Small  string `json:"small"`
	Medium string `json:"medium"`
	Large  string `json:"large"`
}

// User is the owner of a photo.
type User struct {
	Name         string       `json:"name"`
	Username     string       `json:"username"`
	Bio          string       `json:"bio,omitempty"`
	Location     string       `json:"location,omitempty"`
	ProfileImage ProfileImage `json:"profile_image"`
}

// Photo is one search result item. Width and Height are the intrinsic
// pixel dimensions and are strictly positive for any validated photo;
// the masonry engine divides by them.
type Photo struct {
	ID          string    `json:"id"`
	Description string    `json:"description,omitempty"`
	BlurHash    string    `json:"blur_hash,omitempty"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	URLs        PhotoURLs `json:"urls"`
	User        User      `json:"user"`
}

// Validate checks the invariants every photo must satisfy before it
// enters the cache.
func (p Photo) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("photo id is empty")
	}
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("photo %s has non-positive dimensions %dx%d", p.ID, p.Width, p.Height)
	}
	return nil
}

// Page is one fetched page of search results. Immutable once appended:
// there is exactly one Page per (identity, page number) pair.
type Page struct {
	Photos     []Photo `json:"photos"`
	TotalItems int     `json:"total_items"`
	TotalPages int     `json:"total_pages"`
}

// PhotoWithOrigin pairs a photo with the zero-based index of the page
// it came from. It is a transient view model used for lazy-load
// eligibility and is never stored.
type PhotoWithOrigin struct {
	Photo     Photo `json:"photo"`
	PageIndex int   `json:"page_index"`
}
