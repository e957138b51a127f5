package unsplash

import (
	"fmt"

	"github.com/tigerabrodi/hinata/pkg/feed"
)

// Wire types mirror the photo API's JSON shape. They are decoded,
// validated, and converted to feed types before anything downstream
// sees them - an unparseable or dimension-less photo never enters the
// page cache.

type photoURLsJSON struct {
	Small   string `json:"small"`
	Regular string `json:"regular"`
}

type profileImageJSON struct {
	Small  string `json:"small"`
	Medium string `json:"medium"`
	Large  string `json:"large"`
}

type userJSON struct {
	Name         string           `json:"name"`
	Username     string           `json:"username"`
	Bio          string           `json:"bio"`
	Location     string           `json:"location"`
	ProfileImage profileImageJSON `json:"profile_image"`
}

type photoJSON struct {
	ID          string        `json:"id"`
	Description string        `json:"description"`
	AltDesc     string        `json:"alt_description"`
	BlurHash    string        `json:"blur_hash"`
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	URLs        photoURLsJSON `json:"urls"`
	User        userJSON      `json:"user"`
}

type searchResponseJSON struct {
	Total      int         `json:"total"`
	TotalPages int         `json:"total_pages"`
	Results    []photoJSON `json:"results"`
}

func (u userJSON) toUser() feed.User {
	return feed.User{
		Name:     u.Name,
		Username: u.Username,
		Bio:      u.Bio,
		Location: u.Location,
		ProfileImage: feed.ProfileImage{
			Small:  u.ProfileImage.Small,
			Medium: u.ProfileImage.Medium,
			Large:  u.ProfileImage.Large,
		},
	}
}

// toPhoto converts a wire photo to the domain type, preferring the
// curator description and falling back to the alt description.
func (p photoJSON) toPhoto() (feed.Photo, error) {
	desc := p.Description
	if desc == "" {
		desc = p.AltDesc
	}
	photo := feed.Photo{
		ID:          p.ID,
		Description: desc,
		BlurHash:    p.BlurHash,
		Width:       p.Width,
		Height:      p.Height,
		URLs: feed.PhotoURLs{
			Small:   p.URLs.Small,
			Regular: p.URLs.Regular,
		},
		User: p.User.toUser(),
	}
	if err := photo.Validate(); err != nil {
		return feed.Photo{}, err
	}
	return photo, nil
}

// toPage validates a search response and converts it to a feed page.
func (r searchResponseJSON) toPage() (feed.Page, error) {
	if r.Total < 0 || r.TotalPages < 0 {
		return feed.Page{}, fmt.Errorf("negative totals: total=%d total_pages=%d", r.Total, r.TotalPages)
	}
	photos := make([]feed.Photo, 0, len(r.Results))
	for i, raw := range r.Results {
		photo, err := raw.toPhoto()
		if err != nil {
			return feed.Page{}, fmt.Errorf("result %d: %w", i, err)
		}
		photos = append(photos, photo)
	}
	return feed.Page{
		Photos:     photos,
		TotalItems: r.Total,
		TotalPages: r.TotalPages,
	}, nil
}
