// Package httpcache provides TTL-based caching of photo API responses
// with a Redis backend. It gives every fetch path - direct navigation
// and hover prefetching alike - one shared staleness window, so
// redundant requests for the same resource are absorbed instead of
// hitting the API.
package httpcache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Key identifies one cached API response.
type Key struct {
	// Endpoint is the API path (e.g. "/search/photos").
	Endpoint string

	// QueryParams are the request's query parameters.
	QueryParams url.Values
}

// String generates a deterministic cache key string.
// Format: gallery:endpoint:param1=val1:param2=val2
//
// Example:
//
//	gallery:search/photos:page=1:per_page=12:query=cats
func (k Key) String() string {
	parts := []string{"gallery"}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	// Query params sorted for determinism.
	if len(k.QueryParams) > 0 {
		keys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.QueryParams.Get(key)))
		}
	}

	return strings.Join(parts, ":")
}
