// Package testutil provides testing utilities for the gallery engine.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock API endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockAPI is a configurable mock photo API server for testing. The
// default handlers serve deterministic paginated search results so
// tests can exercise multi-page flows without fixture files.
type MockAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Pagination shape served by the default search handler.
	TotalItems int
	TotalPages int

	// Tracking
	RequestCount      int
	Paths             []string
	LastRequestHeader http.Header
}

// NewMockAPI creates a new mock photo API server.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		handlers:   make(map[string]func(w http.ResponseWriter, r *http.Request)),
		TotalItems: 30,
		TotalPages: 3,
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.Paths = append(mock.Paths, r.URL.Path)
		mock.LastRequestHeader = r.Header.Clone()
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.Paths = nil
	m.LastRequestHeader = nil
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// SetHandler sets a custom handler for a specific path.
func (m *MockAPI) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// defaultHandler serves deterministic API-shaped responses.
func (m *MockAPI) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Ratelimit-Limit", "50")
	w.Header().Set("X-Ratelimit-Remaining", "49")

	path := r.URL.Path
	switch {
	case path == "/search/photos":
		m.serveSearch(w, r)
	case strings.HasPrefix(path, "/users/") && strings.HasSuffix(path, "/photos"):
		username := strings.TrimSuffix(strings.TrimPrefix(path, "/users/"), "/photos")
		photos := []json.RawMessage{
			json.RawMessage(PhotoJSON(username+"-upload-1", 1000, 1500)),
			json.RawMessage(PhotoJSON(username+"-upload-2", 1200, 800)),
		}
		json.NewEncoder(w).Encode(photos)
	case strings.HasPrefix(path, "/users/"):
		username := strings.TrimPrefix(path, "/users/")
		fmt.Fprint(w, UserJSON(username))
	case strings.HasPrefix(path, "/photos/"):
		id := strings.TrimPrefix(path, "/photos/")
		fmt.Fprint(w, PhotoJSON(id, 1200, 800))
	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"errors": ["not found"]}`)
	}
}

// serveSearch produces one deterministic page of search results shaped
// by the request's page and per_page parameters.
func (m *MockAPI) serveSearch(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 {
		perPage = 10
	}

	m.mu.RLock()
	totalItems, totalPages := m.TotalItems, m.TotalPages
	m.mu.RUnlock()

	var results []string
	if page <= totalPages {
		for i := 0; i < perPage; i++ {
			id := fmt.Sprintf("photo-p%d-%d", page, i)
			results = append(results, PhotoJSON(id, 1200, 800))
		}
	}
	fmt.Fprintf(w, `{"total": %d, "total_pages": %d, "results": [%s]}`,
		totalItems, totalPages, strings.Join(results, ","))
}

// PhotoJSON builds a valid photo response body.
func PhotoJSON(id string, width, height int) string {
	return fmt.Sprintf(`{
		"id": %q,
		"description": "A photo of %s",
		"blur_hash": "LEHV6nWB2yk8pyo0adR*.7kCMdnj",
		"width": %d,
		"height": %d,
		"urls": {"small": "https://images.example/%s-small", "regular": "https://images.example/%s-regular"},
		"user": {
			"name": "Test Author",
			"username": "testauthor",
			"bio": "Takes pictures",
			"location": "Stockholm",
			"profile_image": {
				"small": "https://images.example/avatar-small",
				"medium": "https://images.example/avatar-medium",
				"large": "https://images.example/avatar-large"
			}
		}
	}`, id, id, width, height, id, id)
}

// UserJSON builds a valid user profile response body.
func UserJSON(username string) string {
	return fmt.Sprintf(`{
		"name": "User %s",
		"username": %q,
		"bio": "Test profile",
		"location": "Berlin",
		"profile_image": {
			"small": "https://images.example/%s-small",
			"medium": "https://images.example/%s-medium",
			"large": "https://images.example/%s-large"
		}
	}`, username, username, username, username, username)
}

// NewRateLimitResponse creates a 403 exhausted-budget response.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusForbidden,
		Body:       `{"errors": ["Rate Limit Exceeded"]}`,
		Headers: map[string]string{
			"Content-Type":          "application/json",
			"X-Ratelimit-Limit":     "50",
			"X-Ratelimit-Remaining": "0",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"errors": ["Internal server error"]}`,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// NewNotFoundResponse creates a 404 Not Found response.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"errors": ["Couldn't find resource"]}`,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}
