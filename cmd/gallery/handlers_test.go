package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/tigerabrodi/hinata/internal/testutil"
	"github.com/tigerabrodi/hinata/pkg/feed"
	"github.com/tigerabrodi/hinata/pkg/prefetch"
	"github.com/tigerabrodi/hinata/pkg/unsplash"
)

func newTestServer(t *testing.T, mock *testutil.MockAPI) http.Handler {
	t.Helper()

	cfg := unsplash.DefaultConfig("test-key")
	cfg.BaseURL = mock.URL()
	cfg.RequestsPerSecond = 1000
	client, err := unsplash.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("unsplash.New failed: %v", err)
	}

	cache := feed.NewCache(zerolog.Nop())
	server := NewServer(cache, client, prefetch.NewScheduler(client, zerolog.Nop()), zerolog.Nop())

	r := chi.NewRouter()
	server.Routes(r)
	return r
}

func TestHandleSearch(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	handler := newTestServer(t, mock)

	req := httptest.NewRequest(http.MethodGet, "/api/search?query=cats&page=2", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	// Deep link to page 2 replays both pages in order.
	if len(resp.View.Photos) != 24 {
		t.Errorf("expected 24 photos (2 pages of 12), got %d", len(resp.View.Photos))
	}
	if len(resp.Tiles) != len(resp.View.Photos) {
		t.Errorf("tiles (%d) and photos (%d) out of sync", len(resp.Tiles), len(resp.View.Photos))
	}
	if resp.Params.Page != 2 || resp.Params.Query != "cats" {
		t.Errorf("echoed params = %+v", resp.Params)
	}
	if mock.GetRequestCount() != 2 {
		t.Errorf("expected 2 upstream requests, got %d", mock.GetRequestCount())
	}
}

func TestHandleSearch_EmptyQuery(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	handler := newTestServer(t, mock)

	req := httptest.NewRequest(http.MethodGet, "/api/search?query=++", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if mock.GetRequestCount() != 0 {
		t.Errorf("blank query hit the API %d times", mock.GetRequestCount())
	}

	var resp searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.View.State != "idle" {
		t.Errorf("view state = %q, want idle", resp.View.State)
	}
}

func TestHandleLoadMore_AdvancesPage(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	handler := newTestServer(t, mock)

	// Prime page 1 through search, then ask for the next page.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search?query=cats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("prime failed with status %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search/next?query=cats&page=1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("load more status = %d", rec.Code)
	}

	var resp searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Params.Page != 2 {
		t.Errorf("params page = %d, want 2 after successful load", resp.Params.Page)
	}
	if len(resp.View.Photos) != 24 {
		t.Errorf("expected 24 photos after load more, got %d", len(resp.View.Photos))
	}
}

func TestHandleLoadMore_FailureKeepsPage(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	handler := newTestServer(t, mock)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search?query=cats", nil))

	mock.SetResponse("/search/photos", testutil.NewServerErrorResponse())

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search/next?query=cats&page=1", nil))

	var resp searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Params.Page != 1 {
		t.Errorf("params page = %d, failed load must not advance", resp.Params.Page)
	}
	if resp.Error == "" {
		t.Error("expected diagnostic error message")
	}
	// Cached page 1 still renders.
	if len(resp.View.Photos) != 12 {
		t.Errorf("expected 12 cached photos, got %d", len(resp.View.Photos))
	}
}

func TestHandlePhotoDetail(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	handler := newTestServer(t, mock)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/photos/abc123", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp photoDetailResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Photo.ID != "abc123" {
		t.Errorf("photo id = %q", resp.Photo.ID)
	}
	if resp.DownloadFilename != "a_photo_of_abc123" {
		t.Errorf("download filename = %q", resp.DownloadFilename)
	}
}

func TestHandlePhotoDetail_NotFound(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/photos/missing", testutil.NewNotFoundResponse())
	handler := newTestServer(t, mock)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/photos/missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleUserPhotos(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	handler := newTestServer(t, mock)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/annie/photos", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp userPhotosResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Photos) != 2 || len(resp.Tiles) != 2 {
		t.Errorf("got %d photos, %d tiles", len(resp.Photos), len(resp.Tiles))
	}
	// Plain listings are eager in the wide layout.
	for i, tile := range resp.Tiles {
		if tile.LazyLoad {
			t.Errorf("tile %d should be eager", i)
		}
	}
}

func TestHandlePrefetch(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	handler := newTestServer(t, mock)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/prefetch/abc123?username=annie", nil))

	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/prefetch/", nil))
	if rec.Code == http.StatusAccepted {
		t.Error("prefetch without id should be rejected")
	}
}
