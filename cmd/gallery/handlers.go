package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/tigerabrodi/hinata/pkg/coordinator"
	"github.com/tigerabrodi/hinata/pkg/feed"
	"github.com/tigerabrodi/hinata/pkg/masonry"
	"github.com/tigerabrodi/hinata/pkg/navigation"
	"github.com/tigerabrodi/hinata/pkg/prefetch"
	"github.com/tigerabrodi/hinata/pkg/unsplash"
)

// Server wires the gallery engine behind an HTTP API. The shared page
// cache gives all requests one coherent feed state per search identity;
// each request builds its coordinator around the URL it carries, since
// the URL is the source of truth for position.
type Server struct {
	cache      *feed.Cache
	client     *unsplash.Client
	prefetcher *prefetch.Scheduler
	logger     zerolog.Logger
}

// NewServer creates the HTTP server over the shared collaborators.
func NewServer(cache *feed.Cache, client *unsplash.Client, prefetcher *prefetch.Scheduler, logger zerolog.Logger) *Server {
	return &Server{
		cache:      cache,
		client:     client,
		prefetcher: prefetcher,
		logger:     logger.With().Str("component", "server").Logger(),
	}
}

// Routes registers all API routes on the router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/api/search", s.handleSearch)
	r.Get("/api/search/next", s.handleLoadMore)
	r.Get("/api/photos/{id}", s.handlePhotoDetail)
	r.Get("/api/users/{username}", s.handleUserDetail)
	r.Get("/api/users/{username}/photos", s.handleUserPhotos)
	r.Post("/api/prefetch/{id}", s.handlePrefetch)
}

// paramsJSON is the address-bar state echoed back to the client. The
// client mirrors it into the URL with history.replaceState.
type paramsJSON struct {
	Query   string `json:"query"`
	Page    int    `json:"page"`
	Color   string `json:"color,omitempty"`
	OrderBy string `json:"orderBy"`
}

func toParamsJSON(p navigation.Params) paramsJSON {
	return paramsJSON{
		Query:   p.Query,
		Page:    p.Page,
		Color:   string(p.Color),
		OrderBy: string(p.OrderBy),
	}
}

// searchResponse is the render-ready payload for the gallery grid.
type searchResponse struct {
	Params paramsJSON       `json:"params"`
	View   coordinator.View `json:"view"`
	Tiles  []masonry.Tile   `json:"tiles"`
	Error  string           `json:"error,omitempty"`
}

// handleSearch syncs the feed to the page depth the URL requests and
// returns the resulting view. Deep links and reloads land here: the
// coordinator replays pages 1..N in order before responding.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := navigation.ParseParams(r.URL.Query())
	nav := navigation.NewHistory(params)
	coord := coordinator.New(s.cache, s.client, nav, s.logger)

	err := coord.Sync(r.Context())
	s.respondFeed(w, r, coord, nav, err)
}

// handleLoadMore fetches exactly one further page. The echoed params
// carry the advanced page number only when the fetch succeeded.
func (s *Server) handleLoadMore(w http.ResponseWriter, r *http.Request) {
	params := navigation.ParseParams(r.URL.Query())
	nav := navigation.NewHistory(params)
	coord := coordinator.New(s.cache, s.client, nav, s.logger)

	err := coord.LoadMore(r.Context())
	s.respondFeed(w, r, coord, nav, err)
}

func (s *Server) respondFeed(w http.ResponseWriter, r *http.Request, coord *coordinator.Coordinator, nav navigation.Navigator, err error) {
	view := coord.View()
	wide := r.URL.Query().Get("wide") != "false"

	resp := searchResponse{
		Params: toParamsJSON(nav.Current()),
		View:   view,
		Tiles:  masonry.Layout(masonry.FromFlattened(view.Photos), wide),
	}
	if err != nil {
		// The view already reflects the failure (stale results or the
		// error state); the message is for diagnostics, not rendering.
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// photoDetailResponse is one photo plus its derived download filename.
type photoDetailResponse struct {
	Photo            feed.Photo `json:"photo"`
	DownloadFilename string     `json:"download_filename"`
}

func (s *Server) handlePhotoDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	photo, err := s.client.GetPhoto(r.Context(), id)
	if err != nil {
		s.respondError(w, "photo detail fetch failed", err)
		return
	}
	if photo == nil {
		http.Error(w, "photo not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, photoDetailResponse{
		Photo:            *photo,
		DownloadFilename: feed.FormatImageFilename(photo.Description),
	})
}

func (s *Server) handleUserDetail(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := s.client.GetUser(r.Context(), username)
	if err != nil {
		s.respondError(w, "user detail fetch failed", err)
		return
	}
	if user == nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// userPhotosResponse is a user's flat photo listing, laid out without
// pagination tagging: every tile is eager in the wide layout.
type userPhotosResponse struct {
	Photos []feed.Photo   `json:"photos"`
	Tiles  []masonry.Tile `json:"tiles"`
}

func (s *Server) handleUserPhotos(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	page := 1
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	perPage := prefetch.OwnerPhotosPerPage
	if v, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil && v > 0 {
		perPage = v
	}

	photos, err := s.client.GetUserPhotos(r.Context(), username, page, perPage)
	if err != nil {
		s.respondError(w, "user photos fetch failed", err)
		return
	}

	wide := r.URL.Query().Get("wide") != "false"
	writeJSON(w, http.StatusOK, userPhotosResponse{
		Photos: photos,
		Tiles:  masonry.Layout(masonry.FromPhotos(photos), wide),
	})
}

// handlePrefetch warms the detail caches for a hovered photo. Fire and
// forget: the response never waits for the warming fetches.
func (s *Server) handlePrefetch(w http.ResponseWriter, r *http.Request) {
	photo := feed.Photo{
		ID:   chi.URLParam(r, "id"),
		User: feed.User{Username: r.URL.Query().Get("username")},
	}
	if photo.ID == "" {
		http.Error(w, "photo id is required", http.StatusBadRequest)
		return
	}

	s.prefetcher.Prefetch(context.WithoutCancel(r.Context()), photo)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) respondError(w http.ResponseWriter, msg string, err error) {
	s.logger.Warn().Err(err).Msg(msg)

	status := http.StatusBadGateway
	var apiErr *unsplash.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorClass == unsplash.ErrorClassRateLimit {
		status = http.StatusTooManyRequests
	}
	var valErr *unsplash.ValidationError
	if errors.As(err, &valErr) {
		status = http.StatusBadGateway
	}
	http.Error(w, msg, status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already written; an encode failure here only
	// means the client went away.
	_ = json.NewEncoder(w).Encode(v)
}
