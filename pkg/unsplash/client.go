// Package unsplash implements the photo API client: authenticated
// requests, response validation, Redis response caching, and request
// budget tracking. It is the only package that talks to the network.
package unsplash

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tigerabrodi/hinata/pkg/feed"
	"github.com/tigerabrodi/hinata/pkg/httpcache"
	"github.com/tigerabrodi/hinata/pkg/query"
	"github.com/tigerabrodi/hinata/pkg/ratelimit"
)

// Prometheus metrics for API requests.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_api_requests_total",
		Help: "Total number of photo API requests",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gallery_api_request_duration_seconds",
		Help:    "Photo API request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	requestErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_api_request_errors_total",
		Help: "Total number of photo API request errors by class",
	}, []string{"endpoint", "error_class"})
)

// DefaultBaseURL is the production photo API endpoint.
const DefaultBaseURL = "https://api.unsplash.com"

// Config holds client configuration.
type Config struct {
	// AccessKey is the API application key, sent as Client-ID
	// authorization on every request. Required.
	AccessKey string

	// BaseURL is the API base URL (default: DefaultBaseURL).
	BaseURL string

	// Redis enables response caching and rate limit tracking when set.
	// A nil client disables both: every call goes to the network and
	// only the local limiter paces requests.
	Redis *redis.Client

	// RequestTimeout is the per-request HTTP timeout.
	RequestTimeout time.Duration

	// RequestsPerSecond paces outgoing requests through a local token
	// bucket, independent of the server-side budget.
	RequestsPerSecond float64

	// SearchTTL is the cache lifetime for search result pages.
	SearchTTL time.Duration

	// DetailTTL is the cache lifetime for photo and user detail
	// responses, which change far less often than search rankings.
	DetailTTL time.Duration
}

// DefaultConfig returns a client configuration with sensible defaults.
func DefaultConfig(accessKey string) Config {
	return Config{
		AccessKey:         accessKey,
		BaseURL:           DefaultBaseURL,
		RequestTimeout:    10 * time.Second,
		RequestsPerSecond: 10,
		SearchTTL:         5 * time.Minute,
		DetailTTL:         30 * time.Minute,
	}
}

// Client is the photo API client. It implements the fetcher used by the
// pagination coordinator and the detail API used by the prefetcher.
type Client struct {
	config     Config
	httpClient *http.Client
	cache      *httpcache.Manager
	tracker    *ratelimit.Tracker
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// New creates a new photo API client.
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.AccessKey == "" {
		return nil, ErrMissingAccessKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 10
	}

	c := &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:     logger.With().Str("component", "unsplash").Logger(),
	}
	if cfg.Redis != nil {
		c.cache = httpcache.NewManager(cfg.Redis)
		c.tracker = ratelimit.NewTracker(cfg.Redis, logger)
	} else {
		c.logger.Warn().Msg("No Redis configured, response caching and budget tracking disabled")
	}
	return c, nil
}

// RateLimitState returns the last observed API budget, or nil when
// tracking is disabled.
func (c *Client) RateLimitState(ctx context.Context) (*ratelimit.State, error) {
	if c.tracker == nil {
		return nil, nil
	}
	return c.tracker.GetState(ctx)
}

// get performs a cached GET against the API. The response body is
// returned as raw bytes; callers decode and validate their own shape.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, ttl time.Duration) ([]byte, error) {
	cacheKey := httpcache.Key{Endpoint: endpoint, QueryParams: params}

	if c.cache != nil {
		entry, err := c.cache.Get(ctx, cacheKey)
		if err == nil {
			c.logger.Debug().Str("endpoint", endpoint).Msg("Cache hit")
			requestsTotal.WithLabelValues(endpoint, "cached").Inc()
			return entry.Data, nil
		}
		if err != httpcache.ErrCacheMiss {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache read failed, fetching from API")
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	if c.tracker != nil {
		allowed, err := c.tracker.ShouldAllowRequest(ctx)
		if err == nil && !allowed {
			requestErrorsTotal.WithLabelValues(endpoint, string(ErrorClassRateLimit)).Inc()
			return nil, &APIError{
				ErrorClass: ErrorClassRateLimit,
				Endpoint:   endpoint,
				Message:    "request budget exhausted",
				Err:        ErrRequestBlocked,
			}
		}
	}

	reqURL := c.config.BaseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.config.AccessKey)
	req.Header.Set("Accept-Version", "v1")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	requestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		requestErrorsTotal.WithLabelValues(endpoint, string(ErrorClassNetwork)).Inc()
		return nil, &APIError{
			ErrorClass: ErrorClassNetwork,
			Endpoint:   endpoint,
			Message:    "request failed",
			Err:        err,
		}
	}
	defer resp.Body.Close()

	requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if c.tracker != nil {
		if err := c.tracker.UpdateFromHeaders(ctx, resp.Header); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to record rate limit headers")
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		requestErrorsTotal.WithLabelValues(endpoint, string(ErrorClassNetwork)).Inc()
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassNetwork,
			Endpoint:   endpoint,
			Message:    "read response body",
			Err:        err,
		}
	}

	if resp.StatusCode >= 400 {
		class := classifyStatus(resp.StatusCode)
		requestErrorsTotal.WithLabelValues(endpoint, string(class)).Inc()
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: class,
			Endpoint:   endpoint,
			Message:    http.StatusText(resp.StatusCode),
		}
	}

	if c.cache != nil && ttl > 0 {
		entry := httpcache.NewEntry(body, resp.StatusCode, ttl)
		if err := c.cache.Set(ctx, cacheKey, entry); err != nil {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Failed to cache response")
		}
	}

	return body, nil
}

// SearchPhotos fetches one page of search results. Inactive queries
// return an empty page without touching the network.
func (c *Client) SearchPhotos(ctx context.Context, q query.SearchQuery, page int) (feed.Page, error) {
	if !q.IsActive() {
		return feed.Page{}, nil
	}
	if page < 1 {
		return feed.Page{}, fmt.Errorf("page must be >= 1, got %d", page)
	}

	orderBy := q.OrderBy
	if orderBy == "" {
		orderBy = query.OrderByRelevant
	}

	params := url.Values{}
	params.Set("query", q.Text)
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(q.PerPage))
	params.Set("order_by", string(orderBy))
	if q.Color != "" {
		params.Set("color", string(q.Color))
	}

	body, err := c.get(ctx, "/search/photos", params, c.config.SearchTTL)
	if err != nil {
		return feed.Page{}, err
	}

	var decoded searchResponseJSON
	if err := json.Unmarshal(body, &decoded); err != nil {
		requestErrorsTotal.WithLabelValues("/search/photos", string(ErrorClassValidation)).Inc()
		return feed.Page{}, &ValidationError{Endpoint: "/search/photos", Err: err}
	}
	result, err := decoded.toPage()
	if err != nil {
		requestErrorsTotal.WithLabelValues("/search/photos", string(ErrorClassValidation)).Inc()
		return feed.Page{}, &ValidationError{Endpoint: "/search/photos", Err: err}
	}

	c.logger.Debug().
		Str("identity", string(q.Identity())).
		Int("page", page).
		Int("photos", len(result.Photos)).
		Int("total_pages", result.TotalPages).
		Msg("Fetched search page")
	return result, nil
}

// GetPhoto fetches one photo's detail. Returns (nil, nil) when the
// photo does not exist.
func (c *Client) GetPhoto(ctx context.Context, photoID string) (*feed.Photo, error) {
	if photoID == "" {
		return nil, fmt.Errorf("photo id is required")
	}
	endpoint := "/photos/" + url.PathEscape(photoID)

	body, err := c.get(ctx, endpoint, nil, c.config.DetailTTL)
	if err != nil {
		if apiErr, ok := err.(*APIError); ok && apiErr.IsNotFound() {
			return nil, nil
		}
		return nil, err
	}

	var decoded photoJSON
	if err := json.Unmarshal(body, &decoded); err != nil {
		requestErrorsTotal.WithLabelValues(endpoint, string(ErrorClassValidation)).Inc()
		return nil, &ValidationError{Endpoint: endpoint, Err: err}
	}
	photo, err := decoded.toPhoto()
	if err != nil {
		requestErrorsTotal.WithLabelValues(endpoint, string(ErrorClassValidation)).Inc()
		return nil, &ValidationError{Endpoint: endpoint, Err: err}
	}
	return &photo, nil
}

// GetUser fetches one user's profile. Returns (nil, nil) when the user
// does not exist.
func (c *Client) GetUser(ctx context.Context, username string) (*feed.User, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	endpoint := "/users/" + url.PathEscape(username)

	body, err := c.get(ctx, endpoint, nil, c.config.DetailTTL)
	if err != nil {
		if apiErr, ok := err.(*APIError); ok && apiErr.IsNotFound() {
			return nil, nil
		}
		return nil, err
	}

	var decoded userJSON
	if err := json.Unmarshal(body, &decoded); err != nil {
		requestErrorsTotal.WithLabelValues(endpoint, string(ErrorClassValidation)).Inc()
		return nil, &ValidationError{Endpoint: endpoint, Err: err}
	}
	user := decoded.toUser()
	return &user, nil
}

// GetUserPhotos fetches one page of a user's uploaded photos.
func (c *Client) GetUserPhotos(ctx context.Context, username string, page, perPage int) ([]feed.Photo, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if page < 1 {
		return nil, fmt.Errorf("page must be >= 1, got %d", page)
	}
	endpoint := "/users/" + url.PathEscape(username) + "/photos"

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))

	body, err := c.get(ctx, endpoint, params, c.config.DetailTTL)
	if err != nil {
		return nil, err
	}

	var decoded []photoJSON
	if err := json.Unmarshal(body, &decoded); err != nil {
		requestErrorsTotal.WithLabelValues(endpoint, string(ErrorClassValidation)).Inc()
		return nil, &ValidationError{Endpoint: endpoint, Err: err}
	}
	photos := make([]feed.Photo, 0, len(decoded))
	for i, raw := range decoded {
		photo, err := raw.toPhoto()
		if err != nil {
			requestErrorsTotal.WithLabelValues(endpoint, string(ErrorClassValidation)).Inc()
			return nil, &ValidationError{Endpoint: endpoint, Err: fmt.Errorf("photo %d: %w", i, err)}
		}
		photos = append(photos, photo)
	}
	return photos, nil
}
