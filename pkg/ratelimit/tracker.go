package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for rate limit tracking.
var (
	requestsRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gallery_api_requests_remaining",
		Help: "Requests remaining in the current photo API rate limit window",
	})

	rateLimitBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gallery_rate_limit_blocks_total",
		Help: "Total number of requests blocked due to exhausted API budget",
	})
)

// Tracker monitors the photo API request budget and gates requests.
type Tracker struct {
	redis  *redis.Client
	logger zerolog.Logger
}

// NewTracker creates a new rate limit tracker.
func NewTracker(redisClient *redis.Client, logger zerolog.Logger) *Tracker {
	return &Tracker{
		redis:  redisClient,
		logger: logger.With().Str("component", "ratelimit").Logger(),
	}
}

// GetState retrieves the current rate limit state from Redis.
// Returns a full-budget default when no data exists yet.
func (t *Tracker) GetState(ctx context.Context) (*State, error) {
	limit, err := t.redis.Get(ctx, RedisKeyLimit).Int()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get limit: %w", err)
	}

	remaining, err := t.redis.Get(ctx, RedisKeyRemaining).Int()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get remaining: %w", err)
	}

	lastUpdateUnix, err := t.redis.Get(ctx, RedisKeyLastUpdate).Int64()
	if err != nil {
		if err == redis.Nil {
			t.logger.Debug().Msg("No rate limit state in Redis, assuming full budget")
			return &State{Limit: 50, Remaining: 50, LastUpdate: time.Now()}, nil
		}
		return nil, fmt.Errorf("get last update: %w", err)
	}

	return &State{
		Limit:      limit,
		Remaining:  remaining,
		LastUpdate: time.Unix(lastUpdateUnix, 0),
	}, nil
}

// UpdateFromHeaders parses the API's rate limit headers and stores the
// observed budget in Redis. Responses without the headers are ignored.
func (t *Tracker) UpdateFromHeaders(ctx context.Context, headers http.Header) error {
	remainingStr := headers.Get("X-Ratelimit-Remaining")
	if remainingStr == "" {
		return nil
	}
	remaining, err := strconv.Atoi(remainingStr)
	if err != nil {
		return fmt.Errorf("parse X-Ratelimit-Remaining header: %w", err)
	}

	limit := 0
	if limitStr := headers.Get("X-Ratelimit-Limit"); limitStr != "" {
		if limit, err = strconv.Atoi(limitStr); err != nil {
			return fmt.Errorf("parse X-Ratelimit-Limit header: %w", err)
		}
	}

	now := time.Now()
	pipe := t.redis.Pipeline()
	pipe.Set(ctx, RedisKeyLimit, limit, stateMaxAge)
	pipe.Set(ctx, RedisKeyRemaining, remaining, stateMaxAge)
	pipe.Set(ctx, RedisKeyLastUpdate, now.Unix(), stateMaxAge)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store rate limit state: %w", err)
	}

	requestsRemaining.Set(float64(remaining))

	if remaining < RemainingWarning {
		t.logger.Warn().
			Int("remaining", remaining).
			Int("limit", limit).
			Msg("API request budget running low")
	}
	return nil
}

// ShouldAllowRequest reports whether a request may be issued under the
// current budget. Errors reading state fail open - a broken Redis must
// not take the gallery down with it.
func (t *Tracker) ShouldAllowRequest(ctx context.Context) (bool, error) {
	state, err := t.GetState(ctx)
	if err != nil {
		t.logger.Warn().Err(err).Msg("Rate limit state unavailable, allowing request")
		return true, nil
	}

	if state.NeedsBlock() {
		rateLimitBlocksTotal.Inc()
		t.logger.Warn().
			Int("remaining", state.Remaining).
			Msg("Request blocked, API budget exhausted")
		return false, nil
	}
	return true, nil
}
