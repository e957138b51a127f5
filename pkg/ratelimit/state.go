// Package ratelimit tracks the photo API's hourly request budget and
// gates outgoing requests. It monitors the X-Ratelimit-Limit and
// X-Ratelimit-Remaining response headers so the gallery backs off
// before the API starts returning 403s.
package ratelimit

import (
	"time"
)

// Redis keys for rate limit state storage.
const (
	RedisKeyLimit      = "gallery:rate_limit:limit"
	RedisKeyRemaining  = "gallery:rate_limit:remaining"
	RedisKeyLastUpdate = "gallery:rate_limit:last_update"
)

// Thresholds for rate limit decisions.
const (
	// RemainingCritical blocks all requests when the remaining budget
	// falls below this value, leaving headroom for retried user
	// actions.
	RemainingCritical = 3

	// RemainingWarning marks the state unhealthy when remaining falls
	// below this value; callers may shed optional work (prefetching).
	RemainingWarning = 10
)

// The API resets its budget hourly; state older than the window is
// meaningless.
const stateMaxAge = time.Hour

// State is the most recently observed request budget. Shared across
// client instances via Redis.
type State struct {
	// Limit is the total requests allowed per window, from
	// X-Ratelimit-Limit.
	Limit int `json:"limit"`

	// Remaining is the requests left in the current window, from
	// X-Ratelimit-Remaining.
	Remaining int `json:"remaining"`

	// LastUpdate is when this state was recorded.
	LastUpdate time.Time `json:"last_update"`
}

// IsStale returns true if the state is older than maxAge.
func (s *State) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// NeedsBlock returns true if requests should be blocked. A stale state
// never blocks - the window has rolled over since it was recorded.
func (s *State) NeedsBlock() bool {
	if s.IsStale(stateMaxAge) {
		return false
	}
	return s.Remaining < RemainingCritical
}

// IsHealthy returns true when the budget is comfortably above the
// warning threshold or the state is stale.
func (s *State) IsHealthy() bool {
	if s.IsStale(stateMaxAge) {
		return true
	}
	return s.Remaining >= RemainingWarning
}
