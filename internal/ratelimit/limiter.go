package ratelimit

import (
	"time"

	"github.com/shopchat/shopchat-backend/internal/cache"
)

// Limiter is a fixed-window request throttle. The counter for an identifier
// is created with the window's TTL on first hit and incremented until it
// expires; once the count reaches the limit, further calls are denied until
// the window lapses.
//
// Correctness under concurrent callers depends on the store providing per-key
// atomic increment. Slight over-count under bursts on weaker stores is
// accepted.
type Limiter struct {
	store  cache.Store
	limit  int
	window time.Duration
}

func NewLimiter(store cache.Store, limit int, window time.Duration) *Limiter {
	return &Limiter{store: store, limit: limit, window: window}
}

// CheckLimit records one request for the identifier and reports whether it is
// within the window's budget.
func (l *Limiter) CheckLimit(identifier string) bool {
	count := l.store.Increment("ratelimit:"+identifier, l.window)
	return count <= int64(l.limit)
}

// RetryAfter returns the full window length. It does not compute the precise
// remaining time.
func (l *Limiter) RetryAfter(identifier string) time.Duration {
	return l.window
}
