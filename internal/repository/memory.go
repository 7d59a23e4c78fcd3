package repository

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MemoryRateLimiter is a token-bucket limiter per key, for single-instance
// deployments and as a fallback when Redis is unreachable.
type MemoryRateLimiter struct {
	limiters sync.Map
	rps      rate.Limit
	burst    int
}

// NewMemoryRateLimiter spreads a fixed-window budget over the window as a
// steady rate, with the whole budget available as burst.
func NewMemoryRateLimiter(limit int, window time.Duration) *MemoryRateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	burst := limit
	if burst <= 0 {
		burst = 5
	}
	return &MemoryRateLimiter{
		rps:   rate.Limit(float64(limit) / window.Seconds()),
		burst: burst,
	}
}

func (m *MemoryRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	return m.getLimiter(key).Allow(), nil
}

func (m *MemoryRateLimiter) getLimiter(key string) *rate.Limiter {
	if v, ok := m.limiters.Load(key); ok {
		if lim, ok := v.(*rate.Limiter); ok {
			return lim
		}
	}

	lim := rate.NewLimiter(m.rps, m.burst)
	actual, loaded := m.limiters.LoadOrStore(key, lim)
	if loaded {
		if actualLim, ok := actual.(*rate.Limiter); ok {
			return actualLim
		}
	}
	return lim
}
