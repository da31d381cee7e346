package worker

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter implements per-collaborator rate limiting. External services
// (transcription, embedding) are registered by name with their own rates;
// unknown names fall back to the default.
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a limiter with the given default rate and burst.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
	}
}

// Wait blocks until the named collaborator may be called, or ctx ends.
func (l *Limiter) Wait(ctx context.Context, name string) error {
	return l.getLimiter(name).Wait(ctx)
}

// Allow reports whether a call to the named collaborator is permitted
// right now, without waiting.
func (l *Limiter) Allow(name string) bool {
	return l.getLimiter(name).Allow()
}

// SetRate configures a custom rate for one collaborator.
func (l *Limiter) SetRate(name string, requestsPerSecond float64, burst int) {
	if burst <= 0 {
		burst = l.defaultBurst
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.limiters[name] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

func (l *Limiter) getLimiter(name string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[name]
	l.mu.RUnlock()
	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock.
	if limiter, exists := l.limiters[name]; exists {
		return limiter
	}
	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[name] = limiter
	return limiter
}
