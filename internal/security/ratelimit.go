package security

import (
	"net/http"
	"sync"
	"time"
)

// RateLimiter implements a simple token bucket rate limiter keyed by caller.
// Submission endpoints use the device ID as the key; unauthenticated
// endpoints fall back to the client IP.
type RateLimiter struct {
	callers map[string]*caller
	mu      sync.RWMutex
	rate    int           // requests per window
	window  time.Duration // time window
}

type caller struct {
	tokens     int
	lastRefill time.Time
	mu         sync.Mutex
}

// NewRateLimiter creates a new rate limiter
// rate: number of requests allowed per window
// window: time window for rate limiting
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		callers: make(map[string]*caller),
		rate:    rate,
		window:  window,
	}
	// Start cleanup goroutine
	go rl.cleanupCallers()
	return rl
}

// Allow checks if a request from a caller should be allowed
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	c, exists := rl.callers[key]
	if !exists {
		c = &caller{
			tokens:     rl.rate,
			lastRefill: time.Now(),
		}
		rl.callers[key] = c
	}
	rl.mu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Refill tokens based on time passed
	now := time.Now()
	elapsed := now.Sub(c.lastRefill)
	if elapsed >= rl.window {
		c.tokens = rl.rate
		c.lastRefill = now
	}

	if c.tokens > 0 {
		c.tokens--
		return true
	}

	return false
}

// cleanupCallers removes stale entries to prevent memory leaks
func (rl *RateLimiter) cleanupCallers() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for key, c := range rl.callers {
			c.mu.Lock()
			if now.Sub(c.lastRefill) > rl.window*2 {
				delete(rl.callers, key)
			}
			c.mu.Unlock()
		}
		rl.mu.Unlock()
	}
}

// GetClientIP extracts the client IP from the request
func GetClientIP(r *http.Request) string {
	// Check X-Forwarded-For header (when behind proxy)
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		return forwarded
	}

	// Check X-Real-IP header
	realIP := r.Header.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}

	// Fall back to RemoteAddr
	return r.RemoteAddr
}
