package infra

import (
	"sync"
	"time"
)

// RateLimiter implements a token bucket rate limiter.
// Thread-safe and suitable for concurrent dispatch goroutines.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// NewRateLimiter creates a new rate limiter.
// maxRequests: maximum burst size
// perSecond: refill rate (requests per second)
func NewRateLimiter(maxRequests int, perSecond float64) *RateLimiter {
	return &RateLimiter{
		tokens:     float64(maxRequests),
		maxTokens:  float64(maxRequests),
		refillRate: perSecond,
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is available.
// Returns immediately if a token is available.
func (r *RateLimiter) Wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()

	for r.tokens < 1 {
		waitTime := time.Duration(float64(time.Second) / r.refillRate)
		r.mu.Unlock()
		time.Sleep(waitTime)
		r.mu.Lock()
		r.refill()
	}

	r.tokens--
}

// TryAcquire attempts to acquire a token without blocking.
// Returns true if a token was acquired, false otherwise.
func (r *RateLimiter) TryAcquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()

	if r.tokens >= 1 {
		r.tokens--
		return true
	}
	return false
}

// refill adds tokens based on elapsed time.
// Must be called with mutex held.
func (r *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(r.lastRefill).Seconds()
	r.tokens += elapsed * r.refillRate

	if r.tokens > r.maxTokens {
		r.tokens = r.maxTokens
	}

	r.lastRefill = now
}

// Venue-wide limiters. Hyperliquid-class venues throttle order and info
// endpoints separately, so the dispatcher and the resolver draw from
// different buckets.
var (
	venueOrderLimiter *RateLimiter
	venueInfoLimiter  *RateLimiter
	limiterOnce       sync.Once
)

// GetVenueOrderLimiter returns the rate limiter for order placement.
func GetVenueOrderLimiter() *RateLimiter {
	limiterOnce.Do(initVenueLimiters)
	return venueOrderLimiter
}

// GetVenueInfoLimiter returns the rate limiter for metadata lookups.
func GetVenueInfoLimiter() *RateLimiter {
	limiterOnce.Do(initVenueLimiters)
	return venueInfoLimiter
}

func initVenueLimiters() {
	// Conservative limits to avoid venue-side throttling
	venueOrderLimiter = NewRateLimiter(5, 10) // 10 req/s, burst 5
	venueInfoLimiter = NewRateLimiter(10, 20) // 20 req/s, burst 10
}
