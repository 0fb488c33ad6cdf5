// Package ratelimiter implements a token bucket used to pace calls to the
// public Jikan and TMDB APIs.
package ratelimiter

import (
	"sync"
	"time"
)

type RateLimiter interface {
	TakeToken() bool
	Wait()
}

// TokenBucket refills refillRate tokens per second up to capacity.
type TokenBucket struct {
	capacity   int64
	tokens     int64
	refillRate int64
	lastRefill time.Time
	mu         sync.Mutex
}

func NewTokenBucket(capacity, refillRate int64) *TokenBucket {
	if capacity <= 0 {
		capacity = 1
	}
	if refillRate <= 0 {
		refillRate = 1
	}

	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

func (tb *TokenBucket) TakeToken() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)

	// Only advance lastRefill when whole tokens were added, so fractional
	// elapsed time keeps accumulating between calls.
	refill := int64(elapsed.Seconds() * float64(tb.refillRate))
	if refill > 0 {
		if tb.tokens+refill < tb.capacity {
			tb.tokens += refill
		} else {
			tb.tokens = tb.capacity
		}
		tb.lastRefill = now
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// Wait blocks until a token is available.
func (tb *TokenBucket) Wait() {
	interval := time.Second / time.Duration(tb.refillRate)
	if interval < 100*time.Millisecond {
		interval = 100 * time.Millisecond
	}

	for !tb.TakeToken() {
		time.Sleep(interval)
	}
}
