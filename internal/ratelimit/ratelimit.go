// Package ratelimit provides a keyed rate limiter using the token bucket
// algorithm from golang.org/x/time/rate.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// KeyedRateLimiter manages per-key rate limiting.
// Each unique key gets its own independent limiter; limiters idle for longer
// than the idle window are dropped by a background sweep.
type KeyedRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*entry
	limit    rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// DefaultIdle is how long an unused key is remembered.
const DefaultIdle = 10 * time.Minute

// New creates a keyed rate limiter allowing rps requests per second per key
// with bursts of up to burst. Call Stop to end the sweep goroutine.
func New(rps float64, burst int) *KeyedRateLimiter {
	krl := &KeyedRateLimiter{
		limiters: make(map[string]*entry),
		limit:    rate.Limit(rps),
		burst:    burst,
		idle:     DefaultIdle,
		now:      time.Now,
		done:     make(chan struct{}),
	}

	go krl.cleanup(time.Minute)

	return krl
}

// Allow reports whether a request for key may proceed now.
func (krl *KeyedRateLimiter) Allow(key string) bool {
	return krl.getLimiter(key).AllowN(krl.now(), 1)
}

// Len returns the number of keys currently tracked.
func (krl *KeyedRateLimiter) Len() int {
	krl.mu.Lock()
	defer krl.mu.Unlock()
	return len(krl.limiters)
}

// Stop shuts down the cleanup goroutine.
func (krl *KeyedRateLimiter) Stop() {
	krl.stopOnce.Do(func() {
		close(krl.done)
	})
}

func (krl *KeyedRateLimiter) getLimiter(key string) *rate.Limiter {
	krl.mu.Lock()
	defer krl.mu.Unlock()

	e, ok := krl.limiters[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(krl.limit, krl.burst)}
		krl.limiters[key] = e
	}
	e.lastSeen = krl.now()
	return e.limiter
}

// Sweep drops every key not seen within the idle window.
func (krl *KeyedRateLimiter) Sweep() {
	krl.mu.Lock()
	defer krl.mu.Unlock()
	cutoff := krl.now().Add(-krl.idle)
	for k, e := range krl.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(krl.limiters, k)
		}
	}
}

func (krl *KeyedRateLimiter) cleanup(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-krl.done:
			return
		case <-t.C:
			krl.Sweep()
		}
	}
}
