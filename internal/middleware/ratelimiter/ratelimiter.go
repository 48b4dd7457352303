package ratelimiter

import (
	"sync"
	"time"
)

// bucket is a token bucket for one identity
type bucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
	timer      *time.Timer
}

// UserRateLimiter keeps one token bucket per identity. Idle buckets are dropped
// after the expiration time.
type UserRateLimiter struct {
	mu         sync.RWMutex
	buckets    map[string]*bucket
	rate       float64
	capacity   float64
	expiration time.Duration
	now        func() time.Time
}

// New creates a limiter refilling rate tokens per second up to capacity.
func New(rate, capacity float64, expiration time.Duration) *UserRateLimiter {
	return &UserRateLimiter{
		buckets:    make(map[string]*bucket),
		rate:       rate,
		capacity:   capacity,
		expiration: expiration,
		now:        time.Now,
	}
}

// Allow takes one token from the identity's bucket.
func (l *UserRateLimiter) Allow(identity string) bool {
	b := l.bucket(identity)

	b.mu.Lock()
	defer b.mu.Unlock()

	now := l.now()
	b.tokens += now.Sub(b.lastRefill).Seconds() * l.rate
	if b.tokens > l.capacity {
		b.tokens = l.capacity
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Len is the number of live buckets.
func (l *UserRateLimiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.buckets)
}

// Stop cancels all expiration timers.
func (l *UserRateLimiter) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, b := range l.buckets {
		b.mu.Lock()
		if b.timer != nil {
			b.timer.Stop()
		}
		b.mu.Unlock()
	}
}

func (l *UserRateLimiter) bucket(identity string) *bucket {
	l.mu.RLock()
	b, exists := l.buckets[identity]
	l.mu.RUnlock()
	if exists {
		l.touch(identity, b)
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if b, exists = l.buckets[identity]; exists {
		l.touch(identity, b)
		return b
	}
	b = &bucket{tokens: l.capacity, lastRefill: l.now()}
	l.buckets[identity] = b
	l.touch(identity, b)
	return b
}

// touch restarts the idle timer of b.
func (l *UserRateLimiter) touch(identity string, b *bucket) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(l.expiration, func() {
		l.mu.Lock()
		if l.buckets[identity] == b {
			delete(l.buckets, identity)
		}
		l.mu.Unlock()
	})
}
