// Package ratelimit provides per-user sliding-window admission control.
// A request is admitted only when both the per-minute and per-hour windows
// have spare capacity; admission is checked before any expensive work starts.
package ratelimit

import (
	"sync"
	"time"
)

const (
	minuteWindow = time.Minute
	hourWindow   = time.Hour
)

// Limiter tracks request timestamps per user in two sliding windows.
// Buckets are created lazily and pruned on every check, so memory stays
// proportional to recently active users.
type Limiter struct {
	perMinute int
	perHour   int

	mu      sync.Mutex
	buckets map[string]*bucket

	now func() time.Time
}

type bucket struct {
	mu     sync.Mutex
	minute []time.Time
	hour   []time.Time
}

// NewLimiter creates a limiter admitting at most perMinute requests per
// 60 seconds and perHour per 3600 seconds, per user.
func NewLimiter(perMinute, perHour int) *Limiter {
	return &Limiter{
		perMinute: perMinute,
		perHour:   perHour,
		buckets:   make(map[string]*bucket),
		now:       time.Now,
	}
}

// Check prunes expired timestamps and reports whether the user has spare
// capacity in both windows. It does not consume capacity.
func (l *Limiter) Check(userID string) bool {
	b := l.bucket(userID)
	now := l.now()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.minute = prune(b.minute, now, minuteWindow)
	b.hour = prune(b.hour, now, hourWindow)

	return len(b.minute) < l.perMinute && len(b.hour) < l.perHour
}

// Consume records the current timestamp in both windows. Callers invoke it
// only after a successful Check.
func (l *Limiter) Consume(userID string) {
	b := l.bucket(userID)
	now := l.now()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.minute = append(b.minute, now)
	b.hour = append(b.hour, now)
}

// bucket returns the user's bucket, creating it if needed. The map lock is
// held only for the lookup; window updates use the per-user lock so
// unrelated users never serialize on each other.
func (l *Limiter) bucket(userID string) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[userID]
	if !ok {
		b = &bucket{}
		l.buckets[userID] = b
	}
	return b
}

func prune(stamps []time.Time, now time.Time, window time.Duration) []time.Time {
	cutoff := now.Add(-window)
	// Timestamps are appended in order; find the first still inside the window.
	i := 0
	for i < len(stamps) && !stamps[i].After(cutoff) {
		i++
	}
	return stamps[i:]
}
