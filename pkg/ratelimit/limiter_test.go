package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_MinuteWindow(t *testing.T) {
	l := NewLimiter(3, 1000)

	// With minute-limit 3, the fourth request within a minute is denied.
	results := make([]bool, 0, 4)
	for i := 0; i < 4; i++ {
		ok := l.Check("user-1")
		results = append(results, ok)
		if ok {
			l.Consume("user-1")
		}
	}
	assert.Equal(t, []bool{true, true, true, false}, results)
}

func TestLimiter_WindowSlides(t *testing.T) {
	l := NewLimiter(2, 1000)
	now := time.Now()
	l.now = func() time.Time { return now }

	assert.True(t, l.Check("u"))
	l.Consume("u")
	assert.True(t, l.Check("u"))
	l.Consume("u")
	assert.False(t, l.Check("u"))

	// After the window passes, capacity returns.
	now = now.Add(61 * time.Second)
	assert.True(t, l.Check("u"))
}

func TestLimiter_HourWindowAlsoEnforced(t *testing.T) {
	l := NewLimiter(1000, 2)
	now := time.Now()
	l.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		assert.True(t, l.Check("u"))
		l.Consume("u")
		// Spread consumption so the minute window never fills.
		now = now.Add(2 * time.Minute)
	}
	assert.False(t, l.Check("u"), "hourly limit must deny even with minute capacity")

	now = now.Add(time.Hour)
	assert.True(t, l.Check("u"))
}

func TestLimiter_UsersAreIndependent(t *testing.T) {
	l := NewLimiter(1, 1000)

	assert.True(t, l.Check("a"))
	l.Consume("a")
	assert.False(t, l.Check("a"))
	assert.True(t, l.Check("b"), "one user's exhaustion must not affect another")
}

func TestLimiter_CheckDoesNotConsume(t *testing.T) {
	l := NewLimiter(1, 1000)

	for i := 0; i < 5; i++ {
		assert.True(t, l.Check("u"))
	}
	l.Consume("u")
	assert.False(t, l.Check("u"))
}

func TestLimiter_ConcurrentSameUser(t *testing.T) {
	l := NewLimiter(1000000, 1000000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if l.Check("hot-user") {
					l.Consume("hot-user")
				}
			}
		}()
	}
	wg.Wait()

	// The race detector is the real assertion here; the count confirms
	// no updates were lost.
	b := l.bucket("hot-user")
	b.mu.Lock()
	defer b.mu.Unlock()
	assert.Equal(t, 5000, len(b.minute))
}
