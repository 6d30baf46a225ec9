// Package cache memoizes answered questions so repeated identical questions
// skip generation and execution entirely.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/aiquery-dev/aiquery-engine/pkg/models"
)

// Hit is what a cache lookup returns: the SQL and result captured when the
// entry was created, including the warnings from that validation pass.
type Hit struct {
	SQL      string                  `json:"sql"`
	Result   *models.ExecutionResult `json:"result"`
	Warnings []string                `json:"warnings"`
}

// ResultCache is the contract the orchestrator consumes. Get returns
// (nil, nil) on a miss; implementation failures are returned as errors and
// treated as misses by the caller.
type ResultCache interface {
	Get(question string) (*Hit, error)
	Set(question, sql string, result *models.ExecutionResult, warnings []string) error
	Invalidate(question string) error
}

// Stats exposes hit counting for observability. Hit counts never influence
// eviction, which is strictly by creation time.
type Stats struct {
	Size      int `json:"size"`
	MaxSize   int `json:"max_size"`
	TotalHits int `json:"total_hits"`
}

type entry struct {
	hit       Hit
	createdAt time.Time
	hitCount  int
}

// MemoryCache is the default in-process ResultCache: TTL expiry on read,
// oldest-created eviction on write.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*entry
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache creates a cache holding at most maxSize entries, each
// valid for ttl after creation. maxSize < 1 is clamped to a single entry
// so the eviction loop always has a candidate.
func NewMemoryCache(maxSize int, ttl time.Duration) *MemoryCache {
	if maxSize < 1 {
		maxSize = 1
	}
	return &MemoryCache{
		entries: make(map[string]*entry),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Key normalizes the question (lowercase, collapsed whitespace) and hashes
// it. Only exact normalized matches hit; there is no semantic similarity.
func Key(question string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(question), " "))
	sum := md5.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:])[:16]
}

// Get returns the cached answer, or (nil, nil) if absent or expired.
// Expired entries are removed on the spot.
func (c *MemoryCache) Get(question string) (*Hit, error) {
	key := Key(question)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	if c.now().Sub(e.createdAt) > c.ttl {
		delete(c.entries, key)
		return nil, nil
	}

	e.hitCount++
	hit := e.hit
	return &hit, nil
}

// Set stores an answer, evicting the entry with the oldest creation
// timestamp if the cache is full.
func (c *MemoryCache) Set(question, sql string, result *models.ExecutionResult, warnings []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.entries) >= c.maxSize {
		var oldestKey string
		var oldestAt time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.createdAt.Before(oldestAt) {
				oldestKey = k
				oldestAt = e.createdAt
			}
		}
		if oldestKey == "" {
			break
		}
		delete(c.entries, oldestKey)
	}

	c.entries[Key(question)] = &entry{
		hit:       Hit{SQL: sql, Result: result, Warnings: warnings},
		createdAt: c.now(),
	}
	return nil
}

// Invalidate removes the entry for a question, if present.
func (c *MemoryCache) Invalidate(question string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, Key(question))
	return nil
}

// Stats reports current size and cumulative hit count.
func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, e := range c.entries {
		total += e.hitCount
	}
	return Stats{Size: len(c.entries), MaxSize: c.maxSize, TotalHits: total}
}
