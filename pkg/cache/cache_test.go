package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiquery-dev/aiquery-engine/pkg/models"
)

func sampleResult() *models.ExecutionResult {
	return &models.ExecutionResult{
		Columns:  []string{"id", "name"},
		Rows:     [][]any{{1, "Alice"}, {2, "Bob"}},
		RowCount: 2,
	}
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache(10, 30*time.Minute)

	require.NoError(t, c.Set("Show all customers", "SELECT * FROM customers LIMIT 1000", sampleResult(), []string{"w1"}))

	hit, err := c.Get("Show all customers")
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "SELECT * FROM customers LIMIT 1000", hit.SQL)
	assert.Equal(t, 2, hit.Result.RowCount)
	assert.Equal(t, []string{"w1"}, hit.Warnings)
}

func TestMemoryCache_NormalizedMatching(t *testing.T) {
	c := NewMemoryCache(10, time.Minute)
	require.NoError(t, c.Set("Show all customers", "SELECT 1", sampleResult(), nil))

	// Case and internal whitespace are normalized away.
	hit, err := c.Get("  show   ALL customers ")
	require.NoError(t, err)
	assert.NotNil(t, hit)

	// Different wording is a different key, no semantic matching.
	hit, err = c.Get("Show every customer")
	require.NoError(t, err)
	assert.Nil(t, hit)
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	c := NewMemoryCache(10, 30*time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set("q", "SELECT 1", sampleResult(), nil))

	now = now.Add(29 * time.Minute)
	hit, err := c.Get("q")
	require.NoError(t, err)
	assert.NotNil(t, hit, "entry inside TTL must be served")

	now = now.Add(2 * time.Minute)
	hit, err = c.Get("q")
	require.NoError(t, err)
	assert.Nil(t, hit, "entry past TTL must be treated as absent")

	assert.Equal(t, 0, c.Stats().Size, "expired entry must be removed on read")
}

func TestMemoryCache_EvictsOldestAtCapacity(t *testing.T) {
	c := NewMemoryCache(3, time.Hour)
	now := time.Now()
	c.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		require.NoError(t, c.Set(fmt.Sprintf("q%d", i), "SELECT 1", sampleResult(), nil))
		now = now.Add(time.Second)
	}

	// Reading q0 does not protect it: eviction is by creation time, not access.
	_, err := c.Get("q0")
	require.NoError(t, err)

	require.NoError(t, c.Set("q3", "SELECT 1", sampleResult(), nil))

	hit, err := c.Get("q0")
	require.NoError(t, err)
	assert.Nil(t, hit, "oldest-created entry must be evicted")

	for _, q := range []string{"q1", "q2", "q3"} {
		hit, err := c.Get(q)
		require.NoError(t, err)
		assert.NotNil(t, hit, "entry %s should survive", q)
	}
}

func TestMemoryCache_ZeroCapacityClampedToOne(t *testing.T) {
	c := NewMemoryCache(0, time.Minute)

	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, c.Set("q1", "SELECT 1", sampleResult(), nil))
		assert.NoError(t, c.Set("q2", "SELECT 2", sampleResult(), nil))
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Set did not return; eviction loop must terminate at zero capacity")
	}

	// The clamp keeps exactly one entry: the newest write wins.
	hit, err := c.Get("q2")
	require.NoError(t, err)
	assert.NotNil(t, hit)
	hit, err = c.Get("q1")
	require.NoError(t, err)
	assert.Nil(t, hit)
	assert.Equal(t, 1, c.Stats().MaxSize)
}

func TestMemoryCache_Invalidate(t *testing.T) {
	c := NewMemoryCache(10, time.Hour)
	require.NoError(t, c.Set("q", "SELECT 1", sampleResult(), nil))
	require.NoError(t, c.Invalidate("q"))

	hit, err := c.Get("q")
	require.NoError(t, err)
	assert.Nil(t, hit)
}

func TestMemoryCache_StatsCountHits(t *testing.T) {
	c := NewMemoryCache(10, time.Hour)
	require.NoError(t, c.Set("q", "SELECT 1", sampleResult(), nil))

	for i := 0; i < 3; i++ {
		_, err := c.Get("q")
		require.NoError(t, err)
	}

	stats := c.Stats()
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, 3, stats.TotalHits)
}

func TestKey_Deterministic(t *testing.T) {
	assert.Equal(t, Key("Show customers"), Key("show  CUSTOMERS"))
	assert.NotEqual(t, Key("Show customers"), Key("Show orders"))
	assert.Len(t, Key("anything"), 16)
}
