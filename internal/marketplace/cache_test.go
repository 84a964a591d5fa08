package marketplace

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/cardintel-cli/internal/store"
)

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	ctx := context.Background()

	_, ok := c.Get(ctx, "q sold", 5)
	assert.False(t, ok)

	c.Set(ctx, "q sold", 5, []float64{1, 2, 3})
	prices, ok := c.Get(ctx, "q sold", 5)
	assert.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3}, prices)
}

func TestMemoryCache_KeyIncludesMaxResults(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	ctx := context.Background()

	c.Set(ctx, "q sold", 5, []float64{1})
	_, ok := c.Get(ctx, "q sold", 10)
	assert.False(t, ok)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Nanosecond)
	ctx := context.Background()

	c.Set(ctx, "q sold", 5, []float64{1})
	time.Sleep(time.Millisecond)

	_, ok := c.Get(ctx, "q sold", 5)
	assert.False(t, ok)
}

func TestCacheKey_Stable(t *testing.T) {
	assert.Equal(t, "sold_prices::q sold::5", cacheKey("q sold", 5))
}

func newTestStoreCache(t *testing.T, ttl time.Duration) *StoreCache {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return NewStoreCache(st, ttl)
}

func TestStoreCache_RoundTrip(t *testing.T) {
	c := newTestStoreCache(t, time.Hour)
	ctx := context.Background()

	_, ok := c.Get(ctx, "q sold", 5)
	assert.False(t, ok)

	c.Set(ctx, "q sold", 5, []float64{1.5, 2.5})
	prices, ok := c.Get(ctx, "q sold", 5)
	assert.True(t, ok)
	assert.Equal(t, []float64{1.5, 2.5}, prices)
}

func TestStoreCache_EmptyResultMemoized(t *testing.T) {
	c := newTestStoreCache(t, time.Hour)
	ctx := context.Background()

	// A scrape that found nothing is still an answer worth keeping.
	c.Set(ctx, "nobody 1989 sold", 5, nil)

	prices, ok := c.Get(ctx, "nobody 1989 sold", 5)
	assert.True(t, ok)
	assert.Empty(t, prices)
}
