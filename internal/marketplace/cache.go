package marketplace

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sells-group/cardintel-cli/internal/store"
)

// PriceCache memoizes sold-price lookups keyed by query and result limit.
type PriceCache interface {
	Get(ctx context.Context, query string, maxResults int) ([]float64, bool)
	Set(ctx context.Context, query string, maxResults int, prices []float64)
}

func cacheKey(query string, maxResults int) string {
	return fmt.Sprintf("sold_prices::%s::%d", query, maxResults)
}

// StoreCache backs PriceCache with the durable store, so identical queries
// are free across runs.
type StoreCache struct {
	store store.Store
	ttl   time.Duration
}

// NewStoreCache wraps a store with the given TTL.
func NewStoreCache(s store.Store, ttl time.Duration) *StoreCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &StoreCache{store: s, ttl: ttl}
}

func (c *StoreCache) Get(ctx context.Context, query string, maxResults int) ([]float64, bool) {
	prices, err := c.store.GetCachedPrices(ctx, cacheKey(query, maxResults))
	if err != nil || prices == nil {
		return nil, false
	}
	return prices, true
}

func (c *StoreCache) Set(ctx context.Context, query string, maxResults int, prices []float64) {
	// A nil slice marshals to JSON null, which Get cannot tell from a row
	// miss. A no-results scrape is still a cacheable answer.
	if prices == nil {
		prices = []float64{}
	}
	// Cache write failures are not worth failing a lookup over.
	_ = c.store.SetCachedPrices(ctx, cacheKey(query, maxResults), prices, c.ttl)
}

// MemoryCache is an in-process PriceCache for tests and cache-less runs.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

type memoryEntry struct {
	prices    []float64
	expiresAt time.Time
}

// NewMemoryCache creates a MemoryCache with the given TTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemoryCache{entries: make(map[string]memoryEntry), ttl: ttl}
}

func (c *MemoryCache) Get(_ context.Context, query string, maxResults int) ([]float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[cacheKey(query, maxResults)]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.prices, true
}

func (c *MemoryCache) Set(_ context.Context, query string, maxResults int, prices []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(query, maxResults)] = memoryEntry{
		prices:    prices,
		expiresAt: time.Now().Add(c.ttl),
	}
}
