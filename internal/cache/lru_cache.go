package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/garesbzh/carte/backend-go/internal/config"
	"github.com/garesbzh/carte/backend-go/internal/models"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ComparisonStore is the persistent layer behind the LRU
type ComparisonStore interface {
	GetComparison(ctx context.Context, region, route string) (*models.RouteComparison, error)
	SaveComparison(ctx context.Context, record models.RouteComparison) error
	SaveComparisonsBatch(ctx context.Context, records []models.RouteComparison) error
}

var _ ComparisonStore = (*DynamoComparisonCache)(nil)

// LRUCacheEntry wraps the cached data with metadata
type LRUCacheEntry struct {
	Data      models.RouteComparison
	ExpiresAt time.Time
}

// ComparisonCache is a two-layer cache: in-process LRU, then an optional store
type ComparisonCache struct {
	lru         *lru.Cache[string, *LRUCacheEntry]
	store       ComparisonStore
	ttl         time.Duration
	clock       clock
	lruHits     atomic.Uint64
	lruMisses   atomic.Uint64
	storeHits   atomic.Uint64
	storeMisses atomic.Uint64
}

// NewComparisonCache creates the cache; store may be nil to keep it in memory only
func NewComparisonCache(cfg *config.CacheConfig, store ComparisonStore) (*ComparisonCache, error) {
	if cfg == nil {
		cfg = config.GetCacheConfig()
	}

	lruCache, err := lru.New[string, *LRUCacheEntry](cfg.ComparisonLRUSize)
	if err != nil {
		return nil, fmt.Errorf("creating LRU cache: %w", err)
	}

	return &ComparisonCache{
		lru:   lruCache,
		store: store,
		ttl:   cfg.GetComparisonLRUTTL(),
		clock: systemClock{},
	}, nil
}

func getCacheKey(region, route string) string {
	return fmt.Sprintf("%s:%s", region, route)
}

// GetComparison looks in the LRU first, then in the store
func (c *ComparisonCache) GetComparison(ctx context.Context, region, route string) (*models.RouteComparison, error) {
	key := getCacheKey(region, route)
	if entry, ok := c.lru.Get(key); ok {
		if c.clock.Now().Before(entry.ExpiresAt) {
			c.lruHits.Add(1)
			data := entry.Data
			return &data, nil
		}
		c.lru.Remove(key)
	}
	c.lruMisses.Add(1)

	if c.store == nil {
		return nil, nil
	}

	record, err := c.store.GetComparison(ctx, region, route)
	if err != nil {
		return nil, fmt.Errorf("getting comparison from store: %w", err)
	}
	if record == nil {
		c.storeMisses.Add(1)
		return nil, nil
	}

	c.storeHits.Add(1)
	c.add(key, *record)
	return record, nil
}

// SaveComparison writes to the LRU and the store
func (c *ComparisonCache) SaveComparison(ctx context.Context, record models.RouteComparison) error {
	c.add(getCacheKey(record.Region, record.Route), record)

	if c.store == nil {
		return nil
	}
	if err := c.store.SaveComparison(ctx, record); err != nil {
		return fmt.Errorf("saving comparison to store: %w", err)
	}
	return nil
}

// SaveComparisonsBatch writes many records to the LRU and the store
func (c *ComparisonCache) SaveComparisonsBatch(ctx context.Context, records []models.RouteComparison) error {
	for _, record := range records {
		c.add(getCacheKey(record.Region, record.Route), record)
	}

	if c.store == nil {
		return nil
	}
	if err := c.store.SaveComparisonsBatch(ctx, records); err != nil {
		return fmt.Errorf("saving comparisons batch to store: %w", err)
	}
	return nil
}

func (c *ComparisonCache) add(key string, record models.RouteComparison) {
	c.lru.Add(key, &LRUCacheEntry{
		Data:      record,
		ExpiresAt: c.clock.Now().Add(c.ttl),
	})
}

// GetCacheStats returns statistics about cache hits and misses
func (c *ComparisonCache) GetCacheStats() map[string]uint64 {
	return map[string]uint64{
		"lru_hits":     c.lruHits.Load(),
		"lru_misses":   c.lruMisses.Load(),
		"store_hits":   c.storeHits.Load(),
		"store_misses": c.storeMisses.Load(),
	}
}

// Clear removes all entries from the LRU cache
func (c *ComparisonCache) Clear() {
	c.lru.Purge()
}
