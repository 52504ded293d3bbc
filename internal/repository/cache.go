package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/options-edge/internal/models"
)

// CachedVolatilityReader serves volatility history from a TTL cache so a scan
// cycle reads each symbol's history once.
type CachedVolatilityReader struct {
	repo  VolatilityRepository
	cache *cache.Cache
	ttl   time.Duration
}

// NewCachedVolatilityReader creates a reader. A zero ttl disables caching.
func NewCachedVolatilityReader(repo VolatilityRepository, ttl time.Duration) *CachedVolatilityReader {
	return &CachedVolatilityReader{
		repo:  repo,
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

func cacheKey(symbol string, limit int) string {
	return fmt.Sprintf("%s:%d", symbol, limit)
}

// GetVolatilityHistory returns up to limit records newest first
func (c *CachedVolatilityReader) GetVolatilityHistory(ctx context.Context, symbol string, limit int) ([]*models.VolatilityRecord, error) {
	symbol = strings.ToUpper(symbol)
	key := cacheKey(symbol, limit)
	if c.ttl > 0 {
		if v, found := c.cache.Get(key); found {
			if records, ok := v.([]*models.VolatilityRecord); ok {
				return records, nil
			}
		}
	}

	records, err := c.repo.GetHistory(ctx, symbol, limit)
	if err != nil {
		return nil, err
	}
	if c.ttl > 0 {
		c.cache.Set(key, records, c.ttl)
	}
	return records, nil
}

// Invalidate drops every cached history of symbol
func (c *CachedVolatilityReader) Invalidate(symbol string) {
	prefix := strings.ToUpper(symbol) + ":"
	for k := range c.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			c.cache.Delete(k)
		}
	}
}

// Flush empties the cache
func (c *CachedVolatilityReader) Flush() {
	c.cache.Flush()
}
