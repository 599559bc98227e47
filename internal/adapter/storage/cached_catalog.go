package storage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/pos-checkout/internal/core/domain"
	"github.com/rl1809/pos-checkout/internal/port"
)

// CachedCatalog serves catalogs from cache and falls back to source on a miss.
// A failing cache degrades to reading the source directly.
type CachedCatalog struct {
	source port.CatalogRepository
	cache  port.CatalogCache
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedCatalog(source port.CatalogRepository, cache port.CatalogCache, ttl time.Duration, logger *zap.Logger) *CachedCatalog {
	return &CachedCatalog{source: source, cache: cache, ttl: ttl, logger: logger}
}

func (c *CachedCatalog) ListCatalog(ctx context.Context, tenantID int64) ([]domain.CatalogItem, error) {
	items, ok, err := c.cache.GetCatalog(ctx, tenantID)
	if err != nil {
		c.logger.Warn("catalog cache read", zap.Int64("tenant_id", tenantID), zap.Error(err))
	} else if ok {
		return items, nil
	}

	return c.load(ctx, tenantID)
}

// RefreshCatalog skips the cache read, e.g. after an order changed stock.
func (c *CachedCatalog) RefreshCatalog(ctx context.Context, tenantID int64) ([]domain.CatalogItem, error) {
	return c.load(ctx, tenantID)
}

func (c *CachedCatalog) load(ctx context.Context, tenantID int64) ([]domain.CatalogItem, error) {
	items, err := c.source.ListCatalog(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if err := c.cache.SetCatalog(ctx, tenantID, items, c.ttl); err != nil {
		c.logger.Warn("catalog cache write", zap.Int64("tenant_id", tenantID), zap.Error(err))
	}
	return items, nil
}
