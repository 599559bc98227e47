package port

import (
	"context"

	"github.com/rl1809/pos-checkout/internal/core/domain"
)

type CatalogRepository interface {
	// ListCatalog returns the tenant's products ordered by category and name
	ListCatalog(ctx context.Context, tenantID int64) ([]domain.CatalogItem, error)
}

// CatalogRefresher is implemented by catalog sources that cache. RefreshCatalog
// reads through to the source and repopulates the cache.
type CatalogRefresher interface {
	RefreshCatalog(ctx context.Context, tenantID int64) ([]domain.CatalogItem, error)
}
