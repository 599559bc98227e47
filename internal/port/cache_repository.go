package port

import (
	"context"
	"time"

	"github.com/rl1809/pos-checkout/internal/core/domain"
)

type CacheRepository interface {
	// AcquireSubmission takes key for token until ttl elapses, returns false if already held
	AcquireSubmission(ctx context.Context, key, token string, ttl time.Duration) (bool, error)

	// ReleaseSubmission drops key if token still holds it
	ReleaseSubmission(ctx context.Context, key, token string) error
}

type CatalogCache interface {
	// GetCatalog returns false on a cache miss
	GetCatalog(ctx context.Context, tenantID int64) ([]domain.CatalogItem, bool, error)

	SetCatalog(ctx context.Context, tenantID int64, items []domain.CatalogItem, ttl time.Duration) error

	InvalidateCatalog(ctx context.Context, tenantID int64) error
}
