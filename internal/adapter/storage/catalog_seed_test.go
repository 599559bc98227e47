package storage

import (
	"context"
	"fmt"

	"github.com/rl1809/pos-checkout/internal/core/domain"
)

// SaveCatalogItem seeds a catalog row: inserted, or updated when item.ID is set.
func (m *MySQLAdapter) SaveCatalogItem(ctx context.Context, item domain.CatalogItem) (int64, error) {
	if item.ID == 0 {
		res, err := m.db.ExecContext(ctx, `
			INSERT INTO catalog_items (tenant_id, name, category, selling_price, cost_per_unit,
			                           current_quantity, min_quantity, is_active)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			item.TenantID, item.Name, item.Category, item.SellingPrice, item.CostPerUnit,
			item.CurrentQuantity, item.MinQuantity, item.IsActive,
		)
		if err != nil {
			return 0, fmt.Errorf("insert catalog item: %w", err)
		}
		return res.LastInsertId()
	}

	_, err := m.db.ExecContext(ctx, `
		INSERT INTO catalog_items (id, tenant_id, name, category, selling_price, cost_per_unit,
		                           current_quantity, min_quantity, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE tenant_id = VALUES(tenant_id), name = VALUES(name),
			category = VALUES(category), selling_price = VALUES(selling_price),
			cost_per_unit = VALUES(cost_per_unit), current_quantity = VALUES(current_quantity),
			min_quantity = VALUES(min_quantity), is_active = VALUES(is_active)`,
		item.ID, item.TenantID, item.Name, item.Category, item.SellingPrice, item.CostPerUnit,
		item.CurrentQuantity, item.MinQuantity, item.IsActive,
	)
	if err != nil {
		return 0, fmt.Errorf("upsert catalog item: %w", err)
	}
	return item.ID, nil
}
