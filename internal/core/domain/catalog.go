package domain

import "github.com/shopspring/decimal"

// CatalogItem is a product as listed by the tenant catalog. The core treats it
// as a read-only snapshot.
type CatalogItem struct {
	ID              int64           `json:"id"`
	TenantID        int64           `json:"tenantId"`
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	SellingPrice    decimal.Decimal `json:"sellingPrice"`
	CostPerUnit     decimal.Decimal `json:"costPerUnit"`
	CurrentQuantity int             `json:"currentQuantity"`
	MinQuantity     int             `json:"minQuantity"`
	IsActive        bool            `json:"isActive"`
}

// UnitPrice is the price captured when the item enters a cart: the selling
// price, or the cost per unit when no selling price is set.
func (c CatalogItem) UnitPrice() decimal.Decimal {
	if c.SellingPrice.IsPositive() {
		return c.SellingPrice
	}
	return c.CostPerUnit
}

func (c CatalogItem) LowStock() bool {
	return c.CurrentQuantity <= c.MinQuantity
}
