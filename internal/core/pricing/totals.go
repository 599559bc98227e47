// Package pricing derives invoice totals from cart lines.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/rl1809/pos-checkout/internal/core/cart"
)

// DefaultTaxRate is the VAT rate applied when a tenant has no override.
var DefaultTaxRate = decimal.RequireFromString("0.14")

type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxAmount decimal.Decimal `json:"taxAmount"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}

// Compute sums lines and applies taxRate. It is recomputed from scratch on
// every call and rounds nothing.
func Compute(lines []cart.Line, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	count := 0
	for _, l := range lines {
		subtotal = subtotal.Add(l.Total())
		count += l.Quantity
	}

	tax := subtotal.Mul(taxRate)
	return Totals{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     subtotal.Add(tax),
		ItemCount: count,
	}
}
