// Package checkout turns a cart and its order draft into the order-creation
// request.
package checkout

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/rl1809/pos-checkout/internal/core/cart"
	"github.com/rl1809/pos-checkout/internal/core/domain"
	"github.com/rl1809/pos-checkout/internal/core/pricing"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrShiftRequired   = errors.New("shift is required")
	ErrContextRequired = errors.New("tenant and user are required")
)

// IsPrecondition reports whether err means the order is not ready to be sent.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrEmptyCart) || errors.Is(err, ErrShiftRequired) || errors.Is(err, ErrContextRequired)
}

// Validate checks what must hold before a payload may be built.
func Validate(lines []cart.Line, draft domain.OrderDraft, sc domain.SessionContext) error {
	if len(lines) == 0 {
		return ErrEmptyCart
	}
	if draft.ShiftID <= 0 {
		return ErrShiftRequired
	}
	if sc.TenantID <= 0 || sc.UserID <= 0 {
		return ErrContextRequired
	}
	return nil
}

// CanSubmit tells whether the checkout trigger should be enabled.
func CanSubmit(lines []cart.Line, draft domain.OrderDraft, sc domain.SessionContext) bool {
	return Validate(lines, draft, sc) == nil
}

// Build assembles the order payload. Amounts are rounded to cents here and
// nowhere earlier.
func Build(lines []cart.Line, draft domain.OrderDraft, totals pricing.Totals, sc domain.SessionContext) (*domain.OrderPayload, error) {
	if err := Validate(lines, draft, sc); err != nil {
		return nil, err
	}

	branchID := sc.BranchID
	if branchID == 0 {
		branchID = draft.BranchID
	}
	status := draft.Status
	if status == "" {
		status = domain.OrderStatusPending
	}
	orderType := draft.OrderType
	if orderType == "" {
		orderType = domain.OrderTypeDineIn
	}

	discount := Discount(draft.DiscountAmount, totals.Total)

	items := make([]domain.OrderPayloadItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, domain.OrderPayloadItem{
			ItemID:        l.Item.ID,
			ItemVariantID: 0,
			Quantity:      l.Quantity,
			UnitPrice:     domain.RoundMoney(l.UnitPrice),
			TotalPrice:    domain.RoundMoney(l.Total()),
			Notes:         "",
		})
	}

	return &domain.OrderPayload{
		TenantID:        sc.TenantID,
		BranchID:        branchID,
		ShiftID:         draft.ShiftID,
		CustomerID:      draft.CustomerID,
		OrderType:       orderType,
		Status:          status,
		Subtotal:        domain.RoundMoney(totals.Subtotal),
		TaxAmount:       domain.RoundMoney(totals.TaxAmount),
		DiscountAmount:  domain.RoundMoney(discount),
		TotalAmount:     domain.RoundMoney(NetTotal(totals, draft.DiscountAmount)),
		PaidAmount:      domain.RoundMoney(draft.PaidAmount),
		Notes:           draft.Notes,
		CreatedByUserID: sc.UserID,
		Items:           items,
	}, nil
}

// Discount bounds the requested discount to [0, total].
func Discount(discount, total decimal.Decimal) decimal.Decimal {
	if discount.IsNegative() {
		return decimal.Zero
	}
	if discount.GreaterThan(total) {
		return total
	}
	return discount
}

// NetTotal is the amount the customer owes after the discount.
func NetTotal(totals pricing.Totals, discount decimal.Decimal) decimal.Decimal {
	return totals.Total.Sub(Discount(discount, totals.Total))
}
