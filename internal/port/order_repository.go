package port

import (
	"context"
	"errors"

	"github.com/rl1809/pos-checkout/internal/core/domain"
)

// ErrDuplicateOrder is returned with the stored receipt when an order with the
// same reference already exists.
var ErrDuplicateOrder = errors.New("duplicate order reference")

type OrderRepository interface {
	// CreateOrder persists the order and its items and takes the sold
	// quantities out of stock. reference identifies one order across retries.
	CreateOrder(ctx context.Context, reference string, payload domain.OrderPayload) (domain.OrderReceipt, error)
}
