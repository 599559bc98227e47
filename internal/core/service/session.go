package service

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/pos-checkout/internal/core/cart"
	"github.com/rl1809/pos-checkout/internal/core/checkout"
	"github.com/rl1809/pos-checkout/internal/core/domain"
	"github.com/rl1809/pos-checkout/internal/core/pricing"
)

type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
)

// session is one cashier screen: a catalog snapshot, the cart built from it
// and the draft of the order being rung up.
type session struct {
	mu sync.Mutex

	id          string
	ctx         domain.SessionContext
	catalog     []domain.CatalogItem
	cart        *cart.Cart
	draft       domain.OrderDraft
	state       State
	reference   string // order reference reused by retries until the order changes
	lastReceipt *domain.OrderReceipt
	touched     time.Time
}

func (s *session) findItem(itemID int64) (domain.CatalogItem, bool) {
	for _, item := range s.catalog {
		if item.ID == itemID {
			return item, true
		}
	}
	return domain.CatalogItem{}, false
}

// View is a consistent read of a session. Totals are computed when the view
// is taken.
type View struct {
	ID          string                `json:"id"`
	Context     domain.SessionContext `json:"context"`
	State       State                 `json:"state"`
	Lines       []cart.Line           `json:"lines"`
	Totals      pricing.Totals        `json:"totals"`
	NetTotal    decimal.Decimal       `json:"netTotal"`
	ChangeDue   decimal.Decimal       `json:"changeDue"`
	Draft       domain.OrderDraft     `json:"draft"`
	Catalog     []domain.CatalogItem  `json:"catalog"`
	LowStock    []int64               `json:"lowStock"`
	CanSubmit   bool                  `json:"canSubmit"`
	LastReceipt *domain.OrderReceipt  `json:"lastReceipt,omitempty"`
}

// MutationResult reports whether a cart mutation changed anything. Skipped
// mutations are not errors.
type MutationResult struct {
	Applied bool `json:"applied"`
	View    View `json:"session"`
}

func (s *session) view(rate decimal.Decimal) View {
	lines := s.cart.Lines()
	totals := pricing.Compute(lines, rate)
	net := checkout.NetTotal(totals, s.draft.DiscountAmount)

	change := s.draft.PaidAmount.Sub(net)
	if change.IsNegative() {
		change = decimal.Zero
	}

	catalog := s.cart.Available(s.catalog)
	var low []int64
	for _, item := range catalog {
		if item.IsActive && item.LowStock() {
			low = append(low, item.ID)
		}
	}

	return View{
		ID:          s.id,
		Context:     s.ctx,
		State:       s.state,
		Lines:       lines,
		Totals:      totals,
		NetTotal:    domain.RoundMoney(net),
		ChangeDue:   domain.RoundMoney(change),
		Draft:       s.draft,
		Catalog:     catalog,
		LowStock:    low,
		CanSubmit:   s.state == StateIdle && checkout.CanSubmit(lines, s.draft, s.ctx),
		LastReceipt: s.lastReceipt,
	}
}

// foldSold takes sold quantities out of a catalog copy. Used when the catalog
// cannot be reloaded after an order.
func foldSold(catalog []domain.CatalogItem, sold []cart.Line) []domain.CatalogItem {
	out := make([]domain.CatalogItem, len(catalog))
	copy(out, catalog)
	for _, l := range sold {
		for i := range out {
			if out[i].ID == l.Item.ID {
				out[i].CurrentQuantity -= l.Quantity
			}
		}
	}
	return out
}
