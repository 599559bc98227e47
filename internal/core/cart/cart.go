// Package cart holds the point-of-sale cart: the lines a cashier has rung up,
// their quantities and the stock they hold back from the displayed catalog.
//
// None of the mutations fail. A mutation that would break a constraint (stock
// ceiling, inactive item, unknown line) is skipped and reported as not
// applied, so the caller can disable the control that triggered it.
package cart

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/rl1809/pos-checkout/internal/core/domain"
)

// Line is one catalog item in the cart. Quantity is always at least 1.
type Line struct {
	Item      domain.CatalogItem `json:"item"`
	UnitPrice decimal.Decimal    `json:"unitPrice"`
	Quantity  int                `json:"quantity"`
}

func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// DefaultHistoryLimit bounds how many mutations Undo can step back through.
const DefaultHistoryLimit = 100

type Option func(*Cart)

// WithoutStockTracking lets quantities exceed the item's current stock.
func WithoutStockTracking() Option {
	return func(c *Cart) {
		c.trackStock = false
	}
}

// WithHistoryLimit keeps at most n mutations for Undo. Older ones are folded
// into the cart's base state.
func WithHistoryLimit(n int) Option {
	return func(c *Cart) {
		if n > 0 {
			c.historyLimit = n
		}
	}
}

type Cart struct {
	lines []Line
	// base is the state before history[0]; replaying history on it gives lines.
	base         []Line
	history      []Command
	historyLimit int
	trackStock   bool
}

func New(opts ...Option) *Cart {
	c := &Cart{trackStock: true, historyLimit: DefaultHistoryLimit}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Apply runs cmd against the cart and records it in the history when it
// changed anything.
func (c *Cart) Apply(cmd Command) bool {
	if !cmd.apply(c) {
		return false
	}
	c.history = append(c.history, cmd)
	if c.historyLimit > 0 && len(c.history) > c.historyLimit {
		c.compact(len(c.history) - c.historyLimit)
	}
	return true
}

// compact folds the n oldest commands into base.
func (c *Cart) compact(n int) {
	folded := &Cart{lines: c.base, trackStock: c.trackStock}
	for _, cmd := range c.history[:n] {
		cmd.apply(folded)
	}
	c.base = folded.lines
	c.history = append([]Command(nil), c.history[n:]...)
}

// AddItem puts one unit of item in the cart, appending a line the first time
// the item is seen. The unit price is captured here.
func (c *Cart) AddItem(item domain.CatalogItem) bool {
	return c.Apply(AddItemCmd{Item: item})
}

// ChangeQuantity moves a line's quantity by delta. A line that reaches zero is
// removed; a quantity above the item's stock is refused.
func (c *Cart) ChangeQuantity(itemID int64, delta int) bool {
	return c.Apply(ChangeQuantityCmd{ItemID: itemID, Delta: delta})
}

func (c *Cart) RemoveItem(itemID int64) bool {
	return c.Apply(RemoveItemCmd{ItemID: itemID})
}

func (c *Cart) Clear() bool {
	return c.Apply(ClearCmd{})
}

// Undo reverts the last applied mutation by replaying the history before it.
// Nothing older than the history limit can be undone.
func (c *Cart) Undo() bool {
	if len(c.history) == 0 {
		return false
	}
	prev := c.replay(c.history[:len(c.history)-1])
	c.lines = prev.lines
	c.history = prev.history
	return true
}

// Replay builds a cart by applying cmds in order. Commands that do not apply
// are dropped from the resulting history.
func Replay(cmds []Command, opts ...Option) *Cart {
	c := New(opts...)
	for _, cmd := range cmds {
		c.Apply(cmd)
	}
	return c
}

func (c *Cart) replay(cmds []Command) *Cart {
	next := &Cart{
		lines:        append([]Line(nil), c.base...),
		base:         append([]Line(nil), c.base...),
		historyLimit: c.historyLimit,
		trackStock:   c.trackStock,
	}
	for _, cmd := range cmds {
		next.Apply(cmd)
	}
	return next
}

func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Line(itemID int64) (Line, bool) {
	if i := c.index(itemID); i >= 0 {
		return c.lines[i], true
	}
	return Line{}, false
}

func (c *Cart) History() []Command {
	out := make([]Command, len(c.history))
	copy(out, c.history)
	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Reserved is the quantity of itemID the cart holds back from the catalog.
func (c *Cart) Reserved(itemID int64) int {
	if i := c.index(itemID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

// Available returns copies of catalog with each item's current quantity
// reduced by what the cart holds. catalog itself is not modified.
func (c *Cart) Available(catalog []domain.CatalogItem) []domain.CatalogItem {
	out := make([]domain.CatalogItem, len(catalog))
	for i, item := range catalog {
		item.CurrentQuantity -= c.Reserved(item.ID)
		out[i] = item
	}
	return out
}

func (c *Cart) addItem(item domain.CatalogItem) bool {
	if !item.IsActive {
		return false
	}

	i := c.index(item.ID)
	if c.trackStock {
		stock := item.CurrentQuantity
		if i >= 0 {
			stock = c.lines[i].Item.CurrentQuantity
		}
		if stock-c.Reserved(item.ID) <= 0 {
			return false
		}
	}

	if i >= 0 {
		c.lines[i].Quantity++
		return true
	}
	c.lines = append(c.lines, Line{
		Item:      item,
		UnitPrice: item.UnitPrice(),
		Quantity:  1,
	})
	return true
}

func (c *Cart) changeQuantity(itemID int64, delta int) bool {
	i := c.index(itemID)
	if i < 0 || delta == 0 {
		return false
	}

	qty := c.lines[i].Quantity
	if delta < 0 {
		if qty+delta <= 0 {
			c.removeAt(i)
			return true
		}
		c.lines[i].Quantity = qty + delta
		return true
	}

	ceiling := math.MaxInt
	if c.trackStock {
		ceiling = c.lines[i].Item.CurrentQuantity
	}
	if delta > ceiling-qty {
		return false
	}
	c.lines[i].Quantity = qty + delta
	return true
}

func (c *Cart) removeItem(itemID int64) bool {
	i := c.index(itemID)
	if i < 0 {
		return false
	}
	c.removeAt(i)
	return true
}

func (c *Cart) clear() bool {
	if len(c.lines) == 0 {
		return false
	}
	c.lines = nil
	return true
}

func (c *Cart) removeAt(i int) {
	c.lines = append(c.lines[:i:i], c.lines[i+1:]...)
}

func (c *Cart) index(itemID int64) int {
	for i, l := range c.lines {
		if l.Item.ID == itemID {
			return i
		}
	}
	return -1
}
