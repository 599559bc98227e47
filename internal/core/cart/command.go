package cart

import (
	"fmt"

	"github.com/rl1809/pos-checkout/internal/core/domain"
)

// Command is a recorded cart mutation.
type Command interface {
	apply(c *Cart) bool
	fmt.Stringer
}

type AddItemCmd struct {
	Item domain.CatalogItem
}

func (cmd AddItemCmd) apply(c *Cart) bool { return c.addItem(cmd.Item) }

func (cmd AddItemCmd) String() string { return fmt.Sprintf("add(%d)", cmd.Item.ID) }

type ChangeQuantityCmd struct {
	ItemID int64
	Delta  int
}

func (cmd ChangeQuantityCmd) apply(c *Cart) bool { return c.changeQuantity(cmd.ItemID, cmd.Delta) }

func (cmd ChangeQuantityCmd) String() string {
	return fmt.Sprintf("change(%d,%+d)", cmd.ItemID, cmd.Delta)
}

type RemoveItemCmd struct {
	ItemID int64
}

func (cmd RemoveItemCmd) apply(c *Cart) bool { return c.removeItem(cmd.ItemID) }

func (cmd RemoveItemCmd) String() string { return fmt.Sprintf("remove(%d)", cmd.ItemID) }

type ClearCmd struct{}

func (ClearCmd) apply(c *Cart) bool { return c.clear() }

func (ClearCmd) String() string { return "clear" }
