package sale

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"sucursalpos/internal/domain"
	"sucursalpos/internal/xid"
)

var (
	ErrOutOfStock        = errors.New("item out of stock")
	ErrInsufficientStock = errors.New("not enough stock to add another unit")
	ErrNotInResults      = errors.New("item is not in the current search results")
	ErrInvalidManualItem = errors.New("manual item needs a description and a non-negative price with at most two decimals")
)

// Line is one cart row. Its Quantity is the number of units being sold.
type Line = domain.SaleLine

// Item is a candidate for the cart. For catalog items Quantity is the stock
// level observed when the item was fetched and acts as the line ceiling.
type Item struct {
	ID          string
	Description string
	Price       decimal.Decimal
	Quantity    int
	Temporary   bool
}

func FromInventory(item domain.InventoryItem) Item {
	return Item{
		ID:          item.ID,
		Description: item.Description,
		Price:       item.Price,
		Quantity:    item.Quantity,
	}
}

// NewManualItem builds an ad-hoc item with no inventory record behind it.
func NewManualItem(description string, price decimal.Decimal) (Item, error) {
	description = strings.TrimSpace(description)
	if description == "" || !domain.ValidPrice(price) {
		return Item{}, ErrInvalidManualItem
	}
	return Item{
		ID:          xid.Temporary(),
		Description: description,
		Price:       price,
		Quantity:    math.MaxInt,
		Temporary:   true,
	}, nil
}

type Cart struct {
	lines []Line
}

// Add puts one unit of item in the cart. A catalog line never grows past the
// quantity the item carried; temporary lines have no ceiling.
func (c *Cart) Add(item Item) error {
	if item.Quantity <= 0 && !item.Temporary {
		return ErrOutOfStock
	}

	for i := range c.lines {
		if c.lines[i].ItemID != item.ID {
			continue
		}
		if !c.lines[i].Temporary && c.lines[i].Quantity >= item.Quantity {
			return ErrInsufficientStock
		}
		c.lines[i].Quantity++
		return nil
	}

	c.lines = append(c.lines, Line{
		ItemID:      item.ID,
		Description: item.Description,
		UnitPrice:   item.Price,
		Quantity:    1,
		Temporary:   item.Temporary,
	})
	return nil
}

func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) Total() decimal.Decimal {
	return Total(c.lines)
}

func (c *Cart) Clear() {
	c.lines = nil
}

// Total sums unit price times quantity over lines.
func Total(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}
	return total
}
