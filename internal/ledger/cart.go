package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"minimercado/backend/internal/domain"
)

// Cart is the in-progress list of items at the register. Adding a product
// that is already in the cart increases its quantity.
type Cart struct {
	items []domain.CartItem
}

// Add rejects products with no stock left at the moment they are scanned.
func (c *Cart) Add(p domain.Product, quantity decimal.Decimal) error {
	if !p.Stock.IsPositive() {
		return fmt.Errorf("%w: %s is out of stock", domain.ErrStockUnavailable, p.Name)
	}
	if !quantity.IsPositive() {
		return domain.Invalid("quantity for %q must be greater than zero", p.Name)
	}

	for i, item := range c.items {
		if item.ProductID != p.ID {
			continue
		}
		item.Quantity = item.Quantity.Add(quantity)
		item.Subtotal = item.Quantity.Mul(item.SellPrice)
		c.items[i] = item
		return nil
	}

	item, err := domain.NewCartItem(p, quantity)
	if err != nil {
		return err
	}
	c.items = append(c.items, item)
	return nil
}

func (c *Cart) Items() []domain.CartItem {
	out := make([]domain.CartItem, len(c.items))
	copy(out, c.items)
	return out
}
