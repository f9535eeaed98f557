package ledger

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"minimercado/backend/internal/catalog"
	"minimercado/backend/internal/domain"
	"minimercado/backend/internal/xid"
)

type Options struct {
	// StrictStock refuses commits that would leave a product below zero.
	// Off by default: the cart checks availability when items are added and
	// the commit trusts it.
	StrictStock bool
	Now         func() time.Time
}

func (o Options) clock() func() time.Time {
	if o.Now != nil {
		return o.Now
	}
	return func() time.Time { return time.Now().UTC() }
}

type SaleProcessor struct {
	mu      sync.Mutex
	catalog *catalog.Catalog
	sales   *Journal[domain.Sale]
	strict  bool
	now     func() time.Time
}

func NewSaleProcessor(c *catalog.Catalog, sales *Journal[domain.Sale], opts Options) *SaleProcessor {
	return &SaleProcessor{
		catalog: c,
		sales:   sales,
		strict:  opts.StrictStock,
		now:     opts.clock(),
	}
}

// Commit takes every sold quantity out of stock and then records the sale.
// Nothing is recorded when validation or the stock update fails. The two
// writes take separate locks; callers that let readers see the catalog and
// the journal hold their own lock across Commit.
func (p *SaleProcessor) Commit(cart []domain.CartItem, customer *domain.Customer, method domain.PaymentMethod, operatorID string) (domain.Sale, error) {
	if len(cart) == 0 {
		return domain.Sale{}, domain.Invalid("cart is empty")
	}
	if !method.Valid() {
		return domain.Sale{}, domain.Invalid("unsupported payment method %q", method)
	}

	items := make([]domain.CartItem, 0, len(cart))
	deltas := make([]catalog.StockDelta, 0, len(cart))
	total := decimal.Zero
	for _, item := range cart {
		if item.ProductID == "" {
			return domain.Sale{}, domain.Invalid("cart item without product id")
		}
		if !item.Quantity.IsPositive() {
			return domain.Sale{}, domain.Invalid("quantity for %q must be greater than zero", item.Name)
		}
		item.Subtotal = item.Quantity.Mul(item.SellPrice)
		total = total.Add(item.Subtotal)
		items = append(items, item)
		deltas = append(deltas, catalog.StockDelta{ProductID: item.ProductID, Delta: item.Quantity.Neg()})
	}

	sale := domain.Sale{
		ID:            xid.New("sale"),
		Items:         items,
		Total:         total,
		PaymentMethod: method,
		OperatorID:    operatorID,
	}
	if customer != nil {
		sale.CustomerID = customer.ID
		sale.CustomerName = customer.Name
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	sale.Date = p.now()
	if err := p.catalog.ApplyStock(deltas, p.strict); err != nil {
		return domain.Sale{}, err
	}
	p.sales.Append(sale)
	return sale, nil
}
