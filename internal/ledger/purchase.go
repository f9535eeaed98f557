package ledger

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"minimercado/backend/internal/catalog"
	"minimercado/backend/internal/domain"
	"minimercado/backend/internal/xid"
)

type PurchaseLineInput struct {
	ProductID string
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
}

type PurchaseProcessor struct {
	mu        sync.Mutex
	catalog   *catalog.Catalog
	purchases *Journal[domain.Purchase]
	now       func() time.Time
}

func NewPurchaseProcessor(c *catalog.Catalog, purchases *Journal[domain.Purchase], opts Options) *PurchaseProcessor {
	return &PurchaseProcessor{
		catalog:   c,
		purchases: purchases,
		now:       opts.clock(),
	}
}

// Commit records goods received from a supplier and adds them to stock.
// Product cost prices are left as they are; repricing is a separate edit.
func (p *PurchaseProcessor) Commit(supplier *domain.Supplier, lines []PurchaseLineInput, operatorID string) (domain.Purchase, error) {
	if supplier == nil {
		return domain.Purchase{}, domain.Invalid("supplier is required")
	}
	if len(lines) == 0 {
		return domain.Purchase{}, domain.Invalid("purchase has no items")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	items := make([]domain.PurchaseLine, 0, len(lines))
	deltas := make([]catalog.StockDelta, 0, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		if !line.Quantity.IsPositive() {
			return domain.Purchase{}, domain.Invalid("quantity for product %q must be greater than zero", line.ProductID)
		}
		if line.UnitCost.IsNegative() {
			return domain.Purchase{}, domain.Invalid("unit cost for product %q must not be negative", line.ProductID)
		}
		product, ok := p.catalog.FindByID(line.ProductID)
		if !ok {
			return domain.Purchase{}, domain.Invalid("unknown product %q", line.ProductID)
		}

		lineTotal := line.Quantity.Mul(line.UnitCost)
		items = append(items, domain.PurchaseLine{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitCost:    line.UnitCost,
			TotalCost:   lineTotal,
		})
		deltas = append(deltas, catalog.StockDelta{ProductID: product.ID, Delta: line.Quantity})
		total = total.Add(lineTotal)
	}

	purchase := domain.Purchase{
		ID:           xid.New("pur"),
		Date:         p.now(),
		SupplierID:   supplier.ID,
		SupplierName: supplier.Name,
		Items:        items,
		Total:        total,
		OperatorID:   operatorID,
	}

	if err := p.catalog.ApplyStock(deltas, false); err != nil {
		return domain.Purchase{}, err
	}
	p.purchases.Append(purchase)
	return purchase, nil
}
