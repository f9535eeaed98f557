package catalog

import (
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"minimercado/backend/internal/domain"
	"minimercado/backend/internal/xid"
)

// StockDelta is a signed quantity change for one product.
type StockDelta struct {
	ProductID string
	Delta     decimal.Decimal
}

// Catalog owns the product collection. Order is insertion order; every
// method is safe for concurrent use and stock changes never lose updates.
type Catalog struct {
	mu        sync.RWMutex
	products  []domain.Product
	byID      map[string]int
	byBarcode map[string]int
}

func New(products ...domain.Product) *Catalog {
	c := &Catalog{}
	c.Replace(products)
	return c
}

func (c *Catalog) FindByID(id string) (domain.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	idx, ok := c.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return c.products[idx], true
}

func (c *Catalog) FindByBarcode(code string) (domain.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	idx, ok := c.byBarcode[code]
	if !ok {
		return domain.Product{}, false
	}
	return c.products[idx], true
}

// Search matches the query case-insensitively against name, category and
// barcode. An empty query returns the whole catalog.
func (c *Catalog) Search(query string) []domain.Product {
	needle := strings.ToLower(strings.TrimSpace(query))

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Product, 0, len(c.products))
	for _, p := range c.products {
		if needle == "" ||
			strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Category), needle) ||
			strings.Contains(strings.ToLower(p.Barcode), needle) {
			out = append(out, p)
		}
	}
	return out
}

func (c *Catalog) Create(p domain.Product) (domain.Product, error) {
	p, err := domain.NewProduct(p)
	if err != nil {
		return domain.Product{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if p.ID == "" {
		p.ID = xid.New("prd")
	}
	if _, exists := c.byID[p.ID]; exists {
		return domain.Product{}, domain.Invalid("product id %q already exists", p.ID)
	}
	if _, exists := c.byBarcode[p.Barcode]; exists {
		return domain.Product{}, domain.Invalid("barcode %q already registered", p.Barcode)
	}

	c.products = append(c.products, p)
	c.byID[p.ID] = len(c.products) - 1
	c.byBarcode[p.Barcode] = len(c.products) - 1
	return p, nil
}

// Update replaces the product with the same id. An unknown id is a no-op
// reported as false.
func (c *Catalog) Update(p domain.Product) (bool, error) {
	p, err := domain.NewProduct(p)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	idx, ok := c.byID[p.ID]
	if !ok {
		return false, nil
	}
	if other, taken := c.byBarcode[p.Barcode]; taken && other != idx {
		return false, domain.Invalid("barcode %q already registered", p.Barcode)
	}

	delete(c.byBarcode, c.products[idx].Barcode)
	c.products[idx] = p
	c.byBarcode[p.Barcode] = idx
	return true, nil
}

func (c *Catalog) Delete(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx, ok := c.byID[id]
	if !ok {
		return false
	}
	c.products = append(c.products[:idx], c.products[idx+1:]...)
	c.reindex()
	return true
}

// AdjustStock applies stock += delta. The result may be negative.
func (c *Catalog) AdjustStock(id string, delta decimal.Decimal) (domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx, ok := c.byID[id]
	if !ok {
		return domain.Product{}, domain.NotFound("product", id)
	}
	c.products[idx].Stock = c.products[idx].Stock.Add(delta)
	return c.products[idx], nil
}

// ApplyStock applies every delta or none. Deltas for the same product are
// summed first. With strict set, a batch that would leave any product below
// zero fails with ErrStockUnavailable.
func (c *Catalog) ApplyStock(deltas []StockDelta, strict bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	net := make(map[string]decimal.Decimal, len(deltas))
	order := make([]string, 0, len(deltas))
	for _, d := range deltas {
		if _, ok := c.byID[d.ProductID]; !ok {
			return domain.Invalid("unknown product %q", d.ProductID)
		}
		if _, seen := net[d.ProductID]; !seen {
			order = append(order, d.ProductID)
		}
		net[d.ProductID] = net[d.ProductID].Add(d.Delta)
	}

	if strict {
		for _, id := range order {
			p := c.products[c.byID[id]]
			if p.Stock.Add(net[id]).IsNegative() {
				return fmt.Errorf("%w: %s has %s left", domain.ErrStockUnavailable, p.Name, p.Stock.String())
			}
		}
	}

	for _, id := range order {
		idx := c.byID[id]
		c.products[idx].Stock = c.products[idx].Stock.Add(net[id])
	}
	return nil
}

func (c *Catalog) LowStock() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Product, 0)
	for _, p := range c.products {
		if p.IsLowStock() {
			out = append(out, p)
		}
	}
	return out
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}

// Snapshot returns a copy of the collection in catalog order.
func (c *Catalog) Snapshot() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Replace swaps the whole collection, as loaded from storage.
func (c *Catalog) Replace(products []domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.products = make([]domain.Product, len(products))
	copy(c.products, products)
	c.reindex()
}

func (c *Catalog) reindex() {
	c.byID = make(map[string]int, len(c.products))
	c.byBarcode = make(map[string]int, len(c.products))
	for i, p := range c.products {
		c.byID[p.ID] = i
		if p.Barcode != "" {
			c.byBarcode[p.Barcode] = i
		}
	}
}
