package service

import (
	"context"
	"strings"

	"minimercado/backend/internal/domain"
	"minimercado/backend/internal/ledger"
	"minimercado/backend/internal/store"
)

func (s *Service) AddProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created, err := s.catalog.Create(p)
	if err != nil {
		return domain.Product{}, err
	}
	s.persist(ctx, store.Products)
	s.log.Info().Str("product_id", created.ID).Str("barcode", created.Barcode).Msg("product created")
	return created, nil
}

// UpdateProduct replaces the product with the same id. An unknown id changes
// nothing and reports false.
func (s *Service) UpdateProduct(ctx context.Context, p domain.Product) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := s.catalog.Update(p)
	if err != nil || !updated {
		return false, err
	}
	s.persist(ctx, store.Products)
	s.log.Info().Str("product_id", p.ID).Msg("product updated")
	return true, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.catalog.Delete(id) {
		return false
	}
	s.persist(ctx, store.Products)
	s.log.Info().Str("product_id", id).Msg("product deleted")
	return true
}

func (s *Service) AddCustomer(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created, err := s.customers.Add(c)
	if err != nil {
		return domain.Customer{}, err
	}
	s.persist(ctx, store.Customers)
	return created, nil
}

func (s *Service) DeleteCustomer(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.customers.Delete(id) {
		return false
	}
	s.persist(ctx, store.Customers)
	return true
}

func (s *Service) AddSupplier(ctx context.Context, sup domain.Supplier) (domain.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created, err := s.suppliers.Add(sup)
	if err != nil {
		return domain.Supplier{}, err
	}
	s.persist(ctx, store.Suppliers)
	return created, nil
}

func (s *Service) DeleteSupplier(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.suppliers.Delete(id) {
		return false
	}
	s.persist(ctx, store.Suppliers)
	return true
}

// CommitSale builds a cart from the request lines and commits it. The sale
// record and the stock changes become visible together and are persisted in
// one batch.
func (s *Service) CommitSale(ctx context.Context, req domain.SaleRequest) (domain.Sale, error) {
	if len(req.Items) == 0 {
		return domain.Sale{}, domain.Invalid("cart is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var cart ledger.Cart
	for _, line := range req.Items {
		product, err := s.resolveProduct(line)
		if err != nil {
			return domain.Sale{}, err
		}
		if err := cart.Add(product, line.Quantity); err != nil {
			return domain.Sale{}, err
		}
	}

	var customer *domain.Customer
	if id := strings.TrimSpace(req.CustomerID); id != "" {
		found, ok := s.customers.Find(id)
		if !ok {
			return domain.Sale{}, domain.Invalid("unknown customer %q", id)
		}
		customer = &found
	}

	operator, _ := s.operator(ctx)
	sale, err := s.saleProcessor.Commit(cart.Items(), customer, req.PaymentMethod, operator.ID)
	if err != nil {
		return domain.Sale{}, err
	}

	s.persist(ctx, store.Products, store.Sales)
	s.metrics.SaleCommitted(string(sale.PaymentMethod), sale.Total)
	s.log.Info().
		Str("sale_id", sale.ID).
		Str("payment_method", string(sale.PaymentMethod)).
		Str("total", sale.Total.StringFixed(2)).
		Int("items", len(sale.Items)).
		Msg("sale committed")
	return sale, nil
}

func (s *Service) resolveProduct(line domain.SaleLineRequest) (domain.Product, error) {
	if id := strings.TrimSpace(line.ProductID); id != "" {
		product, ok := s.catalog.FindByID(id)
		if !ok {
			return domain.Product{}, domain.Invalid("unknown product %q", id)
		}
		return product, nil
	}
	if code := strings.TrimSpace(line.Barcode); code != "" {
		product, ok := s.catalog.FindByBarcode(code)
		if !ok {
			return domain.Product{}, domain.Invalid("unknown barcode %q", code)
		}
		return product, nil
	}
	return domain.Product{}, domain.Invalid("sale line needs a product id or barcode")
}

func (s *Service) CommitPurchase(ctx context.Context, req domain.PurchaseRequest) (domain.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var supplier *domain.Supplier
	if id := strings.TrimSpace(req.SupplierID); id != "" {
		found, ok := s.suppliers.Find(id)
		if !ok {
			return domain.Purchase{}, domain.Invalid("unknown supplier %q", id)
		}
		supplier = &found
	}

	lines := make([]ledger.PurchaseLineInput, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, ledger.PurchaseLineInput{
			ProductID: strings.TrimSpace(item.ProductID),
			Quantity:  item.Quantity,
			UnitCost:  item.UnitCost,
		})
	}

	operator, _ := s.operator(ctx)
	purchase, err := s.purchaseProcessor.Commit(supplier, lines, operator.ID)
	if err != nil {
		return domain.Purchase{}, err
	}

	s.persist(ctx, store.Products, store.Purchases)
	s.metrics.PurchaseCommitted(purchase.Total)
	s.log.Info().
		Str("purchase_id", purchase.ID).
		Str("supplier_id", purchase.SupplierID).
		Str("total", purchase.Total.StringFixed(2)).
		Msg("purchase committed")
	return purchase, nil
}

// RecordCashMovement needs an operator: the movement is attributed to them.
func (s *Service) RecordCashMovement(ctx context.Context, req domain.CashMovementRequest) (domain.CashMovement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	operator, ok := s.operator(ctx)
	if !ok {
		return domain.CashMovement{}, domain.ErrUnauthenticated
	}

	movement, err := s.drawer.Record(req.Type, req.Amount, strings.TrimSpace(req.Description), operator.ID)
	if err != nil {
		return domain.CashMovement{}, err
	}

	s.persist(ctx, store.CashMovements)
	s.metrics.CashMovementRecorded(string(movement.Type))
	s.log.Info().
		Str("movement_id", movement.ID).
		Str("type", string(movement.Type)).
		Str("amount", movement.Amount.StringFixed(2)).
		Str("user_id", movement.UserID).
		Msg("cash movement recorded")
	return movement, nil
}
