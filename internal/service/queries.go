package service

import (
	"time"

	"github.com/shopspring/decimal"

	"minimercado/backend/internal/domain"
	"minimercado/backend/internal/ledger"
	"minimercado/backend/internal/report"
)

func (s *Service) ListProducts() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.Snapshot()
}

func (s *Service) SearchProducts(query string) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.Search(query)
}

func (s *Service) FindProduct(id string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.FindByID(id)
}

func (s *Service) FindProductByBarcode(code string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.FindByBarcode(code)
}

func (s *Service) LowStock() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.LowStock()
}

func (s *Service) ListCustomers() []domain.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.customers.List()
}

func (s *Service) ListSuppliers() []domain.Supplier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.suppliers.List()
}

func (s *Service) ListSales() []domain.Sale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sales.All()
}

func (s *Service) FindSale(id string) (domain.Sale, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sale := range s.sales.All() {
		if sale.ID == id {
			return sale, true
		}
	}
	return domain.Sale{}, false
}

func (s *Service) ListPurchases() []domain.Purchase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.purchases.All()
}

func (s *Service) ListCashMovements() []domain.CashMovement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cashMovements.All()
}

// DrawerBalance is recomputed from the logs on every call. The calendar date
// of day is taken as written and bucketed in the store's location.
func (s *Service) DrawerBalance(day time.Time) decimal.Decimal {
	return s.DrawerSummary(day).Balance
}

func (s *Service) DrawerSummary(day time.Time) domain.DrawerSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ledger.Summarize(s.storeDay(day), s.sales.All(), s.cashMovements.All())
}

func (s *Service) storeDay(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}

func (s *Service) Dashboard() domain.DashboardSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return report.Dashboard(s.catalog.Snapshot(), s.customers.Len(), s.sales.All(), s.purchases.All(), s.Today())
}

func (s *Service) StockOverview() []domain.StockLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return report.StockOverview(s.catalog.Snapshot(), s.sales.All(), s.purchases.All())
}

func (s *Service) Receipt(saleID string) (string, error) {
	sale, ok := s.FindSale(saleID)
	if !ok {
		return "", domain.NotFound("sale", saleID)
	}
	return report.Receipt(sale, s.header), nil
}

func (s *Service) SalesWorkbook() ([]byte, error) {
	return report.SalesWorkbook(s.ListSales(), s.loc)
}
