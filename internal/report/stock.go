package report

import (
	"github.com/shopspring/decimal"

	"minimercado/backend/internal/domain"
)

const noSupplier = "N/A"

// StockOverview lists every product with the quantities bought and sold over
// the whole history and the supplier of the most recent purchase that
// included it.
func StockOverview(products []domain.Product, sales []domain.Sale, purchases []domain.Purchase) []domain.StockLine {
	bought := make(map[string]decimal.Decimal)
	sold := make(map[string]decimal.Decimal)
	lastSupplier := make(map[string]string)

	// purchases are in commit order, so the last write wins
	for _, purchase := range purchases {
		for _, line := range purchase.Items {
			bought[line.ProductID] = bought[line.ProductID].Add(line.Quantity)
			lastSupplier[line.ProductID] = purchase.SupplierName
		}
	}
	for _, sale := range sales {
		for _, item := range sale.Items {
			sold[item.ProductID] = sold[item.ProductID].Add(item.Quantity)
		}
	}

	lines := make([]domain.StockLine, 0, len(products))
	for _, p := range products {
		supplier, ok := lastSupplier[p.ID]
		if !ok {
			supplier = noSupplier
		}
		lines = append(lines, domain.StockLine{
			Product:      p,
			TotalBought:  bought[p.ID],
			TotalSold:    sold[p.ID],
			LastSupplier: supplier,
			Low:          p.IsLowStock(),
		})
	}
	return lines
}
