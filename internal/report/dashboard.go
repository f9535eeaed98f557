package report

import (
	"time"

	"github.com/shopspring/decimal"

	"minimercado/backend/internal/domain"
)

const trendDays = 7

// Dashboard summarizes the whole history. Estimated profit is total sales
// minus total purchases, the same figure the register screen has always shown.
// now is expected in the store's location; day buckets follow it.
func Dashboard(products []domain.Product, customerCount int, sales []domain.Sale, purchases []domain.Purchase, now time.Time) domain.DashboardSummary {
	summary := domain.DashboardSummary{
		GeneratedAt:    now,
		TotalSales:     decimal.Zero,
		TotalPurchases: decimal.Zero,
		SalesCount:     len(sales),
		CustomerCount:  customerCount,
		LowStock:       make([]domain.Product, 0),
		LastSevenDays:  make([]domain.DailyTotals, 0, trendDays),
	}

	for _, s := range sales {
		summary.TotalSales = summary.TotalSales.Add(s.Total)
	}
	for _, p := range purchases {
		summary.TotalPurchases = summary.TotalPurchases.Add(p.Total)
	}
	summary.EstimatedProfit = summary.TotalSales.Sub(summary.TotalPurchases)

	for _, p := range products {
		if p.IsLowStock() {
			summary.LowStock = append(summary.LowStock, p)
		}
	}

	loc := now.Location()
	index := make(map[string]int, trendDays)
	for i := trendDays - 1; i >= 0; i-- {
		key := now.AddDate(0, 0, -i).Format(time.DateOnly)
		index[key] = len(summary.LastSevenDays)
		summary.LastSevenDays = append(summary.LastSevenDays, domain.DailyTotals{
			Date:      key,
			Sales:     decimal.Zero,
			Purchases: decimal.Zero,
		})
	}
	for _, s := range sales {
		if i, ok := index[s.Date.In(loc).Format(time.DateOnly)]; ok {
			summary.LastSevenDays[i].Sales = summary.LastSevenDays[i].Sales.Add(s.Total)
		}
	}
	for _, p := range purchases {
		if i, ok := index[p.Date.In(loc).Format(time.DateOnly)]; ok {
			summary.LastSevenDays[i].Purchases = summary.LastSevenDays[i].Purchases.Add(p.Total)
		}
	}

	return summary
}
