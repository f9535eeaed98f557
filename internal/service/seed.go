package service

import (
	"github.com/shopspring/decimal"

	"minimercado/backend/internal/domain"
)

// seedProducts is the starter catalog used when storage has no products yet.
func seedProducts() []domain.Product {
	d := decimal.RequireFromString
	return []domain.Product{
		{ID: "1", Barcode: "789123456", Name: "Arroz 5kg", Unit: domain.UnitPiece, CostPrice: d("20"), Margin: d("25"), SellPrice: d("25"), Stock: d("50"), MinStock: d("10"), Category: "Alimentos"},
		{ID: "2", Barcode: "789123457", Name: "Feijão 1kg", Unit: domain.UnitPiece, CostPrice: d("6"), Margin: d("33.33"), SellPrice: d("8"), Stock: d("5"), MinStock: d("15"), Category: "Alimentos"},
		{ID: "3", Barcode: "789123458", Name: "Coca-Cola 2L", Unit: domain.UnitPiece, CostPrice: d("7"), Margin: d("42.85"), SellPrice: d("10"), Stock: d("100"), MinStock: d("20"), Category: "Bebidas"},
	}
}
