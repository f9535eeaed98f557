package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
	ExpiresAt   string `json:"expires_at"`
}

// SaleLineRequest references a product by id or, when the id is empty, by barcode.
type SaleLineRequest struct {
	ProductID string          `json:"product_id,omitempty"`
	Barcode   string          `json:"barcode,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
}

type SaleRequest struct {
	Items         []SaleLineRequest `json:"items"`
	CustomerID    string            `json:"customer_id,omitempty"`
	PaymentMethod PaymentMethod     `json:"payment_method"`
}

type PurchaseLineRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

type PurchaseRequest struct {
	SupplierID string                `json:"supplier_id"`
	Items      []PurchaseLineRequest `json:"items"`
}

type CashMovementRequest struct {
	Type        CashMovementType `json:"type"`
	Amount      decimal.Decimal  `json:"amount"`
	Description string           `json:"description"`
}

type DrawerSummary struct {
	Date      string          `json:"date"`
	Opening   decimal.Decimal `json:"opening"`
	CashSales decimal.Decimal `json:"cash_sales"`
	Bleeds    decimal.Decimal `json:"bleeds"`
	Balance   decimal.Decimal `json:"balance"`
}

type DailyTotals struct {
	Date      string          `json:"date"`
	Sales     decimal.Decimal `json:"sales"`
	Purchases decimal.Decimal `json:"purchases"`
}

type DashboardSummary struct {
	GeneratedAt     time.Time       `json:"generated_at"`
	TotalSales      decimal.Decimal `json:"total_sales"`
	TotalPurchases  decimal.Decimal `json:"total_purchases"`
	EstimatedProfit decimal.Decimal `json:"estimated_profit"`
	SalesCount      int             `json:"sales_count"`
	CustomerCount   int             `json:"customer_count"`
	LowStock        []Product       `json:"low_stock"`
	LastSevenDays   []DailyTotals   `json:"last_seven_days"`
}

type StockLine struct {
	Product      Product         `json:"product"`
	TotalBought  decimal.Decimal `json:"total_bought"`
	TotalSold    decimal.Decimal `json:"total_sold"`
	LastSupplier string          `json:"last_supplier"`
	Low          bool            `json:"low"`
}
