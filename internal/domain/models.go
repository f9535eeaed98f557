package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Product struct {
	ID          string          `json:"id"`
	Barcode     string          `json:"barcode"`
	Name        string          `json:"name"`
	Unit        Unit            `json:"unit"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	Margin      decimal.Decimal `json:"margin"`
	SellPrice   decimal.Decimal `json:"sell_price"`
	Stock       decimal.Decimal `json:"stock"`
	MinStock    decimal.Decimal `json:"min_stock"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
}

// NewProduct trims the free-text fields and validates the record.
func NewProduct(p Product) (Product, error) {
	p.ID = strings.TrimSpace(p.ID)
	p.Barcode = strings.TrimSpace(p.Barcode)
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	p.Description = strings.TrimSpace(p.Description)
	if p.Unit == "" {
		p.Unit = UnitPiece
	}
	if err := p.Validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (p Product) Validate() error {
	if p.Barcode == "" {
		return Invalid("barcode is required")
	}
	if p.Name == "" {
		return Invalid("product name is required")
	}
	if !p.Unit.Valid() {
		return Invalid("unknown unit %q", p.Unit)
	}
	if p.CostPrice.IsNegative() {
		return Invalid("cost price must not be negative")
	}
	if p.Margin.IsNegative() {
		return Invalid("margin must not be negative")
	}
	if p.SellPrice.IsNegative() {
		return Invalid("sell price must not be negative")
	}
	if p.MinStock.IsNegative() {
		return Invalid("minimum stock must not be negative")
	}
	return nil
}

// IsLowStock flags products at or below their reorder threshold.
func (p Product) IsLowStock() bool {
	return p.Stock.LessThanOrEqual(p.MinStock)
}

// SuggestedSellPrice is the price-entry helper: cost * (1 + margin/100).
// The catalog stores whatever sell price it is given.
func SuggestedSellPrice(cost decimal.Decimal, margin decimal.Decimal) decimal.Decimal {
	return cost.Mul(decimal.NewFromInt(1).Add(margin.Div(hundred))).Round(2)
}

// CartItem is a product snapshot plus the quantity being sold.
type CartItem struct {
	ProductID string          `json:"product_id"`
	Barcode   string          `json:"barcode"`
	Name      string          `json:"name"`
	Unit      Unit            `json:"unit"`
	Category  string          `json:"category"`
	CostPrice decimal.Decimal `json:"cost_price"`
	SellPrice decimal.Decimal `json:"sell_price"`
	Quantity  decimal.Decimal `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

func NewCartItem(p Product, quantity decimal.Decimal) (CartItem, error) {
	if !quantity.IsPositive() {
		return CartItem{}, Invalid("quantity for %q must be greater than zero", p.Name)
	}
	return CartItem{
		ProductID: p.ID,
		Barcode:   p.Barcode,
		Name:      p.Name,
		Unit:      p.Unit,
		Category:  p.Category,
		CostPrice: p.CostPrice,
		SellPrice: p.SellPrice,
		Quantity:  quantity,
		Subtotal:  quantity.Mul(p.SellPrice),
	}, nil
}

type Sale struct {
	ID            string          `json:"id"`
	Date          time.Time       `json:"date"`
	CustomerID    string          `json:"customer_id,omitempty"`
	CustomerName  string          `json:"customer_name,omitempty"`
	Items         []CartItem      `json:"items"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	OperatorID    string          `json:"operator_id,omitempty"`
}

type PurchaseLine struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	TotalCost   decimal.Decimal `json:"total_cost"`
}

type Purchase struct {
	ID           string          `json:"id"`
	Date         time.Time       `json:"date"`
	SupplierID   string          `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	Items        []PurchaseLine  `json:"items"`
	Total        decimal.Decimal `json:"total"`
	OperatorID   string          `json:"operator_id,omitempty"`
}

type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CPF       string    `json:"cpf"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

func (c Customer) Key() string { return c.ID }

// Prepared trims the text fields and fills id and created_at when empty.
func (c Customer) Prepared(id string, at time.Time) Customer {
	c.ID = defaultString(strings.TrimSpace(c.ID), id)
	c.Name = strings.TrimSpace(c.Name)
	c.CPF = strings.TrimSpace(c.CPF)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Address = strings.TrimSpace(c.Address)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = at
	}
	return c
}

func (c Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return Invalid("customer name is required")
	}
	return nil
}

type Supplier struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CNPJ      string    `json:"cnpj"`
	Contact   string    `json:"contact"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

func (s Supplier) Key() string { return s.ID }

func (s Supplier) Prepared(id string, at time.Time) Supplier {
	s.ID = defaultString(strings.TrimSpace(s.ID), id)
	s.Name = strings.TrimSpace(s.Name)
	s.CNPJ = strings.TrimSpace(s.CNPJ)
	s.Contact = strings.TrimSpace(s.Contact)
	s.Phone = strings.TrimSpace(s.Phone)
	if s.CreatedAt.IsZero() {
		s.CreatedAt = at
	}
	return s
}

func (s Supplier) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return Invalid("supplier name is required")
	}
	return nil
}

type CashMovement struct {
	ID          string           `json:"id"`
	Type        CashMovementType `json:"type"`
	Amount      decimal.Decimal  `json:"amount"`
	Description string           `json:"description"`
	Date        time.Time        `json:"date"`
	UserID      string           `json:"user_id"`
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Session is the persisted login state; a nil User means anonymous.
type Session struct {
	User      *User      `json:"user"`
	StartedAt *time.Time `json:"started_at,omitempty"`
}

func (s Session) Authenticated() bool {
	return s.User != nil
}

func defaultString(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
