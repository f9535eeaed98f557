package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"minimercado/backend/internal/domain"
	"minimercado/backend/internal/xid"
)

// Drawer records the cash movements that are not sales: the opening float
// and withdrawals.
type Drawer struct {
	movements *Journal[domain.CashMovement]
	now       func() time.Time
}

func NewDrawer(movements *Journal[domain.CashMovement], opts Options) *Drawer {
	return &Drawer{movements: movements, now: opts.clock()}
}

func (d *Drawer) Record(kind domain.CashMovementType, amount decimal.Decimal, description string, userID string) (domain.CashMovement, error) {
	if !kind.Recordable() {
		return domain.CashMovement{}, domain.Invalid("cash movement type %q cannot be recorded", kind)
	}
	if !amount.IsPositive() {
		return domain.CashMovement{}, domain.Invalid("amount must be greater than zero")
	}

	movement := domain.CashMovement{
		ID:          xid.New("cash"),
		Type:        kind,
		Amount:      amount,
		Description: description,
		Date:        d.now(),
		UserID:      userID,
	}
	d.movements.Append(movement)
	return movement, nil
}

// DrawerBalance is opening float plus cash sales minus withdrawals for the
// calendar day of day, in day's location. It is recomputed on every call.
func DrawerBalance(day time.Time, sales []domain.Sale, movements []domain.CashMovement) decimal.Decimal {
	return Summarize(day, sales, movements).Balance
}

func Summarize(day time.Time, sales []domain.Sale, movements []domain.CashMovement) domain.DrawerSummary {
	summary := domain.DrawerSummary{
		Date:      day.Format(time.DateOnly),
		Opening:   decimal.Zero,
		CashSales: decimal.Zero,
		Bleeds:    decimal.Zero,
	}

	for _, m := range movements {
		if !SameDay(m.Date, day) {
			continue
		}
		switch m.Type {
		case domain.CashOpen:
			summary.Opening = summary.Opening.Add(m.Amount)
		case domain.CashBleed:
			summary.Bleeds = summary.Bleeds.Add(m.Amount)
		}
	}
	for _, s := range sales {
		if s.PaymentMethod.IsCash() && SameDay(s.Date, day) {
			summary.CashSales = summary.CashSales.Add(s.Total)
		}
	}

	summary.Balance = summary.Opening.Add(summary.CashSales).Sub(summary.Bleeds)
	return summary
}

// SameDay compares calendar dates in day's location.
func SameDay(t time.Time, day time.Time) bool {
	y1, m1, d1 := t.In(day.Location()).Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
