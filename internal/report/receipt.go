package report

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"minimercado/backend/internal/domain"
)

const (
	receiptWidth    = 40
	defaultCustomer = "Consumidor Final"
)

type Header struct {
	StoreName string
	CNPJ      string
	Address   string
	Location  *time.Location
}

// Receipt renders the non-fiscal slip handed to the customer after a sale.
// Numbers use Brazilian formatting (1.234,50).
func Receipt(sale domain.Sale, h Header) string {
	p := message.NewPrinter(language.BrazilianPortuguese)
	loc := h.Location
	if loc == nil {
		loc = time.UTC
	}

	var b strings.Builder
	center(&b, h.StoreName)
	if h.CNPJ != "" {
		center(&b, "CNPJ: "+h.CNPJ)
	}
	if h.Address != "" {
		center(&b, h.Address)
	}
	b.WriteString(strings.Repeat("-", receiptWidth) + "\n")

	for _, item := range sale.Items {
		left := p.Sprintf("%s %s x %s", quantity(p, item.Quantity), item.Unit.Symbol(), item.Name)
		justify(&b, left, amount(p, item.Subtotal))
	}

	b.WriteString(strings.Repeat("-", receiptWidth) + "\n")
	justify(&b, "TOTAL", "R$ "+amount(p, sale.Total))

	customer := sale.CustomerName
	if customer == "" {
		customer = defaultCustomer
	}
	b.WriteString("\n")
	b.WriteString("Pagamento: " + sale.PaymentMethod.Label() + "\n")
	b.WriteString("Cliente: " + customer + "\n")
	b.WriteString("Data: " + sale.Date.In(loc).Format("02/01/2006 15:04:05") + "\n")
	b.WriteString("\n")
	center(&b, "*** NÃO É DOCUMENTO FISCAL ***")
	center(&b, "Obrigado pela preferência!")

	return b.String()
}

func amount(p *message.Printer, d decimal.Decimal) string {
	return p.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

func quantity(p *message.Printer, d decimal.Decimal) string {
	if d.IsInteger() {
		return p.Sprintf("%d", d.IntPart())
	}
	return p.Sprintf("%.3f", d.InexactFloat64())
}

func center(b *strings.Builder, text string) {
	pad := (receiptWidth - len([]rune(text))) / 2
	if pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	b.WriteString(text + "\n")
}

func justify(b *strings.Builder, left string, right string) {
	gap := receiptWidth - len([]rune(left)) - len([]rune(right))
	if gap < 1 {
		gap = 1
	}
	b.WriteString(left + strings.Repeat(" ", gap) + right + "\n")
}
