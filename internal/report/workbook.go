package report

import (
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"minimercado/backend/internal/domain"
)

const (
	salesSheet = "Vendas"
	itemsSheet = "Itens"
)

// SalesWorkbook exports the sales log as XLSX: one row per sale on the
// Vendas sheet and one row per sold line on the Itens sheet.
func SalesWorkbook(sales []domain.Sale, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.UTC
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), salesSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return nil, err
	}

	salesHeader := []interface{}{"id", "data", "cliente", "pagamento", "itens", "total"}
	if err := f.SetSheetRow(salesSheet, "A1", &salesHeader); err != nil {
		return nil, err
	}
	itemsHeader := []interface{}{"venda_id", "produto_id", "codigo_barras", "produto", "quantidade", "preco_unitario", "subtotal"}
	if err := f.SetSheetRow(itemsSheet, "A1", &itemsHeader); err != nil {
		return nil, err
	}

	saleRow, itemRow := 2, 2
	for _, sale := range sales {
		customer := sale.CustomerName
		if customer == "" {
			customer = defaultCustomer
		}
		row := []interface{}{
			sale.ID,
			sale.Date.In(loc).Format("2006-01-02 15:04:05"),
			customer,
			sale.PaymentMethod.Label(),
			len(sale.Items),
			sale.Total.InexactFloat64(),
		}
		if err := setRow(f, salesSheet, saleRow, row); err != nil {
			return nil, err
		}
		saleRow++

		for _, item := range sale.Items {
			line := []interface{}{
				sale.ID,
				item.ProductID,
				item.Barcode,
				item.Name,
				item.Quantity.InexactFloat64(),
				item.SellPrice.InexactFloat64(),
				item.Subtotal.InexactFloat64(),
			}
			if err := setRow(f, itemsSheet, itemRow, line); err != nil {
				return nil, err
			}
			itemRow++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// WorkbookFilename is the attachment name for an export generated at now.
func WorkbookFilename(now time.Time) string {
	return "vendas-" + strings.ReplaceAll(now.Format(time.DateOnly), "-", "") + ".xlsx"
}
