package catalog_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minimercado/backend/internal/catalog"
	"minimercado/backend/internal/domain"
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func seeded() *catalog.Catalog {
	return catalog.New(
		domain.Product{ID: "1", Barcode: "789123456", Name: "Arroz 5kg", Unit: domain.UnitPiece, CostPrice: dec("20"), Margin: dec("25"), SellPrice: dec("25"), Stock: dec("50"), MinStock: dec("10"), Category: "Alimentos"},
		domain.Product{ID: "2", Barcode: "789123457", Name: "Feijão 1kg", Unit: domain.UnitPiece, CostPrice: dec("6"), Margin: dec("33.33"), SellPrice: dec("8"), Stock: dec("5"), MinStock: dec("15"), Category: "Alimentos"},
		domain.Product{ID: "3", Barcode: "789123458", Name: "Coca-Cola 2L", Unit: domain.UnitPiece, CostPrice: dec("7"), Margin: dec("42.85"), SellPrice: dec("10"), Stock: dec("100"), MinStock: dec("20"), Category: "Bebidas"},
	)
}

func TestFindByBarcodeIsExactMatch(t *testing.T) {
	c := seeded()

	p, ok := c.FindByBarcode("789123457")
	require.True(t, ok)
	assert.Equal(t, "2", p.ID)

	_, ok = c.FindByBarcode("78912345")
	assert.False(t, ok, "prefix must not match")
}

func TestSearchIsCaseInsensitiveAndKeepsInsertionOrder(t *testing.T) {
	c := seeded()

	got := c.Search("ALIMENTOS")
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "2", got[1].ID)

	assert.Len(t, c.Search(""), 3)
	assert.Len(t, c.Search("coca"), 1)
	assert.Len(t, c.Search("9123458"), 1)
}

func TestCreateValidatesAndEnforcesBarcodeUniqueness(t *testing.T) {
	c := seeded()

	_, err := c.Create(domain.Product{Name: "Sem código", SellPrice: dec("1")})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = c.Create(domain.Product{Barcode: "1", Name: "Negativo", SellPrice: dec("-1")})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = c.Create(domain.Product{Barcode: "789123456", Name: "Duplicado"})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	created, err := c.Create(domain.Product{Barcode: "555", Name: "Leite 1L", SellPrice: dec("5.50")})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domain.UnitPiece, created.Unit)
	assert.Equal(t, 4, c.Len())
}

func TestUpdateUnknownIDIsNoop(t *testing.T) {
	c := seeded()

	updated, err := c.Update(domain.Product{ID: "missing", Barcode: "x", Name: "x"})
	require.NoError(t, err)
	assert.False(t, updated)
	assert.Equal(t, 3, c.Len())
}

func TestUpdateKeepsGivenSellPrice(t *testing.T) {
	c := seeded()
	p, _ := c.FindByID("1")
	p.CostPrice = dec("30")
	p.SellPrice = dec("26")

	updated, err := c.Update(p)
	require.NoError(t, err)
	require.True(t, updated)

	got, _ := c.FindByID("1")
	assert.True(t, got.SellPrice.Equal(dec("26")))
}

func TestUpdateRejectsBarcodeOfAnotherProduct(t *testing.T) {
	c := seeded()
	p, _ := c.FindByID("1")
	p.Barcode = "789123457"

	_, err := c.Update(p)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestDeleteIsNoopWhenAbsent(t *testing.T) {
	c := seeded()

	assert.False(t, c.Delete("nope"))
	assert.True(t, c.Delete("2"))

	_, ok := c.FindByID("2")
	assert.False(t, ok)
	p, ok := c.FindByBarcode("789123458")
	require.True(t, ok, "indexes must be rebuilt after delete")
	assert.Equal(t, "3", p.ID)
}

func TestAdjustStockMayGoNegative(t *testing.T) {
	c := seeded()

	p, err := c.AdjustStock("2", dec("-7"))
	require.NoError(t, err)
	assert.True(t, p.Stock.Equal(dec("-2")))

	_, err = c.AdjustStock("missing", dec("1"))
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestApplyStockStrictIsAllOrNothing(t *testing.T) {
	c := seeded()

	err := c.ApplyStock([]catalog.StockDelta{
		{ProductID: "1", Delta: dec("-10")},
		{ProductID: "2", Delta: dec("-6")},
	}, true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStockUnavailable))

	p1, _ := c.FindByID("1")
	assert.True(t, p1.Stock.Equal(dec("50")), "first product must be untouched")
}

func TestApplyStockAggregatesRepeatedProducts(t *testing.T) {
	c := seeded()

	require.NoError(t, c.ApplyStock([]catalog.StockDelta{
		{ProductID: "3", Delta: dec("-4")},
		{ProductID: "3", Delta: dec("-6")},
	}, true))

	p, _ := c.FindByID("3")
	assert.True(t, p.Stock.Equal(dec("90")))
}

func TestConcurrentAdjustmentsDoNotLoseUpdates(t *testing.T) {
	c := seeded()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = c.AdjustStock("3", dec("-1"))
		}()
		go func() {
			defer wg.Done()
			_ = c.ApplyStock([]catalog.StockDelta{{ProductID: "3", Delta: dec("2")}}, false)
		}()
	}
	wg.Wait()

	p, _ := c.FindByID("3")
	assert.True(t, p.Stock.Equal(dec("150")), "got %s", p.Stock)
}

func TestLowStockUsesInclusiveThreshold(t *testing.T) {
	c := seeded()
	low := c.LowStock()
	require.Len(t, low, 1)
	assert.Equal(t, "2", low[0].ID)

	_, err := c.AdjustStock("3", dec("-80"))
	require.NoError(t, err)
	assert.Len(t, c.LowStock(), 2, "stock equal to minimum counts as low")
}
