package vat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit_GeneralRate(t *testing.T) {
	// 119,000.00 COP inclusive at 19% -> 100,000.00 base, 19,000.00 IVA.
	base, amount := Split(11900000, CategoryGeneral)
	assert.Equal(t, int64(10000000), base)
	assert.Equal(t, int64(1900000), amount)
}

func TestSplit_ReducidoRate(t *testing.T) {
	base, amount := Split(10500, CategoryReducido)
	assert.Equal(t, int64(10000), base)
	assert.Equal(t, int64(500), amount)
}

func TestSplit_ZeroRateCategories(t *testing.T) {
	for _, category := range []Category{CategoryExcluido, CategoryExento} {
		base, amount := Split(11900000, category)
		assert.Equal(t, int64(11900000), base, string(category))
		assert.Zero(t, amount, string(category))
	}
}

func TestSplit_SumInvariant(t *testing.T) {
	// base + vat must equal the inclusive price exactly, for awkward
	// prices where independent rounding would leave a one-centavo residue.
	prices := []int64{1, 99, 101, 119, 1999, 333333, 11900001, 987654321}
	for _, price := range prices {
		for category := range rates {
			base, amount := Split(price, category)
			assert.Equal(t, price, base+amount, "price=%d category=%s", price, category)
			assert.GreaterOrEqual(t, amount, int64(0))
			assert.GreaterOrEqual(t, base, int64(0))
		}
	}
}

func TestSplit_NonPositivePrice(t *testing.T) {
	base, amount := Split(0, CategoryGeneral)
	assert.Zero(t, base)
	assert.Zero(t, amount)
}

func TestCategory_Valid(t *testing.T) {
	assert.True(t, CategoryGeneral.Valid())
	assert.True(t, CategoryExcluido.Valid())
	assert.False(t, Category("iva").Valid())
	assert.False(t, Category("").Valid())
}

func TestBreakdown_Add(t *testing.T) {
	var b Breakdown
	b.Add(CategoryGeneral, 10000000, 1900000, 1)
	b.Add(CategoryGeneral, 5000000, 950000, 1)
	b.Add(CategoryExento, 300000, 0, 1)
	b.Add(Category("unknown"), 100, 100, 1) // ignored

	assert.Equal(t, int64(15000000), b.General.Base)
	assert.Equal(t, int64(2850000), b.General.Vat)
	assert.Equal(t, int64(17850000), b.General.Total)
	assert.Equal(t, int64(2), b.General.Orders)
	assert.Equal(t, int64(300000), b.Exento.Base)
	assert.Equal(t, int64(15300000), b.TotalBase())
	assert.Equal(t, int64(2850000), b.TotalVat())
}
