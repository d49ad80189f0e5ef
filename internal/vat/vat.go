// Package vat implements the Colombian IVA split for tax-inclusive prices.
//
// All monetary values are int64 centavos (two implied decimals). Rounding is
// half-up, applied only to the base portion; the VAT portion is derived by
// subtraction so base + vat always equals the inclusive price exactly.
package vat

import "math"

// Category is a product's IVA classification. The codes are stored on
// orders and invoices and feed DIAN reporting, so they must stay stable.
type Category string

const (
	CategoryExcluido Category = "excluido" // outside the IVA regime
	CategoryExento   Category = "exento"   // 0% with credit rights
	CategoryReducido Category = "reducido" // 5%
	CategoryGeneral  Category = "general"  // 19%
)

// rates maps each category to its IVA fraction.
var rates = map[Category]float64{
	CategoryExcluido: 0,
	CategoryExento:   0,
	CategoryReducido: 0.05,
	CategoryGeneral:  0.19,
}

// Valid reports whether c is one of the four known categories.
func (c Category) Valid() bool {
	_, ok := rates[c]
	return ok
}

// Rate returns the IVA fraction for the category (0 for unknown values;
// unknown values are rejected at the product/order write boundary).
func (c Category) Rate() float64 {
	return rates[c]
}

// Split divides a tax-inclusive price into its base and VAT portions.
//
// base = round-half-up(price / (1 + rate)); vat = price - base. The VAT
// portion is never rounded independently, which guarantees base+vat == price
// with no residual centavo.
func Split(price int64, category Category) (base, amount int64) {
	rate := category.Rate()
	if rate == 0 || price <= 0 {
		return price, 0
	}
	base = int64(math.Round(float64(price) / (1 + rate)))
	return base, price - base
}

// Line is the per-category aggregate inside a Breakdown.
type Line struct {
	Base   int64 `json:"base"`
	Vat    int64 `json:"vat"`
	Total  int64 `json:"total"`
	Orders int64 `json:"orders"`
}

// Breakdown aggregates base/VAT totals per category. The category set is
// closed, so this is a fixed-shape record rather than a keyed map.
type Breakdown struct {
	Excluido Line `json:"excluido"`
	Exento   Line `json:"exento"`
	Reducido Line `json:"reducido"`
	General  Line `json:"general"`
}

// Add accumulates one aggregate onto the breakdown line for category.
func (b *Breakdown) Add(category Category, base, amount int64, orders int64) {
	line := b.line(category)
	if line == nil {
		return
	}
	line.Base += base
	line.Vat += amount
	line.Total += base + amount
	line.Orders += orders
}

// TotalBase sums the base portion across all categories.
func (b Breakdown) TotalBase() int64 {
	return b.Excluido.Base + b.Exento.Base + b.Reducido.Base + b.General.Base
}

// TotalVat sums the VAT portion across all categories.
func (b Breakdown) TotalVat() int64 {
	return b.Excluido.Vat + b.Exento.Vat + b.Reducido.Vat + b.General.Vat
}

func (b *Breakdown) line(category Category) *Line {
	switch category {
	case CategoryExcluido:
		return &b.Excluido
	case CategoryExento:
		return &b.Exento
	case CategoryReducido:
		return &b.Reducido
	case CategoryGeneral:
		return &b.General
	default:
		return nil
	}
}
