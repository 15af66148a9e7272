// Package pricing derives final displayed prices from stored base prices.
//
// Prices are minor-unit-free integers (whole hryvnias in the shipped catalog).
// The discount and the global markup are applied as two separate stages, each
// rounded independently. Collapsing them into a single formula changes the
// displayed price for some inputs, so the staging is part of the contract.
package pricing

import "github.com/shopspring/decimal"

// Discounts above this are treated as data-entry mistakes and clamped.
const maxDiscountPercent = 90

var hundred = decimal.NewFromInt(100)

// Final computes the displayed price for a base price with the product's
// discount and the brand's global markup applied, in that order:
//
//	afterDiscount = round(base * (1 - discount/100))
//	final         = round(afterDiscount * (1 + markup/100))
//
// Negative inputs are clamped to zero; discount is additionally capped at 90.
// The function is total: any input combination yields a non-negative result.
func Final(base, discountPercent, markupPercent int64) int64 {
	b := clampMin(base, 0)
	d := clampMin(discountPercent, 0)
	if d > maxDiscountPercent {
		d = maxDiscountPercent
	}
	m := clampMin(markupPercent, 0)

	afterDiscount := decimal.NewFromInt(b).
		Mul(hundred.Sub(decimal.NewFromInt(d))).
		Div(hundred).
		Round(0)

	return afterDiscount.
		Mul(hundred.Add(decimal.NewFromInt(m))).
		Div(hundred).
		Round(0).
		IntPart()
}

func clampMin(v, floor int64) int64 {
	if v < floor {
		return floor
	}
	return v
}
