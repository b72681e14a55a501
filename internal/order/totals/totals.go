// Package totals recomputes derived money fields. Line totals and order
// aggregates are never set directly; every write path goes through these
// functions.
package totals

import "github.com/shopspring/decimal"

// Line is the slice of a line item the calculator needs.
type Line struct {
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// LineTotal computes quantity × unit price in decimal arithmetic.
func LineTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice)
}

// OrderTotals sums line totals and quantities. The result depends only on
// the multiset of lines, not their order.
//
// Items is the sum of quantities, not a count of tagged garments; the RFID
// reconciliation job squares the two up out of band.
func OrderTotals(lines []Line) (amount, items decimal.Decimal) {
	amount = decimal.Zero
	items = decimal.Zero
	for _, l := range lines {
		amount = amount.Add(l.TotalPrice)
		items = items.Add(l.Quantity)
	}
	return amount, items
}
