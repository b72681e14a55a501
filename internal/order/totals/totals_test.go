package totals

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestLineTotal(t *testing.T) {
	assert.True(t, LineTotal(d("3"), d("5000")).Equal(d("15000")))
	assert.True(t, LineTotal(d("2.5"), d("8000")).Equal(d("20000")))
	assert.True(t, LineTotal(d("0.1"), d("0.2")).Equal(d("0.02")))
}

func TestOrderTotalsSumsLines(t *testing.T) {
	lines := []Line{
		{Quantity: d("3"), UnitPrice: d("5000"), TotalPrice: d("15000")},
		{Quantity: d("2"), UnitPrice: d("10000"), TotalPrice: d("20000")},
	}
	amount, items := OrderTotals(lines)
	assert.True(t, amount.Equal(d("35000")))
	assert.True(t, items.Equal(d("5")))
}

func TestOrderTotalsOrderInsensitive(t *testing.T) {
	a := []Line{
		{Quantity: d("1.5"), TotalPrice: d("7500")},
		{Quantity: d("4"), TotalPrice: d("2000")},
		{Quantity: d("2"), TotalPrice: d("12000")},
	}
	b := []Line{a[2], a[0], a[1]}

	amountA, itemsA := OrderTotals(a)
	amountB, itemsB := OrderTotals(b)
	assert.True(t, amountA.Equal(amountB))
	assert.True(t, itemsA.Equal(itemsB))
}

func TestOrderTotalsEmpty(t *testing.T) {
	amount, items := OrderTotals(nil)
	assert.True(t, amount.IsZero())
	assert.True(t, items.IsZero())
}

func TestQuantityChangeDelta(t *testing.T) {
	unit := d("5000")
	before := LineTotal(d("3"), unit)
	after := LineTotal(d("5"), unit)
	assert.True(t, after.Sub(before).Equal(unit.Mul(d("2"))))
}
