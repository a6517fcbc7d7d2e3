// Package money computes bill totals. All arithmetic is exact decimal;
// rounding to cents happens only when a Breakdown is frozen for storage or
// rendered for display.
package money

import (
	"github.com/sangkips/tableside-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places money is presented with
const Scale int32 = 2

var hundred = decimal.NewFromInt(100)

// Line is one priced entry of a bill or order
type Line struct {
	Price    decimal.Decimal
	Quantity int
}

// Discount is the configured discount of a bill
type Discount struct {
	Type  enum.DiscountType
	Value decimal.Decimal
}

// Input holds everything the calculator needs
type Input struct {
	Lines      []Line
	Discount   Discount
	TaxPercent decimal.Decimal
	AmountPaid decimal.Decimal
}

// Breakdown is the result of a calculation.
// Total == Subtotal - DiscountAmount + TaxAmount and Unpaid == max(0, Total - AmountPaid).
type Breakdown struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	AfterDiscount  decimal.Decimal `json:"after_discount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Total          decimal.Decimal `json:"total"`
	AmountPaid     decimal.Decimal `json:"amount_paid"`
	Change         decimal.Decimal `json:"change"`
	Unpaid         decimal.Decimal `json:"unpaid"`
}

// Subtotal returns the sum of price x quantity over lines
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

// DiscountAmount resolves d against subtotal, clamped to [0, subtotal]
func DiscountAmount(subtotal decimal.Decimal, d Discount) decimal.Decimal {
	var amount decimal.Decimal
	if d.Type == enum.DiscountTypePercentage {
		amount = subtotal.Mul(d.Value).Div(hundred)
	} else {
		amount = d.Value
	}
	return Clamp(amount, decimal.Zero, subtotal)
}

// Tax returns base x percent / 100
func Tax(base, percent decimal.Decimal) decimal.Decimal {
	return base.Mul(percent).Div(hundred)
}

// Calculate runs the full computation in its fixed order
func Calculate(in Input) Breakdown {
	subtotal := Subtotal(in.Lines)
	discount := DiscountAmount(subtotal, in.Discount)
	after := subtotal.Sub(discount)
	tax := Tax(after, in.TaxPercent)
	return settle(subtotal, discount, tax, in.AmountPaid)
}

// Rounded freezes b to cents. The components are rounded individually and the
// derived fields are recomputed from them, so the invariants hold exactly on
// the rounded values.
func (b Breakdown) Rounded() Breakdown {
	return settle(Round(b.Subtotal), Round(b.DiscountAmount), Round(b.TaxAmount), Round(b.AmountPaid))
}

func settle(subtotal, discount, tax, paid decimal.Decimal) Breakdown {
	after := subtotal.Sub(discount)
	total := after.Add(tax)
	return Breakdown{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		AfterDiscount:  after,
		TaxAmount:      tax,
		Total:          total,
		AmountPaid:     paid,
		Change:         Change(total, paid),
		Unpaid:         Unpaid(total, paid),
	}
}

// Change returns max(0, paid - total)
func Change(total, paid decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, paid.Sub(total))
}

// Unpaid returns max(0, total - paid)
func Unpaid(total, paid decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, total.Sub(paid))
}

// Clamp bounds v to [lo, hi]
func Clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}

// Round rounds to presentation scale
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// Float returns d rounded to cents as a float64 for JSON responses
func Float(d decimal.Decimal) float64 {
	return Round(d).InexactFloat64()
}
