package money

import (
	"testing"

	"github.com/sangkips/tableside-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleLines() []Line {
	return []Line{
		{Price: d("10.00"), Quantity: 2},
		{Price: d("5.00"), Quantity: 1},
	}
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "%s: want %s, got %s", field, want, got.String())
}

func TestCalculate_PercentageDiscountAndTax(t *testing.T) {
	b := Calculate(Input{
		Lines:      sampleLines(),
		Discount:   Discount{Type: enum.DiscountTypePercentage, Value: d("10")},
		TaxPercent: d("8"),
		AmountPaid: d("30.00"),
	})

	assertMoney(t, "25.00", b.Subtotal, "subtotal")
	assertMoney(t, "2.50", b.DiscountAmount, "discount")
	assertMoney(t, "22.50", b.AfterDiscount, "after discount")
	assertMoney(t, "1.80", b.TaxAmount, "tax")
	assertMoney(t, "24.30", b.Total, "total")
	assertMoney(t, "5.70", b.Change, "change")
	assertMoney(t, "0", b.Unpaid, "unpaid")
}

func TestCalculate_PartialPayment(t *testing.T) {
	b := Calculate(Input{
		Lines:      sampleLines(),
		Discount:   Discount{Type: enum.DiscountTypePercentage, Value: d("10")},
		TaxPercent: d("8"),
		AmountPaid: d("20.00"),
	})

	assertMoney(t, "4.30", b.Unpaid, "unpaid")
	assertMoney(t, "0", b.Change, "change")
}

func TestDiscountAmount_Clamped(t *testing.T) {
	tests := []struct {
		name     string
		discount Discount
		want     string
	}{
		{"percentage over 100", Discount{Type: enum.DiscountTypePercentage, Value: d("150")}, "25"},
		{"fixed over subtotal", Discount{Type: enum.DiscountTypeFixed, Value: d("40")}, "25"},
		{"negative fixed", Discount{Type: enum.DiscountTypeFixed, Value: d("-3")}, "0"},
		{"negative percentage", Discount{Type: enum.DiscountTypePercentage, Value: d("-10")}, "0"},
		{"fixed within range", Discount{Type: enum.DiscountTypeFixed, Value: d("4.75")}, "4.75"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DiscountAmount(d("25"), tt.discount)
			assertMoney(t, tt.want, got, "discount")
		})
	}
}

func TestCalculate_InvariantsHoldForBothDiscountTypes(t *testing.T) {
	lineSets := [][]Line{
		sampleLines(),
		{{Price: d("3.33"), Quantity: 3}},
		{{Price: d("0.99"), Quantity: 7}, {Price: d("12.49"), Quantity: 1}},
		{},
	}
	discounts := []Discount{
		{Type: enum.DiscountTypePercentage, Value: d("12.5")},
		{Type: enum.DiscountTypePercentage, Value: d("0")},
		{Type: enum.DiscountTypeFixed, Value: d("1.1")},
		{Type: enum.DiscountTypeFixed, Value: d("1000")},
	}
	paid := []decimal.Decimal{d("0"), d("5"), d("100")}

	for _, lines := range lineSets {
		for _, disc := range discounts {
			for _, p := range paid {
				for _, b := range []Breakdown{
					Calculate(Input{Lines: lines, Discount: disc, TaxPercent: d("7.25"), AmountPaid: p}),
					Calculate(Input{Lines: lines, Discount: disc, TaxPercent: d("7.25"), AmountPaid: p}).Rounded(),
				} {
					assert.True(t, b.Total.Equal(b.Subtotal.Sub(b.DiscountAmount).Add(b.TaxAmount)))
					assert.True(t, b.Unpaid.Equal(decimal.Max(decimal.Zero, b.Total.Sub(b.AmountPaid))))
					assert.False(t, b.DiscountAmount.IsNegative())
					assert.True(t, b.DiscountAmount.LessThanOrEqual(b.Subtotal))
				}
			}
		}
	}
}

func TestRounded_KeepsTotalConsistent(t *testing.T) {
	b := Calculate(Input{
		Lines:      []Line{{Price: d("3.33"), Quantity: 1}},
		Discount:   Discount{Type: enum.DiscountTypePercentage, Value: d("10")},
		TaxPercent: d("16"),
	}).Rounded()

	assertMoney(t, "3.33", b.Subtotal, "subtotal")
	assertMoney(t, "0.33", b.DiscountAmount, "discount")
	assertMoney(t, "0.48", b.TaxAmount, "tax")
	assertMoney(t, "3.48", b.Total, "total")
	assertMoney(t, "3.48", b.Unpaid, "unpaid")
}

func TestFloat(t *testing.T) {
	assert.Equal(t, 24.3, Float(d("24.2999")))
	assert.Equal(t, 0.0, Float(decimal.Zero))
}
