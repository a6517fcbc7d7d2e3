package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	ten  = decimal.RequireFromString("10.00")
	five = decimal.RequireFromString("5")
)

func TestAdd_MergesIdenticalNameAndPrice(t *testing.T) {
	c := New(
		Item{Name: "Burger", Price: ten, Quantity: 1},
		Item{Name: "Fries", Price: five, Quantity: 2},
		Item{Name: "Burger", Price: decimal.RequireFromString("10"), Quantity: 2},
	)

	require.Equal(t, 2, c.Len())
	items := c.Items()
	assert.Equal(t, "Burger", items[0].Name)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 5, c.Count())
	assert.True(t, decimal.RequireFromString("40").Equal(c.Total()))
}

func TestAdd_DifferentPriceKeepsSeparateLines(t *testing.T) {
	c := New(
		Item{Name: "Burger", Price: ten, Quantity: 1},
		Item{Name: "Burger", Price: decimal.RequireFromString("12"), Quantity: 1},
	)
	assert.Equal(t, 2, c.Len())
}

func TestAdd_IgnoresNonPositiveQuantity(t *testing.T) {
	c := New(Item{Name: "Water", Price: five, Quantity: 0})
	assert.True(t, c.IsEmpty())
}

func TestOperationsReturnNewSnapshots(t *testing.T) {
	base := New(Item{Name: "Burger", Price: ten, Quantity: 2})

	dec := base.Decrement("Burger", ten)
	assert.Equal(t, 2, base.Items()[0].Quantity)
	assert.Equal(t, 1, dec.Items()[0].Quantity)

	gone := dec.Decrement("Burger", ten)
	assert.True(t, gone.IsEmpty())
	assert.Equal(t, 1, dec.Len())

	removed := base.Remove("Burger", ten)
	assert.True(t, removed.IsEmpty())
	assert.Equal(t, 1, base.Len())

	assert.True(t, base.Clear().IsEmpty())
}

func TestDecrement_UnknownLineIsNoop(t *testing.T) {
	c := New(Item{Name: "Burger", Price: ten, Quantity: 1})
	assert.Equal(t, c.Items(), c.Decrement("Pizza", ten).Items())
}
