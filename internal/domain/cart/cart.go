// Package cart holds the client-owned basket of lines that becomes an order.
// A Cart is an immutable value: every operation returns a new snapshot.
package cart

import (
	"github.com/sangkips/tableside-api/internal/domain/money"
	"github.com/shopspring/decimal"
)

// Item is one basket line. Name and price are the snapshot taken at add time.
type Item struct {
	Name     string
	Price    decimal.Decimal
	Quantity int
	ImageRef string
}

type key struct {
	name  string
	price string
}

func keyOf(it Item) key {
	return key{name: it.Name, price: it.Price.String()}
}

// Cart is an ordered, deduplicated list of items
type Cart struct {
	items []Item
}

// New builds a cart from items, merging identical name+price entries
func New(items ...Item) Cart {
	c := Cart{}
	for _, it := range items {
		c = c.Add(it)
	}
	return c
}

// Add returns a cart with it added; identical name+price lines are merged.
// Items with a non-positive quantity are ignored.
func (c Cart) Add(it Item) Cart {
	if it.Quantity <= 0 {
		return c
	}
	items := c.Items()
	k := keyOf(it)
	for i := range items {
		if keyOf(items[i]) == k {
			items[i].Quantity += it.Quantity
			if items[i].ImageRef == "" {
				items[i].ImageRef = it.ImageRef
			}
			return Cart{items: items}
		}
	}
	return Cart{items: append(items, it)}
}

// Decrement lowers the quantity of the matching line by one, dropping it at zero
func (c Cart) Decrement(name string, price decimal.Decimal) Cart {
	items := c.Items()
	k := key{name: name, price: price.String()}
	for i := range items {
		if keyOf(items[i]) != k {
			continue
		}
		items[i].Quantity--
		if items[i].Quantity <= 0 {
			items = append(items[:i], items[i+1:]...)
		}
		return Cart{items: items}
	}
	return c
}

// Remove drops the matching line entirely
func (c Cart) Remove(name string, price decimal.Decimal) Cart {
	k := key{name: name, price: price.String()}
	out := make([]Item, 0, len(c.items))
	for _, it := range c.items {
		if keyOf(it) != k {
			out = append(out, it)
		}
	}
	return Cart{items: out}
}

// Clear returns an empty cart
func (c Cart) Clear() Cart {
	return Cart{}
}

// Items returns a copy of the lines
func (c Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len is the number of distinct lines
func (c Cart) Len() int {
	return len(c.items)
}

// IsEmpty reports whether the cart has no lines
func (c Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Count is the total quantity across lines
func (c Cart) Count() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// MoneyLines converts the cart for the calculator
func (c Cart) MoneyLines() []money.Line {
	lines := make([]money.Line, len(c.items))
	for i, it := range c.items {
		lines[i] = money.Line{Price: it.Price, Quantity: it.Quantity}
	}
	return lines
}

// Total is the sum of price x quantity
func (c Cart) Total() decimal.Decimal {
	return money.Subtotal(c.MoneyLines())
}
