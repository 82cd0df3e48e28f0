// Package cart keeps the product quantities a customer has selected and derives
// totals from them.
package cart

import (
	"github.com/example/storefront/pkg/catalog"
)

// UnitWeightGrams is the nominal weight of one unit sold. The catalog's weight
// string is display-only and never used for totals.
const UnitWeightGrams = 500

// Line is one product and the quantity selected. Quantity is always >= 1.
type Line struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Subtotal returns price times quantity.
func (l Line) Subtotal() int64 {
	return l.Product.Price * int64(l.Quantity)
}

// WeightGrams returns the nominal weight of the line.
func (l Line) WeightGrams() int {
	return l.Quantity * UnitWeightGrams
}

// Cart is single-session, single-writer state. Lines keep first-added order.
type Cart struct {
	lines []*Line
	index map[string]int
}

func New() *Cart {
	return &Cart{index: make(map[string]int)}
}

// Add increments the product's line or inserts a new one with quantity 1.
func (c *Cart) Add(p catalog.Product) {
	if i, ok := c.index[p.ID]; ok {
		c.lines[i].Quantity++
		return
	}
	c.index[p.ID] = len(c.lines)
	c.lines = append(c.lines, &Line{Product: p, Quantity: 1})
}

// UpdateQuantity sets the quantity of an existing line. A quantity <= 0
// removes the line. Unknown products are ignored.
func (c *Cart) UpdateQuantity(productID string, quantity int) {
	if quantity <= 0 {
		c.Remove(productID)
		return
	}
	if i, ok := c.index[productID]; ok {
		c.lines[i].Quantity = quantity
	}
}

// Remove drops the product's line if present.
func (c *Cart) Remove(productID string) {
	i, ok := c.index[productID]
	if !ok {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	delete(c.index, productID)
	for j := i; j < len(c.lines); j++ {
		c.index[c.lines[j].Product.ID] = j
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
	c.index = make(map[string]int)
}

// Total returns the sum of price times quantity over all lines.
func (c *Cart) Total() int64 {
	var total int64
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

// TotalWeight returns the nominal weight of the cart in grams.
func (c *Cart) TotalWeight() int {
	var grams int
	for _, l := range c.lines {
		grams += l.WeightGrams()
	}
	return grams
}

// Count returns the number of units across all lines.
func (c *Cart) Count() int {
	var n int
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	for i, l := range c.lines {
		out[i] = *l
	}
	return out
}

// Quantity returns the quantity held for a product, 0 when absent.
func (c *Cart) Quantity(productID string) int {
	if i, ok := c.index[productID]; ok {
		return c.lines[i].Quantity
	}
	return 0
}

// Snapshot is the serializable form of a cart used by session caches.
type Snapshot struct {
	Lines []Line `json:"lines"`
}

func (c *Cart) Snapshot() Snapshot {
	return Snapshot{Lines: c.Lines()}
}

// Restore rebuilds a cart from a snapshot. Lines with a non-positive quantity
// are dropped and repeated products are merged into the first occurrence.
func Restore(s Snapshot) *Cart {
	c := New()
	for _, l := range s.Lines {
		if l.Quantity <= 0 || l.Product.ID == "" {
			continue
		}
		if i, ok := c.index[l.Product.ID]; ok {
			c.lines[i].Quantity += l.Quantity
			continue
		}
		c.index[l.Product.ID] = len(c.lines)
		line := l
		c.lines = append(c.lines, &line)
	}
	return c
}
