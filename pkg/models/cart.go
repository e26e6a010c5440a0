package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CartLine references a catalog product by identity. Quantity is a whole-item
// count for unit products and grams for weight products.
type CartLine struct {
	ProductID int64           `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// Cart is the in-progress sale: lines unique by product, in insertion order.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c *Cart) Find(productID int64) (*CartLine, bool) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i], true
		}
	}
	return nil, false
}

// Add increments an existing line by the product's default increment, or
// inserts a new line with that increment. No stock check happens here.
func (c *Cart) Add(p *Product) {
	if line, ok := c.Find(p.ID); ok {
		line.Quantity = line.Quantity.Add(p.DefaultIncrement())
		return
	}
	c.Lines = append(c.Lines, CartLine{ProductID: p.ID, Quantity: p.DefaultIncrement()})
}

// SetQuantity replaces a line's quantity. Zero or negative removes the line;
// positive values are clamped to the product's pricing domain. A line that
// does not exist yet is inserted.
func (c *Cart) SetQuantity(p *Product, qty decimal.Decimal) {
	if qty.Sign() <= 0 {
		c.Remove(p.ID)
		return
	}
	qty = p.ClampQuantity(qty)
	if qty.IsZero() {
		c.Remove(p.ID)
		return
	}
	if line, ok := c.Find(p.ID); ok {
		line.Quantity = qty
		return
	}
	c.Lines = append(c.Lines, CartLine{ProductID: p.ID, Quantity: qty})
}

func (c *Cart) Remove(productID int64) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

func (c *Cart) Clear() {
	c.Lines = nil
}

// Total sums each line's exact price contribution against the catalog.
// Rounding to cents happens only at display and submission time.
func (c *Cart) Total(catalog Catalog) decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		p, ok := catalog.FindByID(line.ProductID)
		if !ok {
			continue
		}
		total = total.Add(p.PriceFor(line.Quantity))
	}
	return total
}

// DisplayTotal is Total rounded to currency minor units.
func (c *Cart) DisplayTotal(catalog Catalog) decimal.Decimal {
	return c.Total(catalog).Round(2)
}

// ParseQuantity parses operator quantity input. Anything that is not a number
// counts as zero, which removes the line.
func ParseQuantity(raw string) decimal.Decimal {
	qty, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero
	}
	return qty
}
