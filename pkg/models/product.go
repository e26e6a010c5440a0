package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// The backend speaks plain JSON numbers for prices and quantities.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// PricingMode says whether a product is sold per discrete unit or per weight.
type PricingMode string

const (
	PricingUnit   PricingMode = "unit"
	PricingWeight PricingMode = "weight"
)

var (
	oneUnit       = decimal.NewFromInt(1)
	hundredGrams  = decimal.NewFromInt(100)
	gramsPerKilo  = decimal.NewFromInt(1000)
)

// Product is a catalog entry as served by the backend. Weight products are
// priced per kilogram and tracked in grams.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Barcode     string          `json:"barcode,omitempty"`
	PricingMode PricingMode     `json:"pricing_mode"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Stock       decimal.Decimal `json:"stock"`
	Category    string          `json:"category,omitempty"`
}

// DefaultIncrement is the quantity one scan or tap adds to the cart:
// 1 item for unit products, 100 grams for weight products.
func (p *Product) DefaultIncrement() decimal.Decimal {
	if p.PricingMode == PricingWeight {
		return hundredGrams
	}
	return oneUnit
}

// ClampQuantity snaps a requested quantity onto the product's valid domain.
// Unit products carry whole-item counts, so fractional input is truncated.
func (p *Product) ClampQuantity(qty decimal.Decimal) decimal.Decimal {
	if qty.IsNegative() {
		return decimal.Zero
	}
	if p.PricingMode == PricingUnit {
		return qty.Truncate(0)
	}
	return qty
}

// PriceFor returns the exact price contribution of the given cart quantity.
// Weight quantities are grams and the unit price is per kilogram.
func (p *Product) PriceFor(qty decimal.Decimal) decimal.Decimal {
	if p.PricingMode == PricingWeight {
		return p.UnitPrice.Mul(qty.Div(gramsPerKilo))
	}
	return p.UnitPrice.Mul(qty)
}

// Catalog is the product list as of one fetch. The engine never mutates it
// and never refreshes it on its own.
type Catalog []Product

func (c Catalog) FindByID(id int64) (*Product, bool) {
	for i := range c {
		if c[i].ID == id {
			return &c[i], true
		}
	}
	return nil, false
}

// Match resolves a scan/search term: an exact barcode hit wins, otherwise the
// first case-insensitive substring match on the name in catalog order.
func (c Catalog) Match(term string) (*Product, bool) {
	needle := strings.TrimSpace(term)
	if needle == "" {
		return nil, false
	}
	for i := range c {
		if c[i].Barcode != "" && c[i].Barcode == needle {
			return &c[i], true
		}
	}
	lower := strings.ToLower(needle)
	for i := range c {
		if strings.Contains(strings.ToLower(c[i].Name), lower) {
			return &c[i], true
		}
	}
	return nil, false
}

// Available filters the catalog to products with stock on hand, which is what
// the terminal displays.
func (c Catalog) Available() Catalog {
	out := make(Catalog, 0, len(c))
	for _, p := range c {
		if p.Stock.IsPositive() {
			out = append(out, p)
		}
	}
	return out
}
