package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItem records one line of a committed sale with the unit price the
// backend applied at commit time.
type SaleItem struct {
	ProductID int64           `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Sale is an immutable committed sale, owned by the backend. Its total is
// authoritative and may differ from the cart's locally computed total if
// prices changed between add and commit.
type Sale struct {
	ID        int64           `json:"id"`
	Items     []SaleItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Tender    TenderSplit     `json:"tender"`
	CreatedAt time.Time       `json:"created_at"`
}
