package models

import "github.com/shopspring/decimal"

// Request bodies for the POS session API.

type ScanRequest struct {
	Term string `json:"term" binding:"required"`
}

type AddLineRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
}

// Quantity arrives as the raw string the operator typed; parsing decides
// whether the line survives.
type UpdateLineRequest struct {
	Quantity string `json:"quantity"`
}

type SelectTenderRequest struct {
	Mode TenderMode `json:"mode" binding:"required,oneof=cash card wallet mixed"`
}

type SetTenderAmountRequest struct {
	Kind   TenderKind      `json:"kind" binding:"required,oneof=cash card wallet"`
	Amount decimal.Decimal `json:"amount"`
}
