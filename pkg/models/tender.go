package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

// TenderMode is the payment settlement choice for a sale.
type TenderMode string

const (
	TenderCash   TenderMode = "cash"
	TenderCard   TenderMode = "card"
	TenderWallet TenderMode = "wallet"
	TenderMixed  TenderMode = "mixed"
)

// TenderKind names one of the three amounts inside a split.
type TenderKind string

const (
	KindCash   TenderKind = "cash"
	KindCard   TenderKind = "card"
	KindWallet TenderKind = "wallet"
)

var ErrNotMixedMode = errors.New("tender amounts can only be edited in mixed mode")

// One minor-unit increment, absorbing rounding drift between the three
// amounts and the computed total.
var balanceTolerance = decimal.NewFromFloat(0.005)

// TenderSplit carries the three tender amounts. For single modes the active
// amount equals the total by construction; only mixed mode is operator-edited.
type TenderSplit struct {
	Mode         TenderMode      `json:"mode"`
	CashAmount   decimal.Decimal `json:"cash_amount"`
	CardAmount   decimal.Decimal `json:"card_amount"`
	WalletAmount decimal.Decimal `json:"wallet_amount"`
}

// NewTenderSplit is the register default: cash for the full (currently zero) total.
func NewTenderSplit() TenderSplit {
	return TenderSplit{Mode: TenderCash}
}

// ApplyMode switches mode and re-derives the three amounts from the total.
// Mixed starts with an even cash/card split that the operator edits freely.
func (t *TenderSplit) ApplyMode(mode TenderMode, total decimal.Decimal) {
	t.Mode = mode
	t.CashAmount = decimal.Zero
	t.CardAmount = decimal.Zero
	t.WalletAmount = decimal.Zero

	switch mode {
	case TenderCash:
		t.CashAmount = total
	case TenderCard:
		t.CardAmount = total
	case TenderWallet:
		t.WalletAmount = total
	case TenderMixed:
		half := total.Div(decimal.NewFromInt(2))
		t.CashAmount = half
		t.CardAmount = half
	}
}

// SetAmount sets one amount of a mixed split. Negative input clamps to zero.
func (t *TenderSplit) SetAmount(kind TenderKind, amount decimal.Decimal) error {
	if t.Mode != TenderMixed {
		return ErrNotMixedMode
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	switch kind {
	case KindCash:
		t.CashAmount = amount
	case KindCard:
		t.CardAmount = amount
	case KindWallet:
		t.WalletAmount = amount
	default:
		return errors.New("unknown tender kind: " + string(kind))
	}
	return nil
}

func (t *TenderSplit) Sum() decimal.Decimal {
	return t.CashAmount.Add(t.CardAmount).Add(t.WalletAmount)
}

// Balanced reports whether the split covers the total. Single modes are
// balanced by construction; mixed must sum to the total within tolerance.
func (t *TenderSplit) Balanced(total decimal.Decimal) bool {
	if t.Mode != TenderMixed {
		return true
	}
	return t.Sum().Sub(total).Abs().LessThanOrEqual(balanceTolerance)
}
