package router

import (
	"github.com/shopspring/decimal"

	"github.com/gimenezlucas594-sudo/stocking-app/pkg/models"
	"github.com/gimenezlucas594-sudo/stocking-app/pkg/pos"
)

// LineView is one cart line joined with its catalog product for display.
type LineView struct {
	ProductID   int64              `json:"product_id"`
	Name        string             `json:"name"`
	PricingMode models.PricingMode `json:"pricing_mode"`
	Quantity    decimal.Decimal    `json:"quantity"`
	UnitPrice   decimal.Decimal    `json:"unit_price"`
	Subtotal    decimal.Decimal    `json:"subtotal"`
}

// RegisterView is what the terminal renders after every action.
type RegisterView struct {
	ID        string             `json:"id"`
	State     pos.State          `json:"state"`
	Lines     []LineView         `json:"lines"`
	Total     decimal.Decimal    `json:"total"`
	Tender    models.TenderSplit `json:"tender"`
	Balanced  bool               `json:"balanced"`
	CanSubmit bool               `json:"can_submit"`
	LastError string             `json:"last_error,omitempty"`
	LastSale  *models.Sale       `json:"last_sale,omitempty"`
}

func newRegisterView(reg *pos.Register) RegisterView {
	lines := make([]LineView, 0, len(reg.Cart.Lines))
	for _, line := range reg.Cart.Lines {
		lv := LineView{ProductID: line.ProductID, Quantity: line.Quantity}
		if p, ok := reg.Catalog.FindByID(line.ProductID); ok {
			lv.Name = p.Name
			lv.PricingMode = p.PricingMode
			lv.UnitPrice = p.UnitPrice
			lv.Subtotal = p.PriceFor(line.Quantity).Round(2)
		}
		lines = append(lines, lv)
	}

	balanced := reg.Balanced()
	return RegisterView{
		ID:        reg.ID,
		State:     reg.State,
		Lines:     lines,
		Total:     reg.Cart.DisplayTotal(reg.Catalog),
		Tender:    reg.Tender,
		Balanced:  balanced,
		CanSubmit: !reg.Cart.IsEmpty() && balanced && reg.State != pos.StateSubmitting,
		LastError: reg.LastError,
		LastSale:  reg.LastSale,
	}
}
