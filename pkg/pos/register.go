// Package pos holds the sale transaction engine: the register state machine,
// cart arithmetic and tender reconciliation for one operator session.
package pos

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gimenezlucas594-sudo/stocking-app/pkg/models"
)

// State is the register's position in the sale lifecycle.
type State string

const (
	StateBuilding       State = "building"
	StateAwaitingTender State = "awaiting_tender"
	StateSubmitting     State = "submitting"
	StateSettled        State = "settled"
	StateFailed         State = "failed"
)

// Register is one operator's in-progress sale. It pins a catalog snapshot at
// open time; price and stock changes become visible only through an explicit
// catalog refresh, never mid-cart.
type Register struct {
	ID        string             `json:"id"`
	State     State              `json:"state"`
	Catalog   models.Catalog     `json:"catalog"`
	Cart      models.Cart        `json:"cart"`
	Tender    models.TenderSplit `json:"tender"`
	LastSale  *models.Sale       `json:"last_sale,omitempty"`
	LastError string             `json:"last_error,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func NewRegister(catalog models.Catalog) *Register {
	now := time.Now().UTC()
	return &Register{
		ID:        uuid.NewString(),
		State:     StateBuilding,
		Catalog:   catalog,
		Tender:    models.NewTenderSplit(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ensureEditable gates every operator action. A register with a commit in
// flight is frozen; a settled one starts the next sale on first touch.
func (r *Register) ensureEditable() error {
	switch r.State {
	case StateSubmitting:
		return ErrSubmitInFlight
	case StateSettled:
		r.State = StateBuilding
		r.LastError = ""
	case StateFailed:
		r.State = StateBuilding
	}
	return nil
}

// Resolve matches a scan/search term against the catalog and adds the hit to
// the cart. The second return value tells the caller to clear the search
// input; a miss has no side effect.
func (r *Register) Resolve(term string) (*models.Product, bool, error) {
	if err := r.ensureEditable(); err != nil {
		return nil, false, err
	}
	p, ok := r.Catalog.Match(term)
	if !ok {
		return nil, false, nil
	}
	r.Cart.Add(p)
	return p, true, nil
}

// AddProduct adds one default increment of a catalog product to the cart.
func (r *Register) AddProduct(productID int64) (*models.Product, error) {
	if err := r.ensureEditable(); err != nil {
		return nil, err
	}
	p, ok := r.Catalog.FindByID(productID)
	if !ok {
		return nil, ErrProductNotFound
	}
	r.Cart.Add(p)
	return p, nil
}

// SetQuantity applies a raw operator-typed quantity to a line. Non-numeric,
// zero and negative input all remove the line.
func (r *Register) SetQuantity(productID int64, raw string) error {
	if err := r.ensureEditable(); err != nil {
		return err
	}
	p, ok := r.Catalog.FindByID(productID)
	if !ok {
		return ErrProductNotFound
	}
	r.Cart.SetQuantity(p, models.ParseQuantity(raw))
	return nil
}

func (r *Register) RemoveLine(productID int64) error {
	if err := r.ensureEditable(); err != nil {
		return err
	}
	r.Cart.Remove(productID)
	return nil
}

func (r *Register) ClearCart() error {
	if err := r.ensureEditable(); err != nil {
		return err
	}
	r.Cart.Clear()
	return nil
}

// Total is the cart total against the pinned catalog, exact (unrounded).
func (r *Register) Total() decimal.Decimal {
	return r.Cart.Total(r.Catalog)
}

// SelectTender switches payment mode and re-derives the three amounts from
// the current total.
func (r *Register) SelectTender(mode models.TenderMode) error {
	if err := r.ensureEditable(); err != nil {
		return err
	}
	r.Tender.ApplyMode(mode, r.Total())
	r.State = StateAwaitingTender
	return nil
}

// SetTenderAmount edits one amount of a mixed split.
func (r *Register) SetTenderAmount(kind models.TenderKind, amount decimal.Decimal) error {
	if err := r.ensureEditable(); err != nil {
		return err
	}
	return r.Tender.SetAmount(kind, amount)
}

func (r *Register) Balanced() bool {
	return r.Tender.Balanced(r.Total())
}

// RefreshCatalog swaps in a newly fetched snapshot. Cart lines keep their
// product identities, so price changes take effect immediately.
func (r *Register) RefreshCatalog(catalog models.Catalog) error {
	if err := r.ensureEditable(); err != nil {
		return err
	}
	r.Catalog = catalog
	return nil
}

// BeginSubmit validates the sale and freezes the register for the commit
// round trip. Validation happens here regardless of what the UI allowed:
// an empty cart or an unbalanced tender never reaches the network.
func (r *Register) BeginSubmit() error {
	if r.State == StateSubmitting {
		return ErrSubmitInFlight
	}
	if r.Cart.IsEmpty() {
		return ErrEmptyCart
	}
	total := r.Total()
	if r.Tender.Mode != models.TenderMixed {
		// Single modes are set to the total by construction; the cart may
		// have changed since the mode was chosen.
		r.Tender.ApplyMode(r.Tender.Mode, total)
	}
	if !r.Tender.Balanced(total) {
		return ErrTenderUnbalanced
	}
	r.State = StateSubmitting
	r.LastError = ""
	return nil
}

// CompleteSubmit records the committed sale, empties the cart and swaps in
// the refreshed catalog so decremented stock shows for the next sale.
func (r *Register) CompleteSubmit(sale *models.Sale, catalog models.Catalog) {
	r.LastSale = sale
	if catalog != nil {
		r.Catalog = catalog
	}
	r.Cart.Clear()
	r.Tender = models.NewTenderSplit()
	r.State = StateSettled
	r.LastError = ""
}

// FailSubmit unfreezes the register after a rejected or failed commit. Cart
// and tender are preserved exactly so the operator can adjust and retry.
func (r *Register) FailSubmit(reason string) {
	r.State = StateFailed
	r.LastError = reason
}
