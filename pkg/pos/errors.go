package pos

import "errors"

var (
	ErrSessionNotFound  = errors.New("register session not found")
	ErrProductNotFound  = errors.New("product not found in catalog")
	ErrSubmitInFlight   = errors.New("a sale commit is already in flight")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrTenderUnbalanced = errors.New("tender amounts do not cover the sale total")
)
