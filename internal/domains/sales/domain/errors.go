package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInventoryUnavailable    = errors.New("inventory unavailable")
	ErrProductUnavailable      = errors.New("product unavailable")
	ErrInvalidPaymentType      = errors.New("invalid payment type")
	ErrNoMoneyEntered          = errors.New("no money entered for cash payment")
	ErrInsufficientBalance     = errors.New("insufficient balance")
	ErrReturnPeriodExpired     = errors.New("return period expired")
	ErrLineItemNotFound        = errors.New("line item not found")
	ErrQuantityExceedsOriginal = errors.New("return quantity exceeds original quantity")

	ErrEmptySaleNumber = errors.New("sale number is required")
	ErrEmptySale       = errors.New("sale must contain at least one item")
	ErrEmptyBarcode    = errors.New("barcode is required")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrNegativeMoney   = errors.New("money amount must not be negative")
	ErrInvalidCampaign = errors.New("invalid campaign")
)

// ProductUnavailableError names the line item that blocked a sale.
type ProductUnavailableError struct {
	Barcode string
	Name    string
}

func (e *ProductUnavailableError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s (%s)", ErrProductUnavailable, e.Name, e.Barcode)
	}
	return fmt.Sprintf("%s: %s", ErrProductUnavailable, e.Barcode)
}

func (e *ProductUnavailableError) Is(target error) bool {
	return target == ErrProductUnavailable
}
