package domain

import (
	"fmt"
	"strings"
	"time"
)

// ReturnWindowDays is the number of whole days after a sale during which items may be returned.
const ReturnWindowDays = 15

// ReturnRequest asks to take back a line item of a committed sale.
type ReturnRequest struct {
	SaleNumber string
	Barcode    string
	Quantity   int
	ReturnedAt time.Time
}

// Validate checks the request shape before any lookup.
func (r ReturnRequest) Validate() error {
	if strings.TrimSpace(r.SaleNumber) == "" {
		return ErrEmptySaleNumber
	}
	if strings.TrimSpace(r.Barcode) == "" {
		return ErrEmptyBarcode
	}
	if r.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}

// ElapsedDays counts whole 24h periods between from and to.
func ElapsedDays(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}

// ReturnedItem pairs a soft-deleted line item with the quantity to replenish.
type ReturnedItem struct {
	Item     LineItem
	Quantity int
}

// Return soft-deletes every non-deleted line item matching the barcode.
// Nothing is mutated unless all checks pass. The returned slice keeps item order,
// so its last element is the item reported back to the caller.
func (s *Sale) Return(req ReturnRequest) ([]ReturnedItem, error) {
	if days := ElapsedDays(s.SoldAt, req.ReturnedAt); days > ReturnWindowDays {
		return nil, fmt.Errorf("%w: %d days since sale %s", ErrReturnPeriodExpired, days, s.Number)
	}
	matches := make([]int, 0, 1)
	for i, item := range s.Items {
		if item.Deleted || item.Barcode != req.Barcode {
			continue
		}
		matches = append(matches, i)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: barcode %s in sale %s", ErrLineItemNotFound, req.Barcode, s.Number)
	}
	for _, idx := range matches {
		if req.Quantity > s.Items[idx].Quantity {
			return nil, fmt.Errorf("%w: requested %d, sold %d", ErrQuantityExceedsOriginal, req.Quantity, s.Items[idx].Quantity)
		}
	}
	returned := make([]ReturnedItem, 0, len(matches))
	for _, idx := range matches {
		s.Items[idx].Deleted = true
		returned = append(returned, ReturnedItem{Item: s.Items[idx], Quantity: req.Quantity})
	}
	return returned, nil
}
