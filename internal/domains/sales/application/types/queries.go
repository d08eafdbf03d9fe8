package types

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/domain"
)

const (
	DefaultPage     = 0
	DefaultPageSize = 3
	MaxPageSize     = 100
	DefaultSort     = "id,asc"
)

// SortOrder is one "field,direction" clause of a listing query.
type SortOrder struct {
	Field      string
	Descending bool
}

// SortableFields lists the fields accepted in SortOrder.Field.
var SortableFields = map[string]struct{}{
	"id":         {},
	"number":     {},
	"soldAt":     {},
	"createdBy":  {},
	"payment":    {},
	"totalPrice": {},
	"tendered":   {},
	"change":     {},
}

// SaleFilter narrows a listing. Nil fields do not filter.
type SaleFilter struct {
	ID         *int64
	Number     *string
	SoldOn     *time.Time
	CreatedBy  *string
	Payment    *domain.PaymentMethod
	TotalPrice *decimal.Decimal
	Tendered   *decimal.Decimal
	Change     *decimal.Decimal
	Barcode    *string
	// IncludeDeleted also returns soft-deleted sales.
	IncludeDeleted bool
}

// SaleQuery is a normalized listing request handed to repositories.
type SaleQuery struct {
	Filter SaleFilter
	Page   int
	Size   int
	Sort   []SortOrder
}

// ListSalesInput is the raw listing request. Zero values fall back to defaults.
type ListSalesInput struct {
	Filter SaleFilter
	Page   *int
	Size   *int
	// Sort holds "field,dir" clauses, e.g. "totalPrice,desc".
	Sort []string
}

// SalePage is one page of a listing.
type SalePage struct {
	Items      []*SaleProjection
	Page       int
	Size       int
	TotalItems int64
}

// TotalPages derives the page count from the total and the page size.
func (p SalePage) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.TotalItems + int64(p.Size) - 1) / int64(p.Size))
}
