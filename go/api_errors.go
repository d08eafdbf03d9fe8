package salesserver

import (
	"errors"

	salesapp "github.com/Apurer/go-gin-sales-server/internal/domains/sales/application"
	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/domain"
	salesports "github.com/Apurer/go-gin-sales-server/internal/domains/sales/ports"
	apierrors "github.com/Apurer/go-gin-sales-server/internal/shared/errors"
)

// Sales problem types.
const (
	TypeInventoryUnavailable    = "/problems/inventory-unavailable"
	TypeProductUnavailable      = "/problems/product-unavailable"
	TypeInvalidPaymentType      = "/problems/invalid-payment-type"
	TypeNoMoneyEntered          = "/problems/no-money-entered"
	TypeInsufficientBalance     = "/problems/insufficient-balance"
	TypeSaleNotFound            = "/problems/sale-not-found"
	TypeReturnPeriodExpired     = "/problems/return-period-expired"
	TypeLineItemNotFound        = "/problems/line-item-not-found"
	TypeQuantityExceedsOriginal = "/problems/quantity-exceeds-original"
	TypeSaleInProgress          = "/problems/sale-in-progress"
)

// NewSalesResponder builds the RFC 7807 responder used by the sales handlers.
func NewSalesResponder(baseURI string) *apierrors.ChainedResponder {
	return apierrors.NewChainedResponder(baseURI, MapSalesError)
}

// MapSalesError turns sales failures into problem details. Order matters:
// wrapped errors can match several sentinels and the most specific wins.
func MapSalesError(err error) (apierrors.ProblemDetail, bool) {
	if err == nil {
		return apierrors.ProblemDetail{}, false
	}
	detail := err.Error()

	var unavailable *domain.ProductUnavailableError
	switch {
	case errors.As(err, &unavailable):
		return apierrors.ErrConflict.
			Typed(TypeProductUnavailable, "Product Unavailable").
			WithDetail(detail).
			WithExtension("barcode", unavailable.Barcode), true
	case errors.Is(err, domain.ErrInventoryUnavailable):
		return apierrors.ErrServiceUnavailable.Typed(TypeInventoryUnavailable, "Inventory Unavailable").WithDetail(detail), true
	case errors.Is(err, domain.ErrInvalidPaymentType):
		return apierrors.ErrBadRequest.Typed(TypeInvalidPaymentType, "Invalid Payment Type").WithDetail(detail), true
	case errors.Is(err, domain.ErrNoMoneyEntered):
		return apierrors.ErrBadRequest.Typed(TypeNoMoneyEntered, "No Money Entered").WithDetail(detail), true
	case errors.Is(err, domain.ErrInsufficientBalance):
		return apierrors.ErrPaymentRequired.Typed(TypeInsufficientBalance, "Insufficient Balance").WithDetail(detail), true
	case errors.Is(err, salesports.ErrNotFound):
		return apierrors.ErrNotFound.Typed(TypeSaleNotFound, "Sale Not Found").WithDetail(detail), true
	case errors.Is(err, domain.ErrReturnPeriodExpired):
		return apierrors.ErrUnprocessable.Typed(TypeReturnPeriodExpired, "Return Period Expired").WithDetail(detail), true
	case errors.Is(err, domain.ErrLineItemNotFound):
		return apierrors.ErrNotFound.Typed(TypeLineItemNotFound, "Line Item Not Found").WithDetail(detail), true
	case errors.Is(err, domain.ErrQuantityExceedsOriginal):
		return apierrors.ErrUnprocessable.Typed(TypeQuantityExceedsOriginal, "Quantity Exceeds Original").WithDetail(detail), true
	case errors.Is(err, salesports.ErrIdempotencyInProgress):
		return apierrors.ErrConflict.Typed(TypeSaleInProgress, "Sale In Progress").WithDetail(detail), true
	case errors.Is(err, salesports.ErrIdempotencyConflict):
		return apierrors.ErrConflict.WithDetail(detail), true
	case errors.Is(err, salesapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(detail), true
	}
	return apierrors.ProblemDetail{}, false
}
