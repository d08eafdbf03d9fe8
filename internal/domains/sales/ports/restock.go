package ports

import (
	"context"

	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/domain"
)

// RestockReason tells why units go back to the inventory authority.
type RestockReason string

const (
	RestockSaleAborted  RestockReason = "sale-aborted"
	RestockItemReturned RestockReason = "item-returned"
)

// RestockCommand returns one line's worth of stock.
type RestockCommand struct {
	OperationKey string
	Reason       RestockReason
	Adjustment   domain.StockAdjustment
}

// RestockDispatcher hands restock commands off without waiting for their outcome.
// Implementations log failures; they never report them to the caller.
type RestockDispatcher interface {
	Dispatch(ctx context.Context, cmd RestockCommand)
}
