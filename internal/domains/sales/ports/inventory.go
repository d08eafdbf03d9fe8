package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/domain"
)

// ErrPartialInventory signals a check result that does not cover every requested item.
var ErrPartialInventory = errors.New("inventory returned a partial result")

// Inventory coordinates stock with the external inventory authority.
// The operation key is forwarded so the authority can deduplicate retries.
type Inventory interface {
	// CheckAndReserve returns one snapshot per request in request order.
	// It fails with domain.ErrInventoryUnavailable when no usable answer arrived
	// and with ErrPartialInventory when the answer covers only some items.
	CheckAndReserve(ctx context.Context, operationKey string, items []domain.StockRequest) ([]domain.InventorySnapshot, error)
	// Adjust returns stock to the authority.
	Adjust(ctx context.Context, operationKey string, items []domain.StockAdjustment) error
}

// CampaignReader loads campaigns referenced by line items.
type CampaignReader interface {
	// FindByIDs returns the campaigns that exist; unknown IDs are omitted.
	FindByIDs(ctx context.Context, ids []int64) (map[int64]domain.Campaign, error)
}

// SaleNumberGenerator issues human-facing sale numbers.
type SaleNumberGenerator interface {
	NextSaleNumber(ctx context.Context) (string, error)
}
