package ports

import (
	"context"

	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/application/types"
)

// Service exposes the sales use cases to driving adapters.
type Service interface {
	CreateSale(ctx context.Context, input types.CreateSaleInput) (*types.SaleProjection, error)
	ReturnItem(ctx context.Context, input types.ReturnItemInput) (*types.ReturnResult, error)
	ReturnItems(ctx context.Context, inputs []types.ReturnItemInput) ([]*types.ReturnResult, error)
	DeleteSale(ctx context.Context, number string) error
	GetSale(ctx context.Context, number string) (*types.SaleProjection, error)
	ListSales(ctx context.Context, input types.ListSalesInput) (types.SalePage, error)
}
