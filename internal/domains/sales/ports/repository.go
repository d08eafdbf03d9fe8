package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/application/types"
	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/domain"
)

var ErrNotFound = errors.New("sale not found")

// Repository persists sale aggregates together with their line items.
type Repository interface {
	// Create inserts a new sale and its items atomically and assigns identifiers.
	Create(ctx context.Context, sale *domain.Sale) (*types.SaleProjection, error)
	// Modify loads the sale under a write lock, applies mutate and stores the amounts and
	// deletion flags it changed in the same critical section. Concurrent modifications of
	// one sale are serialised. When mutate fails nothing is stored and its error is returned
	// unchanged. mutate must not call back into the repository.
	Modify(ctx context.Context, number string, mutate func(*domain.Sale) error) (*types.SaleProjection, error)
	GetByNumber(ctx context.Context, number string) (*types.SaleProjection, error)
	List(ctx context.Context, query types.SaleQuery) (types.SalePage, error)
}
