package types

import (
	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/domain"
	"github.com/Apurer/go-gin-sales-server/internal/shared/projection"
)

// SaleProjection transports a sale aggregate with its persistence metadata.
type SaleProjection = projection.Projection[*domain.Sale]

// CloneProjection deep-copies the aggregate so callers cannot mutate stored state.
func CloneProjection(src *SaleProjection) *SaleProjection {
	return projection.Map(src, (*domain.Sale).Clone)
}
