package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/application/types"
	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/domain"
	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/ports"
	"github.com/Apurer/go-gin-sales-server/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory sale persistence adapter.
type Repository struct {
	mu         sync.RWMutex
	sales      map[string]*types.SaleProjection
	nextSaleID int64
	nextItemID int64
	now        func() time.Time
}

func NewRepository() *Repository {
	return &Repository{sales: map[string]*types.SaleProjection{}, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Create(_ context.Context, sale *domain.Sale) (*types.SaleProjection, error) {
	if sale == nil {
		return nil, errors.New("sale is nil")
	}
	clone := sale.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sales[clone.Number]; exists {
		return nil, errors.New("sale number already exists")
	}
	r.nextSaleID++
	clone.ID = r.nextSaleID
	for i := range clone.Items {
		r.nextItemID++
		clone.Items[i].ID = r.nextItemID
	}
	now := r.now()
	stored := &types.SaleProjection{Entity: clone, Metadata: projection.Created(now)}
	r.sales[clone.Number] = stored
	return types.CloneProjection(stored), nil
}

func (r *Repository) Modify(_ context.Context, number string, mutate func(*domain.Sale) error) (*types.SaleProjection, error) {
	if mutate == nil {
		return nil, errors.New("mutate is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.sales[number]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := existing.Entity.Clone()
	if err := mutate(clone); err != nil {
		return nil, err
	}
	clone.ID = existing.Entity.ID
	clone.Number = existing.Entity.Number
	stored := &types.SaleProjection{
		Entity:   clone,
		Metadata: existing.Metadata.Touched(r.now()),
	}
	r.sales[clone.Number] = stored
	return types.CloneProjection(stored), nil
}

func (r *Repository) GetByNumber(_ context.Context, number string) (*types.SaleProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.sales[number]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return types.CloneProjection(stored), nil
}

func (r *Repository) List(_ context.Context, query types.SaleQuery) (types.SalePage, error) {
	r.mu.RLock()
	matched := make([]*types.SaleProjection, 0, len(r.sales))
	for _, stored := range r.sales {
		if matches(stored.Entity, query.Filter) {
			matched = append(matched, types.CloneProjection(stored))
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return less(matched[i].Entity, matched[j].Entity, query.Sort)
	})

	page := types.SalePage{Page: query.Page, Size: query.Size, TotalItems: int64(len(matched))}
	start := query.Page * query.Size
	if query.Size <= 0 || start >= len(matched) {
		return page, nil
	}
	end := min(start+query.Size, len(matched))
	page.Items = matched[start:end]
	return page, nil
}

func matches(sale *domain.Sale, f types.SaleFilter) bool {
	if sale.Deleted && !f.IncludeDeleted {
		return false
	}
	if f.ID != nil && sale.ID != *f.ID {
		return false
	}
	if f.Number != nil && sale.Number != *f.Number {
		return false
	}
	if f.SoldOn != nil {
		y1, m1, d1 := sale.SoldAt.UTC().Date()
		y2, m2, d2 := f.SoldOn.UTC().Date()
		if y1 != y2 || m1 != m2 || d1 != d2 {
			return false
		}
	}
	if f.CreatedBy != nil && !strings.EqualFold(sale.CreatedBy, *f.CreatedBy) {
		return false
	}
	if f.Payment != nil && sale.Payment != *f.Payment {
		return false
	}
	if f.TotalPrice != nil && !sale.TotalPrice.Equal(*f.TotalPrice) {
		return false
	}
	if f.Tendered != nil && !sale.Tendered.Equal(*f.Tendered) {
		return false
	}
	if f.Change != nil && !sale.Change.Equal(*f.Change) {
		return false
	}
	if f.Barcode != nil {
		found := false
		for _, barcode := range sale.Barcodes() {
			if barcode == *f.Barcode {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func less(a, b *domain.Sale, orders []types.SortOrder) bool {
	for _, order := range orders {
		c := compare(a, b, order.Field)
		if c == 0 {
			continue
		}
		if order.Descending {
			return c > 0
		}
		return c < 0
	}
	return a.ID < b.ID
}

func compare(a, b *domain.Sale, field string) int {
	switch field {
	case "id":
		return cmpInt(a.ID, b.ID)
	case "number":
		return strings.Compare(a.Number, b.Number)
	case "soldAt":
		return a.SoldAt.Compare(b.SoldAt)
	case "createdBy":
		return strings.Compare(a.CreatedBy, b.CreatedBy)
	case "payment":
		return strings.Compare(string(a.Payment), string(b.Payment))
	case "totalPrice":
		return a.TotalPrice.Cmp(b.TotalPrice)
	case "tendered":
		return a.Tendered.Cmp(b.Tendered)
	case "change":
		return a.Change.Cmp(b.Change)
	default:
		return 0
	}
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
