package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/application/types"
	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/domain"
	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists sales in PostgreSQL using GORM. Schema is owned by the migrations package.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var sortColumns = map[string]string{
	"id":         "id",
	"number":     "number",
	"soldAt":     "sold_at",
	"createdBy":  "created_by",
	"payment":    "payment",
	"totalPrice": "total_price",
	"tendered":   "tendered",
	"change":     "change_amount",
}

// Create inserts the sale header and its line items in one transaction.
func (r *Repository) Create(ctx context.Context, sale *domain.Sale) (*types.SaleProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, errors.New("sale is nil")
	}
	if err := sale.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(sale)
	record.ID = 0
	for i := range record.Items {
		record.Items[i].ID = 0
		record.Items[i].SaleID = 0
	}
	if err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&record).Error
	}); err != nil {
		return nil, fmt.Errorf("create sale %s: %w", sale.Number, err)
	}
	return r.GetByNumber(ctx, sale.Number)
}

// Modify locks the sale row, reloads the sale inside the transaction and applies mutate
// to that fresh copy. Line items are only written when their deletion flag changed, and
// only if the row still holds the flag that was read.
func (r *Repository) Modify(ctx context.Context, number string, mutate func(*domain.Sale) error) (*types.SaleProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if mutate == nil {
		return nil, errors.New("mutate is nil")
	}
	var mutateErr error
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked saleRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&locked, "number = ?", number).Error; err != nil {
			return err
		}
		if err := tx.Scopes(orderItems).Where("sale_id = ?", locked.ID).Find(&locked.Items).Error; err != nil {
			return err
		}
		before := locked.toProjection().Entity
		after := before.Clone()
		if mutateErr = mutate(after); mutateErr != nil {
			return mutateErr
		}
		return writeChanges(tx, locked.ID, before, after)
	})
	switch {
	case mutateErr != nil:
		return nil, mutateErr
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ports.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("modify sale %s: %w", number, err)
	}
	return r.GetByNumber(ctx, number)
}

func writeChanges(tx *gorm.DB, saleID int64, before, after *domain.Sale) error {
	if len(before.Items) != len(after.Items) {
		return errors.New("line items cannot be added or removed")
	}
	if err := tx.Model(&saleRecord{}).Where("id = ?", saleID).Updates(map[string]any{
		"total_price":   after.TotalPrice,
		"tendered":      after.Tendered,
		"change_amount": after.Change,
		"deleted":       after.Deleted,
		"updated_at":    gorm.Expr("NOW()"),
	}).Error; err != nil {
		return err
	}
	for i, item := range after.Items {
		was := before.Items[i]
		if item.ID != was.ID {
			return fmt.Errorf("line item %d moved", was.ID)
		}
		if item.Deleted == was.Deleted {
			continue
		}
		result := tx.Model(&lineItemRecord{}).
			Where("id = ? AND sale_id = ? AND deleted = ?", item.ID, saleID, was.Deleted).
			Update("deleted", item.Deleted)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return fmt.Errorf("%w: line item %d changed concurrently", domain.ErrLineItemNotFound, item.ID)
		}
	}
	return nil
}

// GetByNumber fetches a sale, deleted or not, with its items in entry order.
func (r *Repository) GetByNumber(ctx context.Context, number string) (*types.SaleProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record saleRecord
	if err := r.db.WithContext(ctx).
		Preload("Items", orderItems).
		First(&record, "number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toProjection(), nil
}

// List applies the filter, counts the matches, then loads the requested page.
func (r *Repository) List(ctx context.Context, query types.SaleQuery) (types.SalePage, error) {
	page := types.SalePage{Page: query.Page, Size: query.Size}
	if err := r.ensureDB(); err != nil {
		return page, err
	}
	base := applyFilter(r.db.WithContext(ctx).Model(&saleRecord{}), query.Filter)
	if err := base.Count(&page.TotalItems).Error; err != nil {
		return page, err
	}
	if page.TotalItems == 0 || query.Size <= 0 {
		return page, nil
	}

	scoped := applyFilter(r.db.WithContext(ctx), query.Filter)
	for _, order := range query.Sort {
		column, ok := sortColumns[order.Field]
		if !ok {
			continue
		}
		scoped = scoped.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: order.Descending})
	}
	scoped = scoped.Order("id")

	var records []saleRecord
	if err := scoped.
		Preload("Items", orderItems).
		Offset(query.Page * query.Size).
		Limit(query.Size).
		Find(&records).Error; err != nil {
		return page, err
	}
	page.Items = make([]*types.SaleProjection, 0, len(records))
	for i := range records {
		page.Items = append(page.Items, records[i].toProjection())
	}
	return page, nil
}

func applyFilter(db *gorm.DB, f types.SaleFilter) *gorm.DB {
	if !f.IncludeDeleted {
		db = db.Where("deleted = ?", false)
	}
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.Number != nil {
		db = db.Where("number = ?", *f.Number)
	}
	if f.SoldOn != nil {
		day := f.SoldOn.UTC().Format("2006-01-02")
		db = db.Where("(sold_at AT TIME ZONE 'UTC')::date = ?::date", day)
	}
	if f.CreatedBy != nil {
		db = db.Where("LOWER(created_by) = LOWER(?)", *f.CreatedBy)
	}
	if f.Payment != nil {
		db = db.Where("payment = ?", string(*f.Payment))
	}
	if f.TotalPrice != nil {
		db = db.Where("total_price = ?", *f.TotalPrice)
	}
	if f.Tendered != nil {
		db = db.Where("tendered = ?", *f.Tendered)
	}
	if f.Change != nil {
		db = db.Where("change_amount = ?", *f.Change)
	}
	if f.Barcode != nil {
		db = db.Where("? = ANY(barcodes)", *f.Barcode)
	}
	return db
}

func orderItems(db *gorm.DB) *gorm.DB {
	return db.Order("position, id")
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres sale repository not configured")
	}
	return nil
}
