package postgres

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/application/types"
	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/domain"
	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/ports"
	"github.com/Apurer/go-gin-sales-server/internal/shared/projection"
)

// saleRecord maps the sale aggregate to the sales table. Barcodes is
// denormalised from the line items so list filters avoid a join.
type saleRecord struct {
	ID         int64            `gorm:"primaryKey;column:id"`
	Number     string           `gorm:"column:number;size:32;uniqueIndex"`
	SoldAt     time.Time        `gorm:"column:sold_at;index"`
	CreatedBy  string           `gorm:"column:created_by;size:128;index"`
	Payment    string           `gorm:"column:payment;type:varchar(8)"`
	TotalPrice decimal.Decimal  `gorm:"column:total_price;type:numeric(14,2)"`
	Tendered   decimal.Decimal  `gorm:"column:tendered;type:numeric(14,2)"`
	Change     decimal.Decimal  `gorm:"column:change_amount;type:numeric(14,2)"`
	Deleted    bool             `gorm:"column:deleted;index"`
	Barcodes   pq.StringArray   `gorm:"column:barcodes;type:text[]"`
	Items      []lineItemRecord `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time        `gorm:"column:created_at"`
	UpdatedAt  time.Time        `gorm:"column:updated_at"`
}

func (saleRecord) TableName() string { return "sales" }

type lineItemRecord struct {
	ID         int64           `gorm:"primaryKey;column:id"`
	SaleID     int64           `gorm:"column:sale_id;index"`
	Position   int             `gorm:"column:position"`
	Barcode    string          `gorm:"column:barcode;size:64;index"`
	SKU        string          `gorm:"column:sku;size:64"`
	Name       string          `gorm:"column:name"`
	Quantity   int             `gorm:"column:quantity"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2)"`
	InStock    bool            `gorm:"column:in_stock"`
	StockLevel int             `gorm:"column:stock_level"`
	CampaignID *int64          `gorm:"column:campaign_id"`
	Deleted    bool            `gorm:"column:deleted"`
}

func (lineItemRecord) TableName() string { return "sale_line_items" }

type campaignRecord struct {
	ID            int64           `gorm:"primaryKey;column:id"`
	Name          string          `gorm:"column:name"`
	Kind          int             `gorm:"column:kind"`
	PayQuantity   int             `gorm:"column:pay_quantity"`
	FreeQuantity  int             `gorm:"column:free_quantity"`
	Percent       int             `gorm:"column:percent"`
	MoneyDiscount decimal.Decimal `gorm:"column:money_discount;type:numeric(14,2)"`
	Active        bool            `gorm:"column:active"`
}

func (campaignRecord) TableName() string { return "campaigns" }

type idempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128"`
	SaleNumber  string    `gorm:"column:sale_number;size:32"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	ExpiresAt   time.Time `gorm:"column:expires_at;index"`
}

func (idempotencyRecord) TableName() string { return "sale_idempotency_keys" }

func (r idempotencyRecord) toPort() *ports.IdempotencyRecord {
	return &ports.IdempotencyRecord{
		Key:         r.Key,
		RequestHash: r.RequestHash,
		SaleNumber:  r.SaleNumber,
		CreatedAt:   r.CreatedAt,
		ExpiresAt:   r.ExpiresAt,
	}
}

func toRecord(sale *domain.Sale) saleRecord {
	rec := saleRecord{
		ID:         sale.ID,
		Number:     sale.Number,
		SoldAt:     sale.SoldAt.UTC(),
		CreatedBy:  sale.CreatedBy,
		Payment:    string(sale.Payment),
		TotalPrice: sale.TotalPrice,
		Tendered:   sale.Tendered,
		Change:     sale.Change,
		Deleted:    sale.Deleted,
		Barcodes:   pq.StringArray(sale.Barcodes()),
		Items:      make([]lineItemRecord, 0, len(sale.Items)),
	}
	for i, item := range sale.Items {
		rec.Items = append(rec.Items, lineItemRecord{
			ID:         item.ID,
			SaleID:     sale.ID,
			Position:   i,
			Barcode:    item.Barcode,
			SKU:        item.SKU,
			Name:       item.Name,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			InStock:    item.InStock,
			StockLevel: item.StockLevel,
			CampaignID: item.CampaignID,
			Deleted:    item.Deleted,
		})
	}
	return rec
}

func (r saleRecord) toProjection() *types.SaleProjection {
	sale := &domain.Sale{
		ID:         r.ID,
		Number:     r.Number,
		SoldAt:     r.SoldAt.UTC(),
		CreatedBy:  r.CreatedBy,
		Payment:    domain.PaymentMethod(r.Payment),
		TotalPrice: r.TotalPrice,
		Tendered:   r.Tendered,
		Change:     r.Change,
		Deleted:    r.Deleted,
		Items:      make([]domain.LineItem, 0, len(r.Items)),
	}
	for _, item := range r.Items {
		sale.Items = append(sale.Items, domain.LineItem{
			ID:         item.ID,
			Barcode:    item.Barcode,
			SKU:        item.SKU,
			Name:       item.Name,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			InStock:    item.InStock,
			StockLevel: item.StockLevel,
			CampaignID: item.CampaignID,
			Deleted:    item.Deleted,
		})
	}
	return &types.SaleProjection{
		Entity:   sale,
		Metadata: projection.Metadata{CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt},
	}
}

func (r campaignRecord) toDomain() domain.Campaign {
	return domain.Campaign{
		ID:            r.ID,
		Name:          r.Name,
		Kind:          domain.DiscountKind(r.Kind),
		BuyPay:        domain.BuyPay{Pay: r.PayQuantity, Free: r.FreeQuantity},
		Percent:       r.Percent,
		MoneyDiscount: r.MoneyDiscount,
		Active:        r.Active,
	}
}
