package migrations

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the sales schema. Adapters never migrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&saleRecord{},
		&lineItemRecord{},
		&campaignRecord{},
		&idempotencyRecord{},
	)
}

// Sale schema mirrors the sales Postgres adapter.
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

// Campaigns are written by the back office; the sales service only reads them.
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
