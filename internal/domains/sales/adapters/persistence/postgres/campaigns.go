package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/domain"
	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/ports"
)

var _ ports.CampaignReader = (*CampaignReader)(nil)

// CampaignReader loads campaign definitions maintained by the back office.
type CampaignReader struct {
	db *gorm.DB
}

func NewCampaignReader(db *gorm.DB) *CampaignReader {
	return &CampaignReader{db: db}
}

// FindByIDs returns the campaigns that exist among ids; unknown ids are omitted.
func (r *CampaignReader) FindByIDs(ctx context.Context, ids []int64) (map[int64]domain.Campaign, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("postgres campaign reader not configured")
	}
	out := make(map[int64]domain.Campaign, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var records []campaignRecord
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, err
	}
	for _, rec := range records {
		out[rec.ID] = rec.toDomain()
	}
	return out, nil
}

// Put upserts a campaign. Used for seeding.
func (r *CampaignReader) Put(ctx context.Context, c domain.Campaign) error {
	if r == nil || r.db == nil {
		return errors.New("postgres campaign reader not configured")
	}
	if err := c.Validate(); err != nil {
		return err
	}
	rec := campaignRecord{
		ID:            c.ID,
		Name:          c.Name,
		Kind:          int(c.Kind),
		PayQuantity:   c.BuyPay.Pay,
		FreeQuantity:  c.BuyPay.Free,
		Percent:       c.Percent,
		MoneyDiscount: c.MoneyDiscount,
		Active:        c.Active,
	}
	return r.db.WithContext(ctx).Save(&rec).Error
}
