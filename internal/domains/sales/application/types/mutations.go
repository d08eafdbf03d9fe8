package types

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/domain"
)

// SaleItemInput is one requested line of a new sale.
type SaleItemInput struct {
	Barcode    string
	Quantity   int
	CampaignID *int64
}

// CreateSaleInput carries a sale request as received from a register.
type CreateSaleInput struct {
	// IdempotencyKey makes retries of the same request replay the committed sale.
	IdempotencyKey string
	CreatedBy      string
	PaymentCode    string
	Tendered       *decimal.Decimal
	Items          []SaleItemInput
}

// StockRequests maps the requested lines to inventory requests, keeping order.
func (in CreateSaleInput) StockRequests() []domain.StockRequest {
	out := make([]domain.StockRequest, 0, len(in.Items))
	for _, item := range in.Items {
		out = append(out, domain.StockRequest{
			Barcode:    item.Barcode,
			Quantity:   item.Quantity,
			CampaignID: item.CampaignID,
		})
	}
	return out
}

// ReturnItemInput asks to return one barcode of a sale. A nil ReturnedAt means now.
type ReturnItemInput struct {
	SaleNumber string
	Barcode    string
	Quantity   int
	ReturnedAt *time.Time
}

// ReturnResult reports the line items soft-deleted by a return.
type ReturnResult struct {
	SaleNumber string
	// Item is the last matching line item processed.
	Item     domain.LineItem
	Returned []domain.ReturnedItem
}
