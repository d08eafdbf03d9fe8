package domain

import "github.com/shopspring/decimal"

// StockRequest asks the inventory authority to check and reserve units.
type StockRequest struct {
	Barcode    string
	Quantity   int
	CampaignID *int64
}

// StockAdjustment returns units to the inventory authority.
type StockAdjustment struct {
	Barcode  string
	Quantity int
}

// InventorySnapshot is the authority's view of one product at check time.
type InventorySnapshot struct {
	Barcode   string
	SKU       string
	Name      string
	Quantity  int
	InStock   bool
	UnitPrice decimal.Decimal
}

// LineItemFromSnapshot builds a line item for the requested quantity.
func LineItemFromSnapshot(snap InventorySnapshot, req StockRequest) LineItem {
	item := LineItem{
		Barcode:    snap.Barcode,
		SKU:        snap.SKU,
		Name:       snap.Name,
		Quantity:   req.Quantity,
		UnitPrice:  RoundMoney(snap.UnitPrice),
		InStock:    snap.InStock,
		StockLevel: snap.Quantity,
	}
	if item.Barcode == "" {
		item.Barcode = req.Barcode
	}
	if req.CampaignID != nil {
		id := *req.CampaignID
		item.CampaignID = &id
	}
	return item
}
