package inventory

import (
	inventoryclient "github.com/Apurer/go-gin-sales-server/internal/clients/http/inventory"
	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/domain"
)

// ToCheckItems maps stock requests to the check payload, keeping order.
func ToCheckItems(items []domain.StockRequest) []inventoryclient.CheckItem {
	out := make([]inventoryclient.CheckItem, 0, len(items))
	for _, item := range items {
		out = append(out, inventoryclient.CheckItem{
			Barcode:    item.Barcode,
			Quantity:   item.Quantity,
			CampaignID: item.CampaignID,
		})
	}
	return out
}

// ToAdjustItems maps stock adjustments to the adjust payload.
func ToAdjustItems(items []domain.StockAdjustment) []inventoryclient.AdjustItem {
	out := make([]inventoryclient.AdjustItem, 0, len(items))
	for _, item := range items {
		out = append(out, inventoryclient.AdjustItem{Barcode: item.Barcode, Quantity: item.Quantity})
	}
	return out
}

// ToSnapshot maps a product answer to the domain snapshot.
func ToSnapshot(p inventoryclient.ProductSnapshot) domain.InventorySnapshot {
	return domain.InventorySnapshot{
		Barcode:   p.Barcode,
		SKU:       p.SkuCode,
		Name:      p.Name,
		Quantity:  p.Quantity,
		InStock:   p.InStock,
		UnitPrice: p.UnitPrice,
	}
}
