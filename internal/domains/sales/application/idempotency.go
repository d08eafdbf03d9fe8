package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/application/types"
	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/domain"
)

type normalizedCreateSale struct {
	CreatedBy string               `json:"createdBy"`
	Payment   string               `json:"payment"`
	Tendered  *string              `json:"tendered"`
	Items     []normalizedSaleItem `json:"items"`
}

type normalizedSaleItem struct {
	Barcode    string `json:"barcode"`
	Quantity   int    `json:"quantity"`
	CampaignID *int64 `json:"campaignId"`
}

// FingerprintCreateSale builds a deterministic hash of the sale request payload (excluding the idempotency key).
func FingerprintCreateSale(input types.CreateSaleInput) (string, error) {
	normalized := normalizedCreateSale{
		CreatedBy: strings.TrimSpace(input.CreatedBy),
		Payment:   strings.ToLower(input.PaymentCode),
		Items:     make([]normalizedSaleItem, 0, len(input.Items)),
	}
	if input.Tendered != nil {
		tendered := domain.RoundMoney(*input.Tendered).StringFixed(domain.MoneyScale)
		normalized.Tendered = &tendered
	}
	for _, item := range input.Items {
		normalized.Items = append(normalized.Items, normalizedSaleItem{
			Barcode:    item.Barcode,
			Quantity:   item.Quantity,
			CampaignID: item.CampaignID,
		})
	}
	payload, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
