package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits kept for currency amounts.
const MoneyScale int32 = 2

// RoundMoney rounds half away from zero to MoneyScale digits.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// PaymentMethod is how the customer settles a sale.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

// ParsePaymentCode maps the single-letter register code to a payment method.
// "n"/"N" is cash and "k"/"K" is card.
func ParsePaymentCode(code string) (PaymentMethod, error) {
	switch code {
	case "n", "N":
		return PaymentCash, nil
	case "k", "K":
		return PaymentCard, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPaymentType, code)
	}
}

// Valid reports whether the method is one of the known values.
func (p PaymentMethod) Valid() bool {
	return p == PaymentCash || p == PaymentCard
}

// LineItem is one product line within a sale.
type LineItem struct {
	ID        int64
	Barcode   string
	SKU       string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	InStock   bool
	// StockLevel is the quantity the inventory authority reported at sale time.
	StockLevel int
	CampaignID *int64
	Deleted    bool
}

// Subtotal is UnitPrice × Quantity.
func (i LineItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Sale is the aggregate root of a point-of-sale transaction.
type Sale struct {
	ID         int64
	Number     string
	SoldAt     time.Time
	CreatedBy  string
	Payment    PaymentMethod
	TotalPrice decimal.Decimal
	Tendered   decimal.Decimal
	Change     decimal.Decimal
	Deleted    bool
	Items      []LineItem
}

// NewSale builds a sale in the Building state.
func NewSale(number string, soldAt time.Time, createdBy string, items []LineItem) (*Sale, error) {
	sale := &Sale{
		Number:    strings.TrimSpace(number),
		SoldAt:    soldAt,
		CreatedBy: strings.TrimSpace(createdBy),
		Items:     append([]LineItem(nil), items...),
	}
	if err := sale.Validate(); err != nil {
		return nil, err
	}
	return sale, nil
}

// Validate ensures the structural invariants of the aggregate.
func (s *Sale) Validate() error {
	if s.Number == "" {
		return ErrEmptySaleNumber
	}
	if len(s.Items) == 0 {
		return ErrEmptySale
	}
	for _, item := range s.Items {
		if strings.TrimSpace(item.Barcode) == "" {
			return ErrEmptyBarcode
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: barcode %s", ErrInvalidQuantity, item.Barcode)
		}
	}
	return nil
}

// ComputeTotal recomputes TotalPrice over the non-deleted items.
func (s *Sale) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		if item.Deleted {
			continue
		}
		total = total.Add(item.Subtotal())
	}
	s.TotalPrice = RoundMoney(total)
	return s.TotalPrice
}

// Settle records the payment. Card payments tender exactly the total; cash
// requires an amount at least equal to the total.
func (s *Sale) Settle(method PaymentMethod, tendered *decimal.Decimal) error {
	if !method.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPaymentType, string(method))
	}
	s.Payment = method
	amount := s.TotalPrice
	if method == PaymentCash {
		if tendered == nil {
			return ErrNoMoneyEntered
		}
		if tendered.IsNegative() {
			return ErrNegativeMoney
		}
		amount = RoundMoney(*tendered)
	}
	s.Tendered = amount
	if amount.LessThan(s.TotalPrice) {
		return fmt.Errorf("%w: tendered %s, total %s", ErrInsufficientBalance, amount.StringFixed(MoneyScale), s.TotalPrice.StringFixed(MoneyScale))
	}
	s.Change = amount.Sub(s.TotalPrice)
	return nil
}

// MarkDeleted soft-deletes the sale and every line item.
func (s *Sale) MarkDeleted() {
	s.Deleted = true
	for i := range s.Items {
		s.Items[i].Deleted = true
	}
}

// Barcodes lists the distinct barcodes of the sale in item order.
func (s *Sale) Barcodes() []string {
	seen := make(map[string]struct{}, len(s.Items))
	out := make([]string, 0, len(s.Items))
	for _, item := range s.Items {
		if _, ok := seen[item.Barcode]; ok {
			continue
		}
		seen[item.Barcode] = struct{}{}
		out = append(out, item.Barcode)
	}
	return out
}

// Clone returns a deep copy of the aggregate.
func (s *Sale) Clone() *Sale {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Items = make([]LineItem, len(s.Items))
	for i, item := range s.Items {
		if item.CampaignID != nil {
			id := *item.CampaignID
			item.CampaignID = &id
		}
		clone.Items[i] = item
	}
	return &clone
}
