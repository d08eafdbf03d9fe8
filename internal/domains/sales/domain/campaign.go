package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DiscountKind discriminates the pricing rule a campaign applies.
type DiscountKind int

const (
	DiscountBuyPay     DiscountKind = 1
	DiscountPercentage DiscountKind = 2
	DiscountMoney      DiscountKind = 3
)

func (k DiscountKind) String() string {
	switch k {
	case DiscountBuyPay:
		return "buy-pay"
	case DiscountPercentage:
		return "percentage"
	case DiscountMoney:
		return "money"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// BuyPay holds the paid and free unit counts of a buy-pay campaign.
type BuyPay struct {
	Pay  int
	Free int
}

// Campaign is a promotional pricing rule. Line items only reference it by ID.
type Campaign struct {
	ID            int64
	Name          string
	Kind          DiscountKind
	BuyPay        BuyPay
	Percent       int
	MoneyDiscount decimal.Decimal
	Active        bool
}

// Validate checks the kind-specific parameters.
func (c Campaign) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidCampaign)
	}
	switch c.Kind {
	case DiscountBuyPay:
		if c.BuyPay.Pay < 0 || c.BuyPay.Free < 0 || c.BuyPay.Pay+c.BuyPay.Free == 0 {
			return fmt.Errorf("%w: buy-pay units must be non-negative with a positive group size", ErrInvalidCampaign)
		}
	case DiscountPercentage:
		if c.Percent < 0 || c.Percent > 100 {
			return fmt.Errorf("%w: percent must be within 0..100", ErrInvalidCampaign)
		}
	case DiscountMoney:
		if c.MoneyDiscount.IsNegative() {
			return fmt.Errorf("%w: money discount must not be negative", ErrInvalidCampaign)
		}
	default:
		return fmt.Errorf("%w: unsupported kind %d", ErrInvalidCampaign, int(c.Kind))
	}
	return nil
}

// PriceResolution is the outcome of applying a campaign to a unit price.
type PriceResolution struct {
	Price   decimal.Decimal
	Applied bool
	// Clamped reports that the discount exceeded the price and was cut at zero.
	Clamped bool
	// Inconsistent reports campaign parameters that could not be applied.
	Inconsistent bool
}

// ResolveUnitPrice applies an active campaign to the base unit price.
func ResolveUnitPrice(price decimal.Decimal, c *Campaign) PriceResolution {
	res := PriceResolution{Price: RoundMoney(price)}
	if c == nil || !c.Active {
		return res
	}
	var adjusted decimal.Decimal
	switch c.Kind {
	case DiscountBuyPay:
		group := c.BuyPay.Pay + c.BuyPay.Free
		if group <= 0 {
			res.Inconsistent = true
			return res
		}
		sets := price.Div(decimal.NewFromInt(int64(group)))
		adjusted = price.Sub(sets.Mul(decimal.NewFromInt(int64(c.BuyPay.Free))))
	case DiscountPercentage:
		adjusted = price.Sub(price.Mul(decimal.NewFromInt(int64(c.Percent))).Div(decimal.NewFromInt(100)))
	case DiscountMoney:
		adjusted = price.Sub(c.MoneyDiscount)
	default:
		return res
	}
	res.Applied = true
	if adjusted.IsNegative() {
		res.Clamped = true
		adjusted = decimal.Zero
	}
	res.Price = RoundMoney(adjusted)
	return res
}
