package mapper

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	salestypes "github.com/Apurer/go-gin-sales-server/internal/domains/sales/application/types"
	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/domain"
)

// DateLayout is the calendar-day format accepted by the soldOn filter.
const DateLayout = "2006-01-02"

// SaleItemRequest is one requested line of a new sale.
type SaleItemRequest struct {
	Barcode    string `json:"barcode" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required,gt=0"`
	CampaignID *int64 `json:"campaignId,omitempty"`
}

// CreateSaleRequest is the register payload. PaymentType is the single-letter code.
type CreateSaleRequest struct {
	CreatedBy   string            `json:"createdBy"`
	PaymentType string            `json:"paymentType" binding:"required"`
	Money       *decimal.Decimal  `json:"money,omitempty"`
	Items       []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ReturnRequest asks to return one barcode of a sale.
type ReturnRequest struct {
	SaleNumber string     `json:"saleNumber" binding:"required"`
	Barcode    string     `json:"barcode" binding:"required"`
	Quantity   int        `json:"quantity" binding:"required,gt=0"`
	ReturnedAt *time.Time `json:"returnedAt,omitempty"`
}

// LineItem is the HTTP representation of a sold line.
type LineItem struct {
	ID         int64       `json:"id"`
	Barcode    string      `json:"barcode"`
	SKU        string      `json:"sku,omitempty"`
	Name       string      `json:"name"`
	Quantity   int         `json:"quantity"`
	UnitPrice  json.Number `json:"unitPrice"`
	InStock    bool        `json:"inStock"`
	CampaignID *int64      `json:"campaignId,omitempty"`
	Deleted    bool        `json:"deleted"`
}

// Sale is the HTTP representation of a committed sale.
type Sale struct {
	ID          int64       `json:"id"`
	SaleNumber  string      `json:"saleNumber"`
	SoldAt      time.Time   `json:"soldAt"`
	CreatedBy   string      `json:"createdBy"`
	PaymentType string      `json:"paymentType"`
	TotalPrice  json.Number `json:"totalPrice"`
	Money       json.Number `json:"money"`
	Change      json.Number `json:"change"`
	Deleted     bool        `json:"deleted"`
	Items       []LineItem  `json:"items"`
	CreatedAt   time.Time   `json:"createdAt,omitempty"`
	UpdatedAt   time.Time   `json:"updatedAt,omitempty"`
}

// SalePage wraps a listing page.
type SalePage struct {
	Content       []Sale `json:"content"`
	Page          int    `json:"page"`
	Size          int    `json:"size"`
	TotalElements int64  `json:"totalElements"`
	TotalPages    int    `json:"totalPages"`
}

// ReturnedLine pairs a soft-deleted line with the quantity sent back to stock.
type ReturnedLine struct {
	Item     LineItem `json:"item"`
	Quantity int      `json:"quantity"`
}

// ReturnResponse reports the outcome of one return.
type ReturnResponse struct {
	SaleNumber string         `json:"saleNumber"`
	Item       LineItem       `json:"item"`
	Returned   []ReturnedLine `json:"returned"`
}

// Money renders an amount with two fractional digits as a JSON number.
func Money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(domain.MoneyScale))
}

// ToCreateSaleInput maps the transport payload into the application command.
func ToCreateSaleInput(req CreateSaleRequest, idempotencyKey string) salestypes.CreateSaleInput {
	input := salestypes.CreateSaleInput{
		IdempotencyKey: strings.TrimSpace(idempotencyKey),
		CreatedBy:      req.CreatedBy,
		PaymentCode:    req.PaymentType,
		Tendered:       req.Money,
		Items:          make([]salestypes.SaleItemInput, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, salestypes.SaleItemInput{
			Barcode:    strings.TrimSpace(item.Barcode),
			Quantity:   item.Quantity,
			CampaignID: item.CampaignID,
		})
	}
	return input
}

func ToReturnItemInput(req ReturnRequest) salestypes.ReturnItemInput {
	return salestypes.ReturnItemInput{
		SaleNumber: req.SaleNumber,
		Barcode:    req.Barcode,
		Quantity:   req.Quantity,
		ReturnedAt: req.ReturnedAt,
	}
}

func ToReturnItemInputs(reqs []ReturnRequest) []salestypes.ReturnItemInput {
	out := make([]salestypes.ReturnItemInput, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, ToReturnItemInput(req))
	}
	return out
}

// FromProjection maps a sale projection to its HTTP shape.
func FromProjection(p *salestypes.SaleProjection) Sale {
	if p == nil || p.Entity == nil {
		return Sale{}
	}
	s := p.Entity
	out := Sale{
		ID:          s.ID,
		SaleNumber:  s.Number,
		SoldAt:      s.SoldAt,
		CreatedBy:   s.CreatedBy,
		PaymentType: string(s.Payment),
		TotalPrice:  Money(s.TotalPrice),
		Money:       Money(s.Tendered),
		Change:      Money(s.Change),
		Deleted:     s.Deleted,
		Items:       make([]LineItem, 0, len(s.Items)),
		CreatedAt:   p.Metadata.CreatedAt,
		UpdatedAt:   p.Metadata.UpdatedAt,
	}
	for _, item := range s.Items {
		out.Items = append(out.Items, FromLineItem(item))
	}
	return out
}

func FromLineItem(item domain.LineItem) LineItem {
	return LineItem{
		ID:         item.ID,
		Barcode:    item.Barcode,
		SKU:        item.SKU,
		Name:       item.Name,
		Quantity:   item.Quantity,
		UnitPrice:  Money(item.UnitPrice),
		InStock:    item.InStock,
		CampaignID: item.CampaignID,
		Deleted:    item.Deleted,
	}
}

func FromPage(page salestypes.SalePage) SalePage {
	out := SalePage{
		Content:       make([]Sale, 0, len(page.Items)),
		Page:          page.Page,
		Size:          page.Size,
		TotalElements: page.TotalItems,
		TotalPages:    page.TotalPages(),
	}
	for _, item := range page.Items {
		out.Content = append(out.Content, FromProjection(item))
	}
	return out
}

func FromReturnResult(r *salestypes.ReturnResult) ReturnResponse {
	if r == nil {
		return ReturnResponse{}
	}
	out := ReturnResponse{
		SaleNumber: r.SaleNumber,
		Item:       FromLineItem(r.Item),
		Returned:   make([]ReturnedLine, 0, len(r.Returned)),
	}
	for _, returned := range r.Returned {
		out.Returned = append(out.Returned, ReturnedLine{Item: FromLineItem(returned.Item), Quantity: returned.Quantity})
	}
	return out
}

func FromReturnResults(results []*salestypes.ReturnResult) []ReturnResponse {
	out := make([]ReturnResponse, 0, len(results))
	for _, r := range results {
		out = append(out, FromReturnResult(r))
	}
	return out
}

// ToListInput parses listing query parameters. Absent parameters leave defaults to the service.
func ToListInput(values url.Values) (salestypes.ListSalesInput, error) {
	var input salestypes.ListSalesInput
	var err error
	if input.Page, err = optionalInt(values, "page"); err != nil {
		return input, err
	}
	if input.Size, err = optionalInt(values, "size"); err != nil {
		return input, err
	}
	for _, raw := range values["sort"] {
		if strings.TrimSpace(raw) != "" {
			input.Sort = append(input.Sort, raw)
		}
	}

	f := &input.Filter
	if raw := strings.TrimSpace(values.Get("id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return input, fmt.Errorf("id must be an integer")
		}
		f.ID = &id
	}
	f.Number = optionalString(values, "saleNumber")
	f.CreatedBy = optionalString(values, "createdBy")
	f.Barcode = optionalString(values, "barcode")
	if raw := strings.TrimSpace(values.Get("soldOn")); raw != "" {
		day, err := time.Parse(DateLayout, raw)
		if err != nil {
			return input, fmt.Errorf("soldOn must use the %s layout", DateLayout)
		}
		f.SoldOn = &day
	}
	if raw := strings.TrimSpace(values.Get("paymentType")); raw != "" {
		method, err := parsePaymentFilter(raw)
		if err != nil {
			return input, err
		}
		f.Payment = &method
	}
	if f.TotalPrice, err = optionalDecimal(values, "totalPrice"); err != nil {
		return input, err
	}
	if f.Tendered, err = optionalDecimal(values, "money"); err != nil {
		return input, err
	}
	if f.Change, err = optionalDecimal(values, "change"); err != nil {
		return input, err
	}
	if raw := strings.TrimSpace(values.Get("includeDeleted")); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			return input, fmt.Errorf("includeDeleted must be a boolean")
		}
		f.IncludeDeleted = include
	}
	return input, nil
}

// parsePaymentFilter accepts the register codes as well as the stored names.
func parsePaymentFilter(raw string) (domain.PaymentMethod, error) {
	if method := domain.PaymentMethod(strings.ToLower(raw)); method.Valid() {
		return method, nil
	}
	method, err := domain.ParsePaymentCode(raw)
	if err != nil {
		return "", fmt.Errorf("paymentType must be one of n, k, cash, card")
	}
	return method, nil
}

func optionalInt(values url.Values, key string) (*int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", key)
	}
	return &v, nil
}

func optionalString(values url.Values, key string) *string {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil
	}
	return &raw
}

func optionalDecimal(values url.Values, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a decimal amount", key)
	}
	return &d, nil
}
