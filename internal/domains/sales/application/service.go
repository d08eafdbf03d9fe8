package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/application/types"
	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/domain"
	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/ports"
)

// PricingAnomaly describes a campaign that produced an unusable price.
type PricingAnomaly struct {
	SaleNumber   string
	Barcode      string
	CampaignID   int64
	Clamped      bool
	Inconsistent bool
}

// Service orchestrates the sales bounded context use cases.
type Service struct {
	repo        ports.Repository
	inventory   ports.Inventory
	numbers     ports.SaleNumberGenerator
	restock     ports.RestockDispatcher
	campaigns   ports.CampaignReader
	idempotency ports.IdempotencyStore
	now         func() time.Time
	onAnomaly   func(ctx context.Context, anomaly PricingAnomaly)
}

// Option configures optional collaborators of the Service.
type Option func(*Service)

// WithCampaigns enables campaign pricing.
func WithCampaigns(reader ports.CampaignReader) Option {
	return func(s *Service) { s.campaigns = reader }
}

// WithIdempotencyStore enables replay of sale requests that carry an idempotency key.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) { s.idempotency = store }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithPricingAnomalyHook registers a callback for clamped or inconsistent campaign prices.
func WithPricingAnomalyHook(hook func(ctx context.Context, anomaly PricingAnomaly)) Option {
	return func(s *Service) { s.onAnomaly = hook }
}

// NewService wires the sales service with its dependencies.
func NewService(repo ports.Repository, inventory ports.Inventory, numbers ports.SaleNumberGenerator, restock ports.RestockDispatcher, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		inventory: inventory,
		numbers:   numbers,
		restock:   restock,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateSale checks stock, prices every line, validates payment and commits the sale.
// When the customer cannot pay, one restock command per reserved line is dispatched and
// nothing is persisted.
func (s *Service) CreateSale(ctx context.Context, input types.CreateSaleInput) (*types.SaleProjection, error) {
	if err := validateCreateSale(input); err != nil {
		return nil, err
	}

	key := strings.TrimSpace(input.IdempotencyKey)
	var fingerprint string
	committed := false
	if key != "" && s.idempotency != nil {
		hash, err := FingerprintCreateSale(input)
		if err != nil {
			return nil, err
		}
		replayed, err := s.claim(ctx, key, hash)
		if err != nil || replayed != nil {
			return replayed, err
		}
		fingerprint = hash
		defer func() {
			if !committed {
				// An unreleased claim lapses after ports.PendingClaimLease.
				_ = s.idempotency.Release(context.WithoutCancel(ctx), key, fingerprint)
			}
		}()
	}

	campaigns, err := s.loadCampaigns(ctx, input.Items)
	if err != nil {
		return nil, err
	}
	number, err := s.numbers.NextSaleNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate sale number: %w", err)
	}

	// Building
	requests := input.StockRequests()
	snapshots, err := s.inventory.CheckAndReserve(ctx, number, requests)
	if err != nil {
		if errors.Is(err, domain.ErrInventoryUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrInventoryUnavailable, err)
	}
	if len(snapshots) == 0 {
		return nil, fmt.Errorf("%w: empty inventory response", domain.ErrInventoryUnavailable)
	}
	if len(snapshots) != len(requests) {
		return nil, fmt.Errorf("%w: %w: got %d of %d items", domain.ErrInventoryUnavailable, ports.ErrPartialInventory, len(snapshots), len(requests))
	}
	items := make([]domain.LineItem, 0, len(snapshots))
	for i, snap := range snapshots {
		items = append(items, domain.LineItemFromSnapshot(snap, requests[i]))
	}
	sale, err := domain.NewSale(number, s.now(), input.CreatedBy, items)
	if err != nil {
		return nil, mapError(err)
	}

	// PricingApplied
	for i := range sale.Items {
		item := &sale.Items[i]
		if !item.InStock {
			return nil, &domain.ProductUnavailableError{Barcode: item.Barcode, Name: item.Name}
		}
		var campaign *domain.Campaign
		if item.CampaignID != nil {
			if c, ok := campaigns[*item.CampaignID]; ok {
				campaign = &c
			}
		}
		res := domain.ResolveUnitPrice(item.UnitPrice, campaign)
		if (res.Clamped || res.Inconsistent) && s.onAnomaly != nil {
			s.onAnomaly(ctx, PricingAnomaly{
				SaleNumber:   number,
				Barcode:      item.Barcode,
				CampaignID:   campaign.ID,
				Clamped:      res.Clamped,
				Inconsistent: res.Inconsistent,
			})
		}
		item.UnitPrice = res.Price
	}
	sale.ComputeTotal()

	// PaymentValidated
	method, err := domain.ParsePaymentCode(input.PaymentCode)
	if err != nil {
		return nil, err
	}
	if err := sale.Settle(method, input.Tendered); err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			s.compensate(ctx, sale)
		}
		return nil, mapError(err)
	}

	// Committed
	saved, err := s.repo.Create(ctx, sale)
	if err != nil {
		return nil, mapError(err)
	}
	committed = true
	if fingerprint != "" {
		err := s.idempotency.Complete(ctx, key, fingerprint, saved.Entity.Number)
		// The sale is committed either way; a lapsed claim only loses the replay.
		if err != nil && !errors.Is(err, ports.ErrIdempotencyClaimLost) {
			return nil, fmt.Errorf("bind idempotency key to sale %s: %w", saved.Entity.Number, err)
		}
	}
	return saved, nil
}

// claim takes the idempotency key before any stock is reserved. A nil projection
// with a nil error means this request owns the key and must build the sale.
func (s *Service) claim(ctx context.Context, key, fingerprint string) (*types.SaleProjection, error) {
	record, claimed, err := s.idempotency.Claim(ctx, key, fingerprint)
	if err != nil {
		return nil, err
	}
	switch {
	case claimed:
		return nil, nil
	case record.RequestHash != fingerprint:
		return nil, ports.ErrIdempotencyConflict
	case record.Pending():
		return nil, ports.ErrIdempotencyInProgress
	}
	return s.repo.GetByNumber(ctx, record.SaleNumber)
}

func (s *Service) loadCampaigns(ctx context.Context, items []types.SaleItemInput) (map[int64]domain.Campaign, error) {
	if s.campaigns == nil {
		return nil, nil
	}
	ids := make([]int64, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		if item.CampaignID == nil {
			continue
		}
		if _, ok := seen[*item.CampaignID]; ok {
			continue
		}
		seen[*item.CampaignID] = struct{}{}
		ids = append(ids, *item.CampaignID)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	campaigns, err := s.campaigns.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load campaigns: %w", err)
	}
	return campaigns, nil
}

func (s *Service) compensate(ctx context.Context, sale *domain.Sale) {
	if s.restock == nil {
		return
	}
	for _, item := range sale.Items {
		s.restock.Dispatch(ctx, ports.RestockCommand{
			OperationKey: fmt.Sprintf("sale-%s-abort-%s", sale.Number, item.Barcode),
			Reason:       ports.RestockSaleAborted,
			Adjustment:   domain.StockAdjustment{Barcode: item.Barcode, Quantity: item.Quantity},
		})
	}
}

func validateCreateSale(input types.CreateSaleInput) error {
	if len(input.Items) == 0 {
		return mapError(domain.ErrEmptySale)
	}
	for i, item := range input.Items {
		if strings.TrimSpace(item.Barcode) == "" {
			return mapError(fmt.Errorf("item %d: %w", i, domain.ErrEmptyBarcode))
		}
		if item.Quantity <= 0 {
			return mapError(fmt.Errorf("item %d: %w", i, domain.ErrInvalidQuantity))
		}
	}
	if input.Tendered != nil && input.Tendered.IsNegative() {
		return mapError(domain.ErrNegativeMoney)
	}
	return nil
}

// ReturnItem soft-deletes every line of the sale matching the barcode and
// dispatches one replenish command per returned line after the sale is stored.
func (s *Service) ReturnItem(ctx context.Context, input types.ReturnItemInput) (*types.ReturnResult, error) {
	req := domain.ReturnRequest{
		SaleNumber: strings.TrimSpace(input.SaleNumber),
		Barcode:    strings.TrimSpace(input.Barcode),
		Quantity:   input.Quantity,
		ReturnedAt: s.now(),
	}
	if input.ReturnedAt != nil {
		req.ReturnedAt = *input.ReturnedAt
	}
	if err := req.Validate(); err != nil {
		return nil, mapError(err)
	}
	var returned []domain.ReturnedItem
	saved, err := s.repo.Modify(ctx, req.SaleNumber, func(sale *domain.Sale) error {
		if sale.Deleted {
			return ports.ErrNotFound
		}
		items, err := sale.Return(req)
		returned = items
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	sale := saved.Entity
	if s.restock != nil {
		for _, r := range returned {
			s.restock.Dispatch(ctx, ports.RestockCommand{
				OperationKey: fmt.Sprintf("sale-%s-return-%s-%d", sale.Number, r.Item.Barcode, r.Item.ID),
				Reason:       ports.RestockItemReturned,
				Adjustment:   domain.StockAdjustment{Barcode: r.Item.Barcode, Quantity: r.Quantity},
			})
		}
	}
	return &types.ReturnResult{
		SaleNumber: sale.Number,
		Item:       returned[len(returned)-1].Item,
		Returned:   returned,
	}, nil
}

// ReturnItems processes returns in order and stops at the first failure.
// Returns processed before the failure stay committed.
func (s *Service) ReturnItems(ctx context.Context, inputs []types.ReturnItemInput) ([]*types.ReturnResult, error) {
	if len(inputs) == 0 {
		return nil, invalidInput("at least one return is required")
	}
	results := make([]*types.ReturnResult, 0, len(inputs))
	for i, input := range inputs {
		result, err := s.ReturnItem(ctx, input)
		if err != nil {
			return results, fmt.Errorf("return %d: %w", i, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// DeleteSale soft-deletes a sale and all its line items. Stock is not touched.
func (s *Service) DeleteSale(ctx context.Context, number string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return mapError(domain.ErrEmptySaleNumber)
	}
	_, err := s.repo.Modify(ctx, number, func(sale *domain.Sale) error {
		if sale.Deleted {
			return errAlreadyDeleted
		}
		sale.MarkDeleted()
		return nil
	})
	if err != nil && !errors.Is(err, errAlreadyDeleted) {
		return mapError(err)
	}
	return nil
}

var errAlreadyDeleted = errors.New("sale already deleted")

// GetSale loads a sale by its number, including soft-deleted ones.
func (s *Service) GetSale(ctx context.Context, number string) (*types.SaleProjection, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, mapError(domain.ErrEmptySaleNumber)
	}
	sale, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, mapError(err)
	}
	return sale, nil
}

// ListSales returns a filtered, sorted page of sales.
func (s *Service) ListSales(ctx context.Context, input types.ListSalesInput) (types.SalePage, error) {
	query, err := NormalizeQuery(input)
	if err != nil {
		return types.SalePage{}, err
	}
	page, err := s.repo.List(ctx, query)
	if err != nil {
		return types.SalePage{}, mapError(err)
	}
	return page, nil
}

// NormalizeQuery applies listing defaults and validates paging and sort clauses.
func NormalizeQuery(input types.ListSalesInput) (types.SaleQuery, error) {
	query := types.SaleQuery{
		Filter: input.Filter,
		Page:   types.DefaultPage,
		Size:   types.DefaultPageSize,
	}
	if input.Page != nil {
		if *input.Page < 0 {
			return types.SaleQuery{}, invalidInput("page must not be negative")
		}
		query.Page = *input.Page
	}
	if input.Size != nil {
		if *input.Size <= 0 {
			return types.SaleQuery{}, invalidInput("size must be positive")
		}
		query.Size = min(*input.Size, types.MaxPageSize)
	}
	clauses := input.Sort
	if len(clauses) == 0 {
		clauses = []string{types.DefaultSort}
	}
	for _, raw := range clauses {
		order, err := parseSort(raw)
		if err != nil {
			return types.SaleQuery{}, err
		}
		query.Sort = append(query.Sort, order)
	}
	return query, nil
}

func parseSort(raw string) (types.SortOrder, error) {
	field, dir, _ := strings.Cut(strings.TrimSpace(raw), ",")
	field = strings.TrimSpace(field)
	if _, ok := types.SortableFields[field]; !ok {
		return types.SortOrder{}, invalidInput("unsupported sort field %q", field)
	}
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "", "asc":
		return types.SortOrder{Field: field}, nil
	case "desc":
		return types.SortOrder{Field: field, Descending: true}, nil
	default:
		return types.SortOrder{}, invalidInput("unsupported sort direction %q", dir)
	}
}

var _ ports.Service = (*Service)(nil)
