package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	salesmemory "github.com/Apurer/go-gin-sales-server/internal/domains/sales/adapters/memory"
	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/application/types"
	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/domain"
	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/ports"
)

type fakeInventory struct {
	mu        sync.Mutex
	snapshots map[string]domain.InventorySnapshot
	err       error
	truncate  int
	checks    [][]domain.StockRequest
	keys      []string
	// duringCheck runs before the reservation is answered, outside the lock.
	duringCheck func()
}

func (f *fakeInventory) CheckAndReserve(_ context.Context, key string, items []domain.StockRequest) ([]domain.InventorySnapshot, error) {
	if hook := f.duringCheck; hook != nil {
		f.duringCheck = nil
		hook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checks = append(f.checks, items)
	f.keys = append(f.keys, key)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.InventorySnapshot, 0, len(items))
	for _, item := range items {
		if snap, ok := f.snapshots[item.Barcode]; ok {
			out = append(out, snap)
		}
	}
	if f.truncate > 0 && len(out) > f.truncate {
		out = out[:f.truncate]
	}
	return out, nil
}

func (f *fakeInventory) Adjust(context.Context, string, []domain.StockAdjustment) error {
	return nil
}

type recordingDispatcher struct {
	mu       sync.Mutex
	commands []ports.RestockCommand
}

func (d *recordingDispatcher) Dispatch(_ context.Context, cmd ports.RestockCommand) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.commands = append(d.commands, cmd)
}

type sequenceNumbers struct {
	n int
}

func (s *sequenceNumbers) NextSaleNumber(context.Context) (string, error) {
	s.n++
	return "sale" + string(rune('0'+s.n)), nil
}

type fixture struct {
	svc        *Service
	repo       *salesmemory.Repository
	inventory  *fakeInventory
	dispatcher *recordingDispatcher
	campaigns  *salesmemory.CampaignStore
	anomalies  []PricingAnomaly
}

var saleTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		repo: salesmemory.NewRepository(),
		inventory: &fakeInventory{snapshots: map[string]domain.InventorySnapshot{
			"A": {Barcode: "A", SKU: "SKU-A", Name: "Apple juice", Quantity: 10, InStock: true, UnitPrice: decimal.NewFromInt(30)},
			"B": {Barcode: "B", SKU: "SKU-B", Name: "Bread", Quantity: 4, InStock: true, UnitPrice: decimal.RequireFromString("2.50")},
			"X": {Barcode: "X", SKU: "SKU-X", Name: "Sold out", Quantity: 0, InStock: false, UnitPrice: decimal.NewFromInt(5)},
		}},
		dispatcher: &recordingDispatcher{},
		campaigns:  salesmemory.NewCampaignStore(),
	}
	base := []Option{
		WithCampaigns(f.campaigns),
		WithClock(func() time.Time { return saleTime }),
		WithPricingAnomalyHook(func(_ context.Context, a PricingAnomaly) { f.anomalies = append(f.anomalies, a) }),
	}
	f.svc = NewService(f.repo, f.inventory, &sequenceNumbers{}, f.dispatcher, append(base, opts...)...)
	return f
}

func money(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func cashSale(tendered string, items ...types.SaleItemInput) types.CreateSaleInput {
	return types.CreateSaleInput{CreatedBy: "cashier-1", PaymentCode: "n", Tendered: money(tendered), Items: items}
}

func TestCreateSale_CommitsCashSale(t *testing.T) {
	f := newFixture(t)

	proj, err := f.svc.CreateSale(context.Background(), cashSale("100", types.SaleItemInput{Barcode: "A", Quantity: 2}))
	require.NoError(t, err)

	sale := proj.Entity
	assert.True(t, sale.TotalPrice.Equal(decimal.NewFromInt(60)))
	assert.True(t, sale.Change.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, domain.PaymentCash, sale.Payment)
	require.Len(t, sale.Items, 1)
	assert.Equal(t, 2, sale.Items[0].Quantity)
	assert.Equal(t, 10, sale.Items[0].StockLevel)
	assert.Empty(t, f.dispatcher.commands)

	stored, err := f.repo.GetByNumber(context.Background(), sale.Number)
	require.NoError(t, err)
	assert.Equal(t, sale.Number, stored.Entity.Number)
	assert.Equal(t, []string{sale.Number}, f.inventory.keys)
}

func TestCreateSale_InsufficientBalanceCompensatesEachItem(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateSale(context.Background(), cashSale("50", types.SaleItemInput{Barcode: "A", Quantity: 2}))
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	require.Len(t, f.dispatcher.commands, 1)
	cmd := f.dispatcher.commands[0]
	assert.Equal(t, ports.RestockSaleAborted, cmd.Reason)
	assert.Equal(t, domain.StockAdjustment{Barcode: "A", Quantity: 2}, cmd.Adjustment)

	page, err := f.repo.List(context.Background(), types.SaleQuery{Page: 0, Size: 10})
	require.NoError(t, err)
	assert.Zero(t, page.TotalItems)
}

func TestCreateSale_InsufficientBalanceMultipleItems(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateSale(context.Background(), cashSale("1",
		types.SaleItemInput{Barcode: "A", Quantity: 1},
		types.SaleItemInput{Barcode: "B", Quantity: 3},
	))
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)
	require.Len(t, f.dispatcher.commands, 2)
	assert.Equal(t, "A", f.dispatcher.commands[0].Adjustment.Barcode)
	assert.Equal(t, 3, f.dispatcher.commands[1].Adjustment.Quantity)
}

func TestCreateSale_OutOfStockNeverPersisted(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateSale(context.Background(), cashSale("1000",
		types.SaleItemInput{Barcode: "A", Quantity: 1},
		types.SaleItemInput{Barcode: "X", Quantity: 1},
	))
	require.ErrorIs(t, err, domain.ErrProductUnavailable)
	var unavailable *domain.ProductUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, "X", unavailable.Barcode)
	assert.Empty(t, f.dispatcher.commands)

	page, err := f.repo.List(context.Background(), types.SaleQuery{Page: 0, Size: 10})
	require.NoError(t, err)
	assert.Zero(t, page.TotalItems)
}

func TestCreateSale_InventoryUnavailable(t *testing.T) {
	f := newFixture(t)
	f.inventory.err = errors.New("connection refused")

	_, err := f.svc.CreateSale(context.Background(), cashSale("100", types.SaleItemInput{Barcode: "A", Quantity: 1}))
	require.ErrorIs(t, err, domain.ErrInventoryUnavailable)
	assert.Empty(t, f.dispatcher.commands)
}

func TestCreateSale_EmptyInventoryResult(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateSale(context.Background(), cashSale("100", types.SaleItemInput{Barcode: "unknown", Quantity: 1}))
	require.ErrorIs(t, err, domain.ErrInventoryUnavailable)
}

func TestCreateSale_PartialInventoryResult(t *testing.T) {
	f := newFixture(t)
	f.inventory.truncate = 1

	_, err := f.svc.CreateSale(context.Background(), cashSale("100",
		types.SaleItemInput{Barcode: "A", Quantity: 1},
		types.SaleItemInput{Barcode: "B", Quantity: 1},
	))
	require.ErrorIs(t, err, domain.ErrInventoryUnavailable)
	require.ErrorIs(t, err, ports.ErrPartialInventory)
}

func TestCreateSale_InvalidPaymentType(t *testing.T) {
	f := newFixture(t)
	input := cashSale("100", types.SaleItemInput{Barcode: "A", Quantity: 1})
	input.PaymentCode = "x"

	_, err := f.svc.CreateSale(context.Background(), input)
	require.ErrorIs(t, err, domain.ErrInvalidPaymentType)
	assert.Empty(t, f.dispatcher.commands)
}

func TestCreateSale_CashWithoutMoney(t *testing.T) {
	f := newFixture(t)
	input := cashSale("0", types.SaleItemInput{Barcode: "A", Quantity: 1})
	input.Tendered = nil

	_, err := f.svc.CreateSale(context.Background(), input)
	require.ErrorIs(t, err, domain.ErrNoMoneyEntered)
	assert.Empty(t, f.dispatcher.commands)
}

func TestCreateSale_CardSettlesTotal(t *testing.T) {
	f := newFixture(t)
	input := types.CreateSaleInput{PaymentCode: "K", Items: []types.SaleItemInput{{Barcode: "B", Quantity: 3}}}

	proj, err := f.svc.CreateSale(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCard, proj.Entity.Payment)
	assert.True(t, proj.Entity.Tendered.Equal(decimal.RequireFromString("7.50")))
	assert.True(t, proj.Entity.Change.IsZero())
}

func TestCreateSale_AppliesCampaign(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.campaigns.Put(domain.Campaign{ID: 7, Name: "quarter off", Kind: domain.DiscountPercentage, Percent: 25, Active: true}))
	campaignID := int64(7)

	proj, err := f.svc.CreateSale(context.Background(), cashSale("100", types.SaleItemInput{Barcode: "A", Quantity: 2, CampaignID: &campaignID}))
	require.NoError(t, err)
	assert.True(t, proj.Entity.Items[0].UnitPrice.Equal(decimal.RequireFromString("22.50")))
	assert.True(t, proj.Entity.TotalPrice.Equal(decimal.NewFromInt(45)))
	require.NotNil(t, proj.Entity.Items[0].CampaignID)
	assert.Equal(t, int64(7), *proj.Entity.Items[0].CampaignID)
}

func TestCreateSale_MissingCampaignMeansNoDiscount(t *testing.T) {
	f := newFixture(t)
	campaignID := int64(99)

	proj, err := f.svc.CreateSale(context.Background(), cashSale("100", types.SaleItemInput{Barcode: "A", Quantity: 1, CampaignID: &campaignID}))
	require.NoError(t, err)
	assert.True(t, proj.Entity.TotalPrice.Equal(decimal.NewFromInt(30)))
}

func TestCreateSale_ClampedCampaignReportsAnomaly(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.campaigns.Put(domain.Campaign{ID: 3, Name: "huge", Kind: domain.DiscountMoney, MoneyDiscount: decimal.NewFromInt(100), Active: true}))
	campaignID := int64(3)

	proj, err := f.svc.CreateSale(context.Background(), cashSale("0", types.SaleItemInput{Barcode: "A", Quantity: 1, CampaignID: &campaignID}))
	require.NoError(t, err)
	assert.True(t, proj.Entity.TotalPrice.IsZero())
	require.Len(t, f.anomalies, 1)
	assert.True(t, f.anomalies[0].Clamped)
	assert.Equal(t, "A", f.anomalies[0].Barcode)
}

func TestCreateSale_InvalidInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateSale(context.Background(), types.CreateSaleInput{PaymentCode: "n"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.CreateSale(context.Background(), cashSale("1", types.SaleItemInput{Barcode: "A", Quantity: 0}))
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, f.inventory.checks)
}

func TestCreateSale_IdempotentReplay(t *testing.T) {
	store := salesmemory.NewIdempotencyStore()
	f := newFixture(t, WithIdempotencyStore(store))
	input := cashSale("100", types.SaleItemInput{Barcode: "A", Quantity: 2})
	input.IdempotencyKey = "register-7-0001"

	first, err := f.svc.CreateSale(context.Background(), input)
	require.NoError(t, err)
	second, err := f.svc.CreateSale(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, first.Entity.Number, second.Entity.Number)
	assert.Len(t, f.inventory.checks, 1)

	input.Items[0].Quantity = 3
	_, err = f.svc.CreateSale(context.Background(), input)
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
}

func TestCreateSale_SameKeyWhileReservingIsSoldOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, WithIdempotencyStore(salesmemory.NewIdempotencyStore()))
	input := cashSale("100", types.SaleItemInput{Barcode: "A", Quantity: 2})
	input.IdempotencyKey = "register-7-0002"

	var retryErr error
	f.inventory.duringCheck = func() {
		_, retryErr = f.svc.CreateSale(ctx, input)
	}

	first, err := f.svc.CreateSale(ctx, input)
	require.NoError(t, err)
	require.ErrorIs(t, retryErr, ports.ErrIdempotencyInProgress)
	assert.Len(t, f.inventory.checks, 1)

	page, err := f.repo.List(ctx, types.SaleQuery{Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalItems)

	replayed, err := f.svc.CreateSale(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, first.Entity.Number, replayed.Entity.Number)
}

func TestCreateSale_FailedSaleReleasesKey(t *testing.T) {
	ctx := context.Background()
	store := salesmemory.NewIdempotencyStore()
	f := newFixture(t, WithIdempotencyStore(store))
	input := cashSale("50", types.SaleItemInput{Barcode: "A", Quantity: 2})
	input.IdempotencyKey = "register-7-0003"

	_, err := f.svc.CreateSale(ctx, input)
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)
	held, err := store.Get(ctx, input.IdempotencyKey)
	require.NoError(t, err)
	assert.Nil(t, held)

	_, err = f.svc.CreateSale(ctx, input)
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.Len(t, f.inventory.checks, 2)
}

func commitSale(t *testing.T, f *fixture, items ...types.SaleItemInput) *domain.Sale {
	t.Helper()
	proj, err := f.svc.CreateSale(context.Background(), cashSale("1000", items...))
	require.NoError(t, err)
	return proj.Entity
}

func at(t time.Time) *time.Time { return &t }

func TestReturnItem_WithinWindow(t *testing.T) {
	f := newFixture(t)
	sale := commitSale(t, f, types.SaleItemInput{Barcode: "A", Quantity: 3})

	result, err := f.svc.ReturnItem(context.Background(), types.ReturnItemInput{
		SaleNumber: sale.Number, Barcode: "A", Quantity: 2, ReturnedAt: at(saleTime.AddDate(0, 0, 15)),
	})
	require.NoError(t, err)
	assert.True(t, result.Item.Deleted)

	require.Len(t, f.dispatcher.commands, 1)
	assert.Equal(t, ports.RestockItemReturned, f.dispatcher.commands[0].Reason)
	assert.Equal(t, domain.StockAdjustment{Barcode: "A", Quantity: 2}, f.dispatcher.commands[0].Adjustment)

	stored, err := f.repo.GetByNumber(context.Background(), sale.Number)
	require.NoError(t, err)
	assert.True(t, stored.Entity.Items[0].Deleted)
}

func TestReturnItem_Expired(t *testing.T) {
	f := newFixture(t)
	sale := commitSale(t, f, types.SaleItemInput{Barcode: "A", Quantity: 3})

	_, err := f.svc.ReturnItem(context.Background(), types.ReturnItemInput{
		SaleNumber: sale.Number, Barcode: "A", Quantity: 1,
		ReturnedAt: at(time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)),
	})
	require.ErrorIs(t, err, domain.ErrReturnPeriodExpired)
	assert.Empty(t, f.dispatcher.commands)

	stored, err := f.repo.GetByNumber(context.Background(), sale.Number)
	require.NoError(t, err)
	assert.False(t, stored.Entity.Items[0].Deleted)
}

func TestReturnItem_QuantityExceeds(t *testing.T) {
	f := newFixture(t)
	sale := commitSale(t, f, types.SaleItemInput{Barcode: "A", Quantity: 3})

	_, err := f.svc.ReturnItem(context.Background(), types.ReturnItemInput{SaleNumber: sale.Number, Barcode: "A", Quantity: 5})
	require.ErrorIs(t, err, domain.ErrQuantityExceedsOriginal)

	stored, err := f.repo.GetByNumber(context.Background(), sale.Number)
	require.NoError(t, err)
	assert.False(t, stored.Entity.Items[0].Deleted)
	assert.Equal(t, 3, stored.Entity.Items[0].Quantity)
}

func TestReturnItem_UnknownSaleAndBarcode(t *testing.T) {
	f := newFixture(t)
	sale := commitSale(t, f, types.SaleItemInput{Barcode: "A", Quantity: 1})

	_, err := f.svc.ReturnItem(context.Background(), types.ReturnItemInput{SaleNumber: "missing", Barcode: "A", Quantity: 1})
	require.ErrorIs(t, err, ports.ErrNotFound)

	_, err = f.svc.ReturnItem(context.Background(), types.ReturnItemInput{SaleNumber: sale.Number, Barcode: "B", Quantity: 1})
	require.ErrorIs(t, err, domain.ErrLineItemNotFound)
}

func TestReturnItem_DuplicateBarcodesAllReturned(t *testing.T) {
	f := newFixture(t)
	sale := commitSale(t, f,
		types.SaleItemInput{Barcode: "A", Quantity: 1},
		types.SaleItemInput{Barcode: "A", Quantity: 2},
	)

	result, err := f.svc.ReturnItem(context.Background(), types.ReturnItemInput{SaleNumber: sale.Number, Barcode: "A", Quantity: 1})
	require.NoError(t, err)
	assert.Len(t, result.Returned, 2)
	assert.Equal(t, 2, result.Item.Quantity)
	assert.Len(t, f.dispatcher.commands, 2)
}

func TestReturnItem_ConcurrentReturnsReplenishOnce(t *testing.T) {
	f := newFixture(t)
	sale := commitSale(t, f, types.SaleItemInput{Barcode: "A", Quantity: 2})

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		notFound  int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.ReturnItem(context.Background(), types.ReturnItemInput{SaleNumber: sale.Number, Barcode: "A", Quantity: 2})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrLineItemNotFound):
				notFound++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 7, notFound)
	assert.Len(t, f.dispatcher.commands, 1)
}

func TestReturnItem_EmptySaleNumberIsInvalidInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ReturnItem(context.Background(), types.ReturnItemInput{SaleNumber: " ", Barcode: "A", Quantity: 1})

	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrEmptySaleNumber)
}

func TestCreateSale_EmptyGeneratedNumberIsInvalidInput(t *testing.T) {
	f := newFixture(t)
	f.svc.numbers = blankNumbers{}

	_, err := f.svc.CreateSale(context.Background(), cashSale("100", types.SaleItemInput{Barcode: "A", Quantity: 1}))

	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrEmptySaleNumber)
}

type blankNumbers struct{}

func (blankNumbers) NextSaleNumber(context.Context) (string, error) { return "", nil }

func TestReturnItems_StopsAtFirstFailure(t *testing.T) {
	f := newFixture(t)
	sale := commitSale(t, f,
		types.SaleItemInput{Barcode: "A", Quantity: 1},
		types.SaleItemInput{Barcode: "B", Quantity: 1},
	)

	results, err := f.svc.ReturnItems(context.Background(), []types.ReturnItemInput{
		{SaleNumber: sale.Number, Barcode: "A", Quantity: 1},
		{SaleNumber: sale.Number, Barcode: "Z", Quantity: 1},
		{SaleNumber: sale.Number, Barcode: "B", Quantity: 1},
	})
	require.ErrorIs(t, err, domain.ErrLineItemNotFound)
	assert.Len(t, results, 1)

	stored, err := f.repo.GetByNumber(context.Background(), sale.Number)
	require.NoError(t, err)
	assert.True(t, stored.Entity.Items[0].Deleted)
	assert.False(t, stored.Entity.Items[1].Deleted)
}

func TestDeleteSale_SoftDeletes(t *testing.T) {
	f := newFixture(t)
	sale := commitSale(t, f, types.SaleItemInput{Barcode: "A", Quantity: 1})

	require.NoError(t, f.svc.DeleteSale(context.Background(), sale.Number))
	stored, err := f.svc.GetSale(context.Background(), sale.Number)
	require.NoError(t, err)
	assert.True(t, stored.Entity.Deleted)
	assert.True(t, stored.Entity.Items[0].Deleted)
	assert.Empty(t, f.dispatcher.commands)

	_, err = f.svc.ReturnItem(context.Background(), types.ReturnItemInput{SaleNumber: sale.Number, Barcode: "A", Quantity: 1})
	require.ErrorIs(t, err, ports.ErrNotFound)

	require.ErrorIs(t, f.svc.DeleteSale(context.Background(), "missing"), ports.ErrNotFound)
}

func TestListSales_DefaultsAndSort(t *testing.T) {
	f := newFixture(t)
	for i := 1; i <= 4; i++ {
		commitSale(t, f, types.SaleItemInput{Barcode: "A", Quantity: i})
	}

	page, err := f.svc.ListSales(context.Background(), types.ListSalesInput{})
	require.NoError(t, err)
	assert.Equal(t, types.DefaultPageSize, page.Size)
	assert.Equal(t, int64(4), page.TotalItems)
	assert.Equal(t, 2, page.TotalPages())
	require.Len(t, page.Items, 3)
	assert.Equal(t, int64(1), page.Items[0].Entity.ID)

	size := 2
	page, err = f.svc.ListSales(context.Background(), types.ListSalesInput{Size: &size, Sort: []string{"totalPrice,desc"}})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.True(t, page.Items[0].Entity.TotalPrice.Equal(decimal.NewFromInt(120)))
}

func TestListSales_RejectsUnknownSort(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ListSales(context.Background(), types.ListSalesInput{Sort: []string{"password,asc"}})
	require.ErrorIs(t, err, ErrInvalidInput)

	negative := -1
	_, err = f.svc.ListSales(context.Background(), types.ListSalesInput{Page: &negative})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestListSales_FilterByBarcode(t *testing.T) {
	f := newFixture(t)
	commitSale(t, f, types.SaleItemInput{Barcode: "A", Quantity: 1})
	commitSale(t, f, types.SaleItemInput{Barcode: "B", Quantity: 1})

	barcode := "B"
	page, err := f.svc.ListSales(context.Background(), types.ListSalesInput{Filter: types.SaleFilter{Barcode: &barcode}})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "B", page.Items[0].Entity.Items[0].Barcode)
}
