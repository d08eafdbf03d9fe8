package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	inventoryclient "github.com/Apurer/go-gin-sales-server/internal/clients/http/inventory"
	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/domain"
	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/ports"
)

var _ ports.Inventory = (*Coordinator)(nil)

// API is the subset of the inventory HTTP client used by the coordinator.
type API interface {
	Check(ctx context.Context, items []inventoryclient.CheckItem, opts ...inventoryclient.RequestOption) ([]inventoryclient.ProductSnapshot, error)
	Adjust(ctx context.Context, items []inventoryclient.AdjustItem, opts ...inventoryclient.RequestOption) error
}

// BreakerSettings tunes the circuit breaker guarding stock checks.
type BreakerSettings struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
	HalfOpenRequests    uint32
}

// DefaultBreakerSettings opens after five consecutive failures for thirty seconds.
var DefaultBreakerSettings = BreakerSettings{
	ConsecutiveFailures: 5,
	OpenTimeout:         30 * time.Second,
	HalfOpenRequests:    1,
}

// Coordinator implements the inventory port over the HTTP client.
type Coordinator struct {
	api     API
	breaker *gobreaker.CircuitBreaker[[]inventoryclient.ProductSnapshot]
	logger  *slog.Logger
}

// NewCoordinator wraps the API with a circuit breaker on checks.
func NewCoordinator(api API, settings BreakerSettings, logger *slog.Logger) *Coordinator {
	if settings.ConsecutiveFailures == 0 {
		settings.ConsecutiveFailures = DefaultBreakerSettings.ConsecutiveFailures
	}
	if settings.OpenTimeout <= 0 {
		settings.OpenTimeout = DefaultBreakerSettings.OpenTimeout
	}
	if settings.HalfOpenRequests == 0 {
		settings.HalfOpenRequests = DefaultBreakerSettings.HalfOpenRequests
	}
	c := &Coordinator{api: api, logger: logger}
	c.breaker = gobreaker.NewCircuitBreaker[[]inventoryclient.ProductSnapshot](gobreaker.Settings{
		Name:        "inventory-check",
		MaxRequests: settings.HalfOpenRequests,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			var apiErr *inventoryclient.APIError
			if errors.As(err, &apiErr) {
				return !apiErr.Retryable()
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if c.logger != nil {
				c.logger.Warn("inventory circuit breaker state changed",
					slog.String("breaker", name), slog.String("from", from.String()), slog.String("to", to.String()))
			}
		},
	})
	return c
}

// CheckAndReserve returns snapshots aligned with the request order.
func (c *Coordinator) CheckAndReserve(ctx context.Context, operationKey string, items []domain.StockRequest) ([]domain.InventorySnapshot, error) {
	if c == nil || c.api == nil {
		return nil, fmt.Errorf("%w: inventory coordinator not configured", domain.ErrInventoryUnavailable)
	}
	products, err := c.breaker.Execute(func() ([]inventoryclient.ProductSnapshot, error) {
		return c.api.Check(ctx, ToCheckItems(items), inventoryclient.WithIdempotencyKey(operationKey))
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInventoryUnavailable, err)
	}
	return alignSnapshots(items, products)
}

// Adjust sends the adjustment without the breaker so restocks are attempted even while checks are failing fast.
func (c *Coordinator) Adjust(ctx context.Context, operationKey string, items []domain.StockAdjustment) error {
	if c == nil || c.api == nil {
		return errors.New("inventory coordinator not configured")
	}
	return c.api.Adjust(ctx, ToAdjustItems(items), inventoryclient.WithIdempotencyKey(operationKey))
}

func alignSnapshots(items []domain.StockRequest, products []inventoryclient.ProductSnapshot) ([]domain.InventorySnapshot, error) {
	if inOrder(items, products) {
		out := make([]domain.InventorySnapshot, 0, len(products))
		for _, p := range products {
			out = append(out, ToSnapshot(p))
		}
		return out, nil
	}
	byBarcode := make(map[string][]inventoryclient.ProductSnapshot, len(products))
	for _, p := range products {
		byBarcode[p.Barcode] = append(byBarcode[p.Barcode], p)
	}
	out := make([]domain.InventorySnapshot, 0, len(items))
	for _, item := range items {
		queue := byBarcode[item.Barcode]
		if len(queue) == 0 {
			return nil, fmt.Errorf("%w: no answer for barcode %s", ports.ErrPartialInventory, item.Barcode)
		}
		out = append(out, ToSnapshot(queue[0]))
		byBarcode[item.Barcode] = queue[1:]
	}
	return out, nil
}

// inOrder reports a positional answer; snapshots without a barcode are trusted by position.
func inOrder(items []domain.StockRequest, products []inventoryclient.ProductSnapshot) bool {
	if len(items) != len(products) {
		return false
	}
	for i := range items {
		if products[i].Barcode != "" && products[i].Barcode != items[i].Barcode {
			return false
		}
	}
	return true
}
