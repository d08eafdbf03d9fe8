package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/application"
	salestypes "github.com/Apurer/go-gin-sales-server/internal/domains/sales/application/types"
	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/domain"
	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/ports"
)

const tracerName = "github.com/Apurer/go-gin-sales-server/internal/domains/sales/adapters/observability/service"

// Service decorates a sales application port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) CreateSale(ctx context.Context, input salestypes.CreateSaleInput) (*salestypes.SaleProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.CreateSale",
		attribute.Int("sale.items.requested", len(input.Items)),
		attribute.String("sale.payment_code", input.PaymentCode),
		attribute.Bool("sale.idempotent", input.IdempotencyKey != ""),
	)
	defer span.End()

	s.logInfo(ctx, "creating sale", slog.Int("items", len(input.Items)), slog.String("createdBy", input.CreatedBy))
	result, err := s.inner.CreateSale(ctx, input)
	if err != nil {
		kind := ErrorKind(err)
		s.metrics.recordAborted(ctx, kind)
		return nil, s.handleError(ctx, span, err, "failed to create sale", slog.String("kind", kind))
	}
	sale := result.Entity
	span.SetAttributes(attribute.String("sale.number", sale.Number), attribute.String("sale.total", sale.TotalPrice.String()))
	s.metrics.recordCommitted(ctx, sale.Payment)
	s.logInfo(ctx, "sale committed",
		slog.String("sale.number", sale.Number),
		slog.String("total", sale.TotalPrice.StringFixed(domain.MoneyScale)),
		slog.String("change", sale.Change.StringFixed(domain.MoneyScale)),
		slog.String("payment", string(sale.Payment)),
	)
	return result, nil
}

func (s *Service) ReturnItem(ctx context.Context, input salestypes.ReturnItemInput) (*salestypes.ReturnResult, error) {
	ctx, span := s.startSpan(ctx, "Service.ReturnItem",
		attribute.String("sale.number", input.SaleNumber),
		attribute.String("item.barcode", input.Barcode),
		attribute.Int("item.quantity", input.Quantity),
	)
	defer span.End()

	s.logInfo(ctx, "returning item", slog.String("sale.number", input.SaleNumber), slog.String("barcode", input.Barcode))
	result, err := s.inner.ReturnItem(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to return item",
			slog.String("sale.number", input.SaleNumber), slog.String("kind", ErrorKind(err)))
	}
	s.metrics.recordReturned(ctx, len(result.Returned))
	s.logInfo(ctx, "item returned", slog.String("sale.number", result.SaleNumber), slog.Int("lines", len(result.Returned)))
	return result, nil
}

func (s *Service) ReturnItems(ctx context.Context, inputs []salestypes.ReturnItemInput) ([]*salestypes.ReturnResult, error) {
	ctx, span := s.startSpan(ctx, "Service.ReturnItems", attribute.Int("returns.requested", len(inputs)))
	defer span.End()

	s.logInfo(ctx, "processing return batch", slog.Int("count", len(inputs)))
	results, err := s.inner.ReturnItems(ctx, inputs)
	for _, result := range results {
		s.metrics.recordReturned(ctx, len(result.Returned))
	}
	if err != nil {
		return results, s.handleError(ctx, span, err, "return batch stopped", slog.Int("processed", len(results)))
	}
	s.logInfo(ctx, "return batch processed", slog.Int("count", len(results)))
	return results, nil
}

func (s *Service) DeleteSale(ctx context.Context, number string) error {
	ctx, span := s.startSpan(ctx, "Service.DeleteSale", attribute.String("sale.number", number))
	defer span.End()

	if err := s.inner.DeleteSale(ctx, number); err != nil {
		return s.handleError(ctx, span, err, "failed to delete sale", slog.String("sale.number", number))
	}
	s.metrics.recordDeleted(ctx)
	s.logInfo(ctx, "sale deleted", slog.String("sale.number", number))
	return nil
}

func (s *Service) GetSale(ctx context.Context, number string) (*salestypes.SaleProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.GetSale", attribute.String("sale.number", number))
	defer span.End()

	result, err := s.inner.GetSale(ctx, number)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load sale", slog.String("sale.number", number))
	}
	return result, nil
}

func (s *Service) ListSales(ctx context.Context, input salestypes.ListSalesInput) (salestypes.SalePage, error) {
	ctx, span := s.startSpan(ctx, "Service.ListSales", attribute.StringSlice("sale.sort", input.Sort))
	defer span.End()

	page, err := s.inner.ListSales(ctx, input)
	if err != nil {
		return salestypes.SalePage{}, s.handleError(ctx, span, err, "failed to list sales")
	}
	span.SetAttributes(attribute.Int("sale.result.count", len(page.Items)), attribute.Int64("sale.result.total", page.TotalItems))
	s.logInfo(ctx, "listed sales", slog.Int("count", len(page.Items)), slog.Int64("total", page.TotalItems))
	return page, nil
}

// NewPricingAnomalyHook logs and counts campaign prices that had to be clamped
// or could not be applied. Pass it to application.WithPricingAnomalyHook.
func NewPricingAnomalyHook(logger *slog.Logger, m metric.Meter) func(context.Context, application.PricingAnomaly) {
	if logger == nil {
		logger = defaultLogger()
	}
	var counter metric.Int64Counter
	if m != nil {
		counter, _ = m.Int64Counter("sales.pricing.anomalies", metric.WithDescription("Campaign prices clamped at zero or left undiscounted"))
	}
	return func(ctx context.Context, a application.PricingAnomaly) {
		kind := "clamped"
		if a.Inconsistent {
			kind = "inconsistent"
		}
		logger.LogAttrs(ctx, slog.LevelWarn, "campaign pricing data inconsistency",
			slog.String("sale.number", a.SaleNumber),
			slog.String("barcode", a.Barcode),
			slog.Int64("campaign.id", a.CampaignID),
			slog.String("kind", kind),
		)
		addCounter(ctx, counter, 1, attribute.String("anomaly.kind", kind))
	}
}

// ErrorKind names the failure class of a sales error for logs and metrics.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrInventoryUnavailable):
		return "inventory_unavailable"
	case errors.Is(err, domain.ErrProductUnavailable):
		return "product_unavailable"
	case errors.Is(err, domain.ErrInvalidPaymentType):
		return "invalid_payment_type"
	case errors.Is(err, domain.ErrNoMoneyEntered):
		return "no_money_entered"
	case errors.Is(err, domain.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, ports.ErrNotFound):
		return "sale_not_found"
	case errors.Is(err, domain.ErrReturnPeriodExpired):
		return "return_period_expired"
	case errors.Is(err, domain.ErrLineItemNotFound):
		return "line_item_not_found"
	case errors.Is(err, domain.ErrQuantityExceedsOriginal):
		return "quantity_exceeds_original"
	case errors.Is(err, ports.ErrIdempotencyConflict):
		return "idempotency_conflict"
	case errors.Is(err, application.ErrInvalidInput):
		return "invalid_input"
	default:
		return "internal"
	}
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	salesCommitted metric.Int64Counter
	salesAborted   metric.Int64Counter
	itemsReturned  metric.Int64Counter
	salesDeleted   metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	committed, _ := m.Int64Counter("sales.service.committed", metric.WithDescription("Number of sales committed"))
	aborted, _ := m.Int64Counter("sales.service.aborted", metric.WithDescription("Number of sale requests aborted"))
	returned, _ := m.Int64Counter("sales.service.items_returned", metric.WithDescription("Number of line items returned"))
	deleted, _ := m.Int64Counter("sales.service.deleted", metric.WithDescription("Number of sales deleted"))
	return serviceMetrics{
		salesCommitted: committed,
		salesAborted:   aborted,
		itemsReturned:  returned,
		salesDeleted:   deleted,
	}
}

func (m serviceMetrics) recordCommitted(ctx context.Context, payment domain.PaymentMethod) {
	addCounter(ctx, m.salesCommitted, 1, attribute.String("sale.payment", string(payment)))
}

func (m serviceMetrics) recordAborted(ctx context.Context, kind string) {
	addCounter(ctx, m.salesAborted, 1, attribute.String("sale.abort_kind", kind))
}

func (m serviceMetrics) recordReturned(ctx context.Context, lines int) {
	addCounter(ctx, m.itemsReturned, int64(lines))
}

func (m serviceMetrics) recordDeleted(ctx context.Context) {
	addCounter(ctx, m.salesDeleted, 1)
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
