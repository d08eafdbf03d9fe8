package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/domain"
	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/ports"
	"github.com/Apurer/go-gin-sales-server/internal/platform/temporal/sequences"
	inventoryworkflows "github.com/Apurer/go-gin-sales-server/internal/platform/temporal/workflows/inventory"
)

var (
	_ ports.RestockDispatcher = (*TemporalRestockDispatcher)(nil)
	_ ports.RestockDispatcher = (*InlineRestockDispatcher)(nil)
)

type workflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// DefaultStartTimeout bounds the start RPC of a restock workflow.
const DefaultStartTimeout = 3 * time.Second

// TemporalRestockDispatcher starts one restock workflow per command on a background
// goroutine. Neither the start RPC nor the workflow is waited for by the caller.
type TemporalRestockDispatcher struct {
	client       workflowStarter
	taskQueue    string
	maxAttempts  int32
	startTimeout time.Duration
	fallback     ports.RestockDispatcher
	logger       *slog.Logger
	wg           sync.WaitGroup
}

// TemporalOption customises the Temporal dispatcher.
type TemporalOption func(*TemporalRestockDispatcher)

// WithFallback routes commands the cluster refuses to another dispatcher.
func WithFallback(fallback ports.RestockDispatcher) TemporalOption {
	return func(d *TemporalRestockDispatcher) { d.fallback = fallback }
}

// WithMaxAttempts bounds activity retries inside the workflow.
func WithMaxAttempts(attempts int32) TemporalOption {
	return func(d *TemporalRestockDispatcher) {
		if attempts > 0 {
			d.maxAttempts = attempts
		}
	}
}

// WithStartTimeout bounds each workflow start; a start that times out goes to the fallback.
func WithStartTimeout(timeout time.Duration) TemporalOption {
	return func(d *TemporalRestockDispatcher) {
		if timeout > 0 {
			d.startTimeout = timeout
		}
	}
}

// WithTemporalLogger sets the logger used for dispatch failures.
func WithTemporalLogger(logger *slog.Logger) TemporalOption {
	return func(d *TemporalRestockDispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewTemporalRestockDispatcher wires a Temporal client into the dispatcher.
func NewTemporalRestockDispatcher(c client.Client, opts ...TemporalOption) *TemporalRestockDispatcher {
	return newTemporalRestockDispatcher(c, opts...)
}

func newTemporalRestockDispatcher(c workflowStarter, opts ...TemporalOption) *TemporalRestockDispatcher {
	d := &TemporalRestockDispatcher{
		client:       c,
		taskQueue:    inventoryworkflows.RestockTaskQueue,
		maxAttempts:  sequences.DefaultRestockAttempts,
		startTimeout: DefaultStartTimeout,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch returns immediately and starts the restock workflow in the background.
// The workflow ID derives from the operation key so a repeated command maps to the
// same execution.
func (d *TemporalRestockDispatcher) Dispatch(ctx context.Context, cmd ports.RestockCommand) {
	if d == nil || d.client == nil {
		slog.Default().Error("temporal restock dispatcher not configured", restockAttrs(cmd)...)
		return
	}
	detached := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.start(detached, cmd)
	}()
}

// Wait blocks until every pending workflow start has finished or fallen back.
func (d *TemporalRestockDispatcher) Wait() {
	d.wg.Wait()
}

func (d *TemporalRestockDispatcher) start(ctx context.Context, cmd ports.RestockCommand) {
	options := client.StartWorkflowOptions{
		ID:                    buildRestockWorkflowID(cmd.OperationKey),
		TaskQueue:             d.taskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
	}
	input := inventoryworkflows.RestockWorkflowInput{
		Command: sequences.RestockCommand{
			OperationKey: cmd.OperationKey,
			Reason:       string(cmd.Reason),
			Barcode:      cmd.Adjustment.Barcode,
			Quantity:     cmd.Adjustment.Quantity,
			MaxAttempts:  d.maxAttempts,
		},
		TraceID: workflowTraceID(ctx),
	}
	startCtx, cancel := context.WithTimeout(ctx, d.startTimeout)
	_, err := d.client.ExecuteWorkflow(startCtx, options, inventoryworkflows.RestockWorkflow, input)
	cancel()
	if err == nil {
		return
	}
	var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
	if errors.As(err, &alreadyStarted) {
		d.logger.Info("restock already dispatched", append(restockAttrs(cmd), "workflowId", options.ID)...)
		return
	}
	if d.fallback != nil {
		d.logger.Warn("restock workflow start failed; using fallback", append(restockAttrs(cmd), "error", err)...)
		d.fallback.Dispatch(ctx, cmd)
		return
	}
	d.logger.Error("restock workflow start failed; reconciliation required", append(restockAttrs(cmd), "error", err)...)
}

// InlineRestockDispatcher adjusts stock on a background goroutine. Failures are
// logged as reconciliation debt.
type InlineRestockDispatcher struct {
	inventory   ports.Inventory
	timeout     time.Duration
	maxAttempts int
	backoff     time.Duration
	logger      *slog.Logger
	wg          sync.WaitGroup
}

// InlineOption customises the inline dispatcher.
type InlineOption func(*InlineRestockDispatcher)

// WithTimeout bounds each adjust attempt.
func WithTimeout(timeout time.Duration) InlineOption {
	return func(d *InlineRestockDispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithAttempts sets how many adjust attempts a command gets.
func WithAttempts(attempts int, backoff time.Duration) InlineOption {
	return func(d *InlineRestockDispatcher) {
		if attempts > 0 {
			d.maxAttempts = attempts
		}
		if backoff >= 0 {
			d.backoff = backoff
		}
	}
}

// WithInlineLogger sets the logger used for failures.
func WithInlineLogger(logger *slog.Logger) InlineOption {
	return func(d *InlineRestockDispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewInlineRestockDispatcher adjusts inventory without durable orchestration, useful for tests or dev fallbacks.
func NewInlineRestockDispatcher(inventory ports.Inventory, opts ...InlineOption) *InlineRestockDispatcher {
	d := &InlineRestockDispatcher{
		inventory:   inventory,
		timeout:     5 * time.Second,
		maxAttempts: sequences.DefaultRestockAttempts,
		backoff:     200 * time.Millisecond,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch returns immediately; the adjustment runs detached from the request context.
func (d *InlineRestockDispatcher) Dispatch(ctx context.Context, cmd ports.RestockCommand) {
	if d == nil || d.inventory == nil {
		slog.Default().Error("inline restock dispatcher not configured", restockAttrs(cmd)...)
		return
	}
	detached := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.run(detached, cmd)
	}()
}

// Wait blocks until every dispatched command has finished.
func (d *InlineRestockDispatcher) Wait() {
	d.wg.Wait()
}

func (d *InlineRestockDispatcher) run(ctx context.Context, cmd ports.RestockCommand) {
	var err error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, d.timeout)
		err = d.inventory.Adjust(attemptCtx, cmd.OperationKey, []domain.StockAdjustment{cmd.Adjustment})
		cancel()
		if err == nil {
			d.logger.Debug("restock completed", append(restockAttrs(cmd), "attempt", attempt)...)
			return
		}
		if attempt < d.maxAttempts && d.backoff > 0 {
			time.Sleep(d.backoff * time.Duration(attempt))
		}
	}
	d.logger.Error("restock failed; reconciliation required", append(restockAttrs(cmd), "attempts", d.maxAttempts, "error", err)...)
}

func restockAttrs(cmd ports.RestockCommand) []any {
	return []any{
		"operationKey", cmd.OperationKey,
		"reason", string(cmd.Reason),
		"barcode", cmd.Adjustment.Barcode,
		"quantity", cmd.Adjustment.Quantity,
	}
}

func buildRestockWorkflowID(operationKey string) string {
	return fmt.Sprintf("restock-%s", hashOperationKey(operationKey))
}

func hashOperationKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
