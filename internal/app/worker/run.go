// Package worker hosts the Temporal worker that replays restock adjustments against inventory.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	inventoryclient "github.com/Apurer/go-gin-sales-server/internal/clients/http/inventory"
	salesinventory "github.com/Apurer/go-gin-sales-server/internal/domains/sales/adapters/external/inventory"
	platformobservability "github.com/Apurer/go-gin-sales-server/internal/platform/observability"
	platformtemporal "github.com/Apurer/go-gin-sales-server/internal/platform/temporal"
	inventoryactivities "github.com/Apurer/go-gin-sales-server/internal/platform/temporal/activities/inventory"
	inventoryworkflows "github.com/Apurer/go-gin-sales-server/internal/platform/temporal/workflows/inventory"
)

const serviceName = "sales-worker"

// Run polls the restock task queue until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.InitWithSettings(ctx, serviceName, cfg.Observability, os.Stdout)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	inventoryAPI, err := inventoryclient.NewClient(cfg.InventoryBaseURL, &http.Client{
		Timeout:   cfg.RestockTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport, otelhttp.WithTracerProvider(instruments.TracerProvider)),
	})
	if err != nil {
		return fmt.Errorf("inventory client: %w", err)
	}
	inventory := salesinventory.NewCoordinator(inventoryAPI, salesinventory.DefaultBreakerSettings, logger)

	temporalClient, err := platformtemporal.Dial(platformtemporal.DialOptions{
		Address:   cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Role:      serviceName,
	}, instruments)
	if err != nil {
		return err
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, inventoryworkflows.RestockTaskQueue, workerOptions(cfg))
	register(w, inventoryactivities.NewActivities(inventory))

	if err := w.Start(); err != nil {
		return fmt.Errorf("start restock worker: %w", err)
	}
	logger.Info("restock worker polling",
		slog.String("taskQueue", inventoryworkflows.RestockTaskQueue),
		slog.String("namespace", cfg.TemporalNamespace),
		slog.Int("maxConcurrentRestocks", cfg.MaxConcurrentRestocks),
	)
	<-ctx.Done()
	w.Stop()
	logger.Info("restock worker stopped")
	return nil
}

func workerOptions(cfg Config) worker.Options {
	return worker.Options{
		MaxConcurrentActivityExecutionSize: cfg.MaxConcurrentRestocks,
		WorkerStopTimeout:                  cfg.RestockTimeout,
	}
}

// register is the single place the restock workflow and activity names are bound.
func register(r worker.Registry, activities *inventoryactivities.Activities) {
	r.RegisterWorkflowWithOptions(inventoryworkflows.RestockWorkflow, workflow.RegisterOptions{Name: inventoryworkflows.RestockWorkflowName})
	r.RegisterActivityWithOptions(activities.Restock, activity.RegisterOptions{Name: inventoryactivities.RestockActivityName})
}
