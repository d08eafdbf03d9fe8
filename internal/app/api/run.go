package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gorm.io/gorm"

	salesserver "github.com/Apurer/go-gin-sales-server/go"

	inventoryclient "github.com/Apurer/go-gin-sales-server/internal/clients/http/inventory"
	salesinventory "github.com/Apurer/go-gin-sales-server/internal/domains/sales/adapters/external/inventory"
	salesidentity "github.com/Apurer/go-gin-sales-server/internal/domains/sales/adapters/identity"
	salesmemory "github.com/Apurer/go-gin-sales-server/internal/domains/sales/adapters/memory"
	salesobs "github.com/Apurer/go-gin-sales-server/internal/domains/sales/adapters/observability"
	salespostgres "github.com/Apurer/go-gin-sales-server/internal/domains/sales/adapters/persistence/postgres"
	salesworkflows "github.com/Apurer/go-gin-sales-server/internal/domains/sales/adapters/workflows"
	salesapp "github.com/Apurer/go-gin-sales-server/internal/domains/sales/application"
	salesports "github.com/Apurer/go-gin-sales-server/internal/domains/sales/ports"
	"github.com/Apurer/go-gin-sales-server/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-gin-sales-server/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-sales-server/internal/platform/postgres"
	platformtemporal "github.com/Apurer/go-gin-sales-server/internal/platform/temporal"
)

const serviceName = "sales-api"

// Run boots the sales HTTP API with observability, persistence, inventory coordination and restock dispatch wired.
// It returns when ctx is cancelled or the server fails.
func Run(ctx context.Context) error {
	if err := LoadDotEnv(); err != nil {
		return err
	}
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

	stores, cleanupStores := buildStores(ctx, cfg, logger)
	defer cleanupStores()

	inventoryAPI, err := inventoryclient.NewClient(cfg.InventoryBaseURL, &http.Client{
		Timeout:   cfg.InventoryTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport, otelhttp.WithTracerProvider(instruments.TracerProvider)),
	})
	if err != nil {
		return fmt.Errorf("inventory client: %w", err)
	}
	inventory := salesinventory.NewCoordinator(inventoryAPI, salesinventory.DefaultBreakerSettings, logger)

	inline := salesworkflows.NewInlineRestockDispatcher(
		inventory,
		salesworkflows.WithTimeout(cfg.RestockTimeout),
		salesworkflows.WithAttempts(cfg.RestockMaxAttempts, 200*time.Millisecond),
		salesworkflows.WithInlineLogger(logger),
	)
	defer inline.Wait()
	var restock salesports.RestockDispatcher = inline
	if cfg.TemporalDisabled {
		logger.Warn("Temporal disabled via TEMPORAL_DISABLED, dispatching restocks inline")
	} else if temporalClient, err := platformtemporal.Dial(platformtemporal.DialOptions{
		Address:   cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Role:      serviceName,
	}, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, dispatching restocks inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		temporalRestock := salesworkflows.NewTemporalRestockDispatcher(
			temporalClient,
			salesworkflows.WithFallback(inline),
			salesworkflows.WithMaxAttempts(int32(cfg.RestockMaxAttempts)),
			salesworkflows.WithStartTimeout(cfg.RestockTimeout),
			salesworkflows.WithTemporalLogger(logger),
		)
		defer temporalRestock.Wait()
		restock = temporalRestock
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	meter := instruments.Meter("internal.sales.application")
	coreService := salesapp.NewService(
		stores.repo,
		inventory,
		salesidentity.NewUUIDSaleNumbers(),
		restock,
		salesapp.WithCampaigns(stores.campaigns),
		salesapp.WithIdempotencyStore(stores.idempotency),
		salesapp.WithPricingAnomalyHook(salesobs.NewPricingAnomalyHook(logger, meter)),
	)
	service := salesobs.New(
		coreService,
		salesobs.WithLogger(logger),
		salesobs.WithTracer(instruments.Tracer("internal.sales.application")),
		salesobs.WithMeter(meter),
	)

	router := newEngine(cfg)
	salesserver.NewRouterWithGinEngine(router, salesserver.ApiHandleFunctions{
		SalesAPI: salesserver.NewSalesAPI(service, salesserver.NewSalesResponder("")),
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Sales API listening", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("Sales API server exited", slog.String("addr", srv.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("Sales API shutting down")
	return srv.Shutdown(shutdownCtx)
}

func newEngine(cfg Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	corsConfig := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", salesserver.IdempotencyKeyHeader},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	}
	router.Use(cors.New(corsConfig))
	return router
}

type salesStores struct {
	repo        salesports.Repository
	campaigns   salesports.CampaignReader
	idempotency salesports.IdempotencyStore
}

func buildStores(ctx context.Context, cfg Config, logger *slog.Logger) (salesStores, func()) {
	db, cleanup := platformpostgres.ConnectOrFallback(ctx, cfg.PostgresDSN, logger)
	if db == nil {
		return memoryStores(cfg), cleanup
	}
	if err := migrations.Run(db); err != nil {
		logger.Warn("failed to migrate postgres schema, falling back to memory", slog.String("error", err.Error()))
		cleanup()
		return memoryStores(cfg), func() {}
	}
	logger.Info("sales repositories configured with postgres")
	return postgresStores(db, cfg), cleanup
}

func memoryStores(cfg Config) salesStores {
	return salesStores{
		repo:        salesmemory.NewRepository(),
		campaigns:   salesmemory.NewCampaignStore(),
		idempotency: salesmemory.NewIdempotencyStore().WithTTL(cfg.IdempotencyTTL),
	}
}

func postgresStores(db *gorm.DB, cfg Config) salesStores {
	return salesStores{
		repo:        salespostgres.NewRepository(db),
		campaigns:   salespostgres.NewCampaignReader(db),
		idempotency: salespostgres.NewIdempotencyStore(db, cfg.IdempotencyTTL),
	}
}
