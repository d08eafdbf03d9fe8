package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	salespostgres "github.com/Apurer/go-gin-sales-server/internal/domains/sales/adapters/persistence/postgres"
	platformobservability "github.com/Apurer/go-gin-sales-server/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-sales-server/internal/platform/postgres"
)

func main() {
	_ = godotenv.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	settings, err := platformobservability.SettingsFromEnv()
	if err != nil {
		log.Fatalf("invalid observability settings: %v", err)
	}
	logger := platformobservability.NewLogger(os.Stdout, "idempotency-purger", settings)
	db, cleanup := platformpostgres.ConnectOrFallback(ctx, os.Getenv("POSTGRES_DSN"), logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot purge idempotency keys")
	}

	now := time.Now()
	removed, err := salespostgres.NewIdempotencyStore(db, 0).PurgeExpired(ctx, now)
	if err != nil {
		log.Fatalf("failed to purge idempotency keys: %v", err)
	}
	logger.Info("idempotency key purge completed", slog.Int64("removed", removed), slog.Time("at", now))
}
