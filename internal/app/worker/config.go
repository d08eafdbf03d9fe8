package worker

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"

	platformobservability "github.com/Apurer/go-gin-sales-server/internal/platform/observability"
)

// Config carries environment-driven settings for the restock worker.
type Config struct {
	TemporalAddress   string
	TemporalNamespace string
	InventoryBaseURL  string
	RestockTimeout    time.Duration
	// MaxConcurrentRestocks caps restock activities running at once; zero keeps the SDK default.
	MaxConcurrentRestocks int
	Observability         platformobservability.Settings
}

// LoadConfig reads the worker environment, pre-loading .env when present.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	cfg := Config{
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		InventoryBaseURL:  envDefault("INVENTORY_BASE_URL", "http://localhost:8082"),
		RestockTimeout:    5 * time.Second,
	}
	parsed, err := url.Parse(cfg.InventoryBaseURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return Config{}, fmt.Errorf("INVENTORY_BASE_URL must be an absolute http(s) URL")
	}
	if raw := strings.TrimSpace(os.Getenv("RESTOCK_TIMEOUT_MS")); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms <= 0 {
			return Config{}, fmt.Errorf("RESTOCK_TIMEOUT_MS must be a positive integer")
		}
		cfg.RestockTimeout = time.Duration(ms) * time.Millisecond
	}
	if raw := strings.TrimSpace(os.Getenv("WORKER_MAX_CONCURRENT_RESTOCKS")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("WORKER_MAX_CONCURRENT_RESTOCKS must be a non-negative integer")
		}
		cfg.MaxConcurrentRestocks = n
	}
	if cfg.Observability, err = platformobservability.SettingsFromEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}
