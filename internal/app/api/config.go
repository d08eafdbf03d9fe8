package api

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

// Config carries environment-driven settings for the API process.
type Config struct {
	Port               string
	PostgresDSN        string
	TemporalAddress    string
	TemporalNamespace  string
	TemporalDisabled   bool
	InventoryBaseURL   string
	InventoryTimeout   time.Duration
	RestockTimeout     time.Duration
	RestockMaxAttempts int
	IdempotencyTTL     time.Duration
	CORSAllowedOrigins []string
	Observability      platformobservability.Settings
}

// LoadDotEnv pre-loads variables from the given files (".env" when none) without
// overriding the real environment. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:               envDefault("PORT", "8080"),
		PostgresDSN:        strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		TemporalAddress:    envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace:  envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:   isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		InventoryBaseURL:   envDefault("INVENTORY_BASE_URL", "http://localhost:8082"),
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return Config{}, fmt.Errorf("PORT must be numeric")
	}
	parsed, err := url.Parse(cfg.InventoryBaseURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return Config{}, fmt.Errorf("INVENTORY_BASE_URL must be an absolute http(s) URL")
	}
	if cfg.InventoryTimeout, err = positiveMillis("INVENTORY_TIMEOUT_MS", 3*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.RestockTimeout, err = positiveMillis("RESTOCK_TIMEOUT_MS", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.RestockMaxAttempts, err = positiveInt("RESTOCK_MAX_ATTEMPTS", 1); err != nil {
		return Config{}, err
	}
	ttlHours, err := positiveInt("IDEMPOTENCY_TTL_HOURS", 72)
	if err != nil {
		return Config{}, err
	}
	cfg.IdempotencyTTL = time.Duration(ttlHours) * time.Hour
	if cfg.Observability, err = platformobservability.SettingsFromEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func positiveMillis(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func positiveInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
