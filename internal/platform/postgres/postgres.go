package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrEmptyDSN is returned by Connect when no DSN is configured.
var ErrEmptyDSN = errors.New("postgres DSN is empty")

// PoolConfig bounds the underlying database/sql pool.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// SlowQuery is the threshold above which statements are logged at warn level.
	SlowQuery time.Duration
}

// DefaultPoolConfig suits a single API replica.
var DefaultPoolConfig = PoolConfig{
	MaxOpenConns:    20,
	MaxIdleConns:    5,
	ConnMaxLifetime: 30 * time.Minute,
	SlowQuery:       200 * time.Millisecond,
}

const pingTimeout = 5 * time.Second

// Connect opens the sales database and pings it.
// Unique violations surface as gorm.ErrDuplicatedKey; SQL logging goes through logger.
func Connect(ctx context.Context, dsn string, pool PoolConfig, logger *slog.Logger) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, ErrEmptyDSN
	}
	if logger == nil {
		logger = slog.Default()
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(slogWriter{logger.With(slog.String("component", "gorm"))}, gormlogger.Config{
			SlowThreshold:             pool.SlowQuery,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	applyPool(sqlDB, pool)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// slogWriter feeds gorm's printf-style logger into slog.
type slogWriter struct{ logger *slog.Logger }

func (w slogWriter) Printf(format string, args ...any) {
	w.logger.Warn(fmt.Sprintf(format, args...))
}

type poolSetter interface {
	SetMaxOpenConns(int)
	SetMaxIdleConns(int)
	SetConnMaxLifetime(time.Duration)
}

func applyPool(db poolSetter, pool PoolConfig) {
	if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
}

// ConnectOrFallback returns a nil DB and a no-op cleanup when dsn is empty or unreachable,
// so callers keep serving sales from the in-memory adapters.
func ConnectOrFallback(ctx context.Context, dsn string, logger *slog.Logger) (*gorm.DB, func()) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := Connect(ctx, dsn, DefaultPoolConfig, logger)
	switch {
	case errors.Is(err, ErrEmptyDSN):
		logger.Warn("POSTGRES_DSN not set, sales are kept in memory")
		return nil, func() {}
	case err != nil:
		logger.Warn("postgres unreachable, sales are kept in memory", slog.String("error", err.Error()))
		return nil, func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("postgres handle unavailable, sales are kept in memory", slog.String("error", err.Error()))
		return nil, func() {}
	}
	logger.Info("postgres connection established", slog.Int("maxOpenConns", DefaultPoolConfig.MaxOpenConns))
	return db, func() { _ = sqlDB.Close() }
}
