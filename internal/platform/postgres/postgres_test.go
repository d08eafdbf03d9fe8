package postgres

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPool struct {
	open, idle int
	lifetime   time.Duration
}

func (p *recordingPool) SetMaxOpenConns(n int)              { p.open = n }
func (p *recordingPool) SetMaxIdleConns(n int)              { p.idle = n }
func (p *recordingPool) SetConnMaxLifetime(d time.Duration) { p.lifetime = d }

func TestConnect_EmptyDSN(t *testing.T) {
	_, err := Connect(context.Background(), "  ", DefaultPoolConfig, nil)
	require.ErrorIs(t, err, ErrEmptyDSN)
}

func TestConnectOrFallback_EmptyDSNKeepsMemory(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	db, cleanup := ConnectOrFallback(context.Background(), "", logger)

	assert.Nil(t, db)
	require.NotNil(t, cleanup)
	cleanup()
	assert.Contains(t, buf.String(), "POSTGRES_DSN not set")
}

func TestApplyPool_SkipsZeroValues(t *testing.T) {
	pool := &recordingPool{open: 7}

	applyPool(pool, PoolConfig{MaxIdleConns: 3})

	assert.Equal(t, 7, pool.open)
	assert.Equal(t, 3, pool.idle)
	assert.Zero(t, pool.lifetime)
}

func TestSlogWriter_FormatsGormMessages(t *testing.T) {
	var buf bytes.Buffer
	w := slogWriter{slog.New(slog.NewTextHandler(&buf, nil))}

	w.Printf("SLOW SQL >= %v", 200*time.Millisecond)

	assert.Contains(t, buf.String(), "SLOW SQL >= 200ms")
	assert.Contains(t, buf.String(), "level=WARN")
}
