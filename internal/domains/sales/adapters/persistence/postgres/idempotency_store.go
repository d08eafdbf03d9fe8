package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore persists sale idempotency keys in PostgreSQL.
type IdempotencyStore struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// NewIdempotencyStore wires the store. A non-positive ttl uses ports.DefaultIdempotencyTTL.
func NewIdempotencyStore(db *gorm.DB, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = ports.DefaultIdempotencyTTL
	}
	return &IdempotencyStore{db: db, ttl: ttl, now: time.Now}
}

// Get loads the live record for key.
func (s *IdempotencyStore) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record idempotencyRecord
	err := s.db.WithContext(ctx).
		Where("key = ? AND expires_at > ?", key, s.now().UTC()).
		Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record.toPort(), nil
}

// Claim inserts a pending row for key, or takes over an expired row in the same
// statement. When a live row holds the key it is returned with claimed=false.
func (s *IdempotencyStore) Claim(ctx context.Context, key, hash string) (*ports.IdempotencyRecord, bool, error) {
	if err := s.ensureDB(); err != nil {
		return nil, false, err
	}
	// A released claim can vanish between the insert and the read, so try twice.
	for attempt := 0; attempt < 2; attempt++ {
		now := s.now().UTC()
		row := idempotencyRecord{
			Key:         key,
			RequestHash: hash,
			CreatedAt:   now,
			ExpiresAt:   now.Add(min(ports.PendingClaimLease, s.ttl)),
		}
		result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"request_hash", "sale_number", "created_at", "expires_at"}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "sale_idempotency_keys.expires_at <= ?", Vars: []any{now}},
			}},
		}).Create(&row)
		if result.Error != nil {
			return nil, false, fmt.Errorf("claim idempotency key: %w", result.Error)
		}
		if result.RowsAffected == 1 {
			return row.toPort(), true, nil
		}
		existing, err := s.Get(ctx, key)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			return existing, false, nil
		}
	}
	return nil, false, fmt.Errorf("idempotency key %q neither claimed nor found", key)
}

// Complete binds saleNumber to the pending claim held for hash.
func (s *IdempotencyStore) Complete(ctx context.Context, key, hash, saleNumber string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	now := s.now().UTC()
	result := s.db.WithContext(ctx).Model(&idempotencyRecord{}).
		Where("key = ? AND request_hash = ? AND sale_number = '' AND expires_at > ?", key, hash, now).
		Updates(map[string]any{
			"sale_number": saleNumber,
			"expires_at":  now.Add(s.ttl),
		})
	if result.Error != nil {
		return fmt.Errorf("complete idempotency key: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ports.ErrIdempotencyClaimLost
	}
	return nil
}

// Release deletes the pending claim held for hash. Completed rows are untouched.
func (s *IdempotencyStore) Release(ctx context.Context, key, hash string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Where("key = ? AND request_hash = ? AND sale_number = ''", key, hash).
		Delete(&idempotencyRecord{}).Error
}

// PurgeExpired removes keys whose lifetime ended at or before now.
func (s *IdempotencyStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	result := s.db.WithContext(ctx).Where("expires_at <= ?", now.UTC()).Delete(&idempotencyRecord{})
	return result.RowsAffected, result.Error
}

func (s *IdempotencyStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres idempotency store not configured")
	}
	return nil
}
