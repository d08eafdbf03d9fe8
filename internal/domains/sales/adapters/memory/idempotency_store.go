package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore keeps sale idempotency keys in a map.
type IdempotencyStore struct {
	mu      sync.Mutex
	records map[string]ports.IdempotencyRecord
	now     func() time.Time
	ttl     time.Duration
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{
		records: map[string]ports.IdempotencyRecord{},
		now:     time.Now,
		ttl:     ports.DefaultIdempotencyTTL,
	}
}

// WithClock overrides the time source.
func (s *IdempotencyStore) WithClock(now func() time.Time) *IdempotencyStore {
	if now != nil {
		s.now = now
	}
	return s
}

// WithTTL overrides the key lifetime.
func (s *IdempotencyStore) WithTTL(ttl time.Duration) *IdempotencyStore {
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

func (s *IdempotencyStore) Get(_ context.Context, key string) (*ports.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[key]
	if !ok || !record.Live(s.now()) {
		return nil, nil
	}
	return &record, nil
}

func (s *IdempotencyStore) Claim(_ context.Context, key, hash string) (*ports.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if existing, ok := s.records[key]; ok && existing.Live(now) {
		return &existing, false, nil
	}
	record := ports.IdempotencyRecord{
		Key:         key,
		RequestHash: hash,
		CreatedAt:   now,
		ExpiresAt:   now.Add(min(ports.PendingClaimLease, s.ttl)),
	}
	s.records[key] = record
	return &record, true, nil
}

func (s *IdempotencyStore) Complete(_ context.Context, key, hash, saleNumber string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	record, ok := s.records[key]
	if !ok || !record.Live(now) || !record.Pending() || record.RequestHash != hash {
		return ports.ErrIdempotencyClaimLost
	}
	record.SaleNumber = saleNumber
	record.ExpiresAt = now.Add(s.ttl)
	s.records[key] = record
	return nil
}

func (s *IdempotencyStore) Release(_ context.Context, key, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.records[key]; ok && record.Pending() && record.RequestHash == hash {
		delete(s.records, key)
	}
	return nil
}

func (s *IdempotencyStore) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for key, record := range s.records {
		if !record.Live(now) {
			delete(s.records, key)
			removed++
		}
	}
	return removed, nil
}
