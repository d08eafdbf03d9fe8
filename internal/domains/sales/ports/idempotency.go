package ports

import (
	"context"
	"errors"
	"time"
)

// DefaultIdempotencyTTL is how long a register may retry a sale with the same key.
const DefaultIdempotencyTTL = 72 * time.Hour

// PendingClaimLease bounds how long a claim whose sale never committed blocks its key.
const PendingClaimLease = 2 * time.Minute

var (
	// ErrIdempotencyConflict indicates the same key was used with a different payload.
	ErrIdempotencyConflict = errors.New("idempotency conflict")
	// ErrIdempotencyInProgress indicates the key is held by a sale that has not committed yet.
	ErrIdempotencyInProgress = errors.New("sale with this idempotency key is still in progress")
	// ErrIdempotencyClaimLost indicates a claim lapsed or was taken over before its sale was bound.
	ErrIdempotencyClaimLost = errors.New("idempotency claim lost")
)

// IdempotencyRecord binds a register-supplied key to the sale it committed.
// A record without a sale number is a pending claim.
type IdempotencyRecord struct {
	Key         string
	RequestHash string
	SaleNumber  string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Live reports whether the key still replays at now. A zero ExpiresAt never expires.
func (r IdempotencyRecord) Live(now time.Time) bool {
	return r.ExpiresAt.IsZero() || now.Before(r.ExpiresAt)
}

// Pending reports whether the claim is still waiting for its sale.
func (r IdempotencyRecord) Pending() bool {
	return r.SaleNumber == ""
}

// IdempotencyStore keeps idempotency keys for their lifetime.
type IdempotencyStore interface {
	// Get returns the live record for the key, or nil when unknown or expired.
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	// Claim reserves an absent or expired key for hash as a pending record and reports
	// claimed=true. When a live record already holds the key it is returned unchanged.
	Claim(ctx context.Context, key, hash string) (record *IdempotencyRecord, claimed bool, err error)
	// Complete binds the committed sale to the pending claim and extends it to the full TTL.
	// ErrIdempotencyClaimLost is returned when the claim is no longer pending for hash.
	Complete(ctx context.Context, key, hash, saleNumber string) error
	// Release drops a pending claim so the key can be retried. Completed records are kept.
	Release(ctx context.Context, key, hash string) error
	// PurgeExpired deletes records that are no longer live at now.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
