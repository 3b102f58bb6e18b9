package shared

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/techshop/storefront/internal/platform/db"
)

// IdempotencyHeader carries the client-chosen key of a retried write.
const IdempotencyHeader = "Idempotency-Key"

// MaxIdempotencyKeyLength bounds the stored key.
const MaxIdempotencyKeyLength = 64

// ErrIdempotencyConflict indicates the key was already used for a completed write.
var ErrIdempotencyConflict = NewError(ErrBadRequest, "idempotent request already processed", MsgDuplicateRequest)

// ErrIdempotencyKeyInvalid rejects keys that are blank or too long.
var ErrIdempotencyKeyInvalid = NewError(ErrValidation, "idempotency key invalid", MsgValidation)

// IdempotencyStore persists processed keys per scope.
type IdempotencyStore struct {
	q   db.Querier
	now func() time.Time
}

// NewIdempotencyStore constructs the store over q. Passing a transaction makes
// a claim roll back together with the write it guards.
func NewIdempotencyStore(q db.Querier) *IdempotencyStore {
	return &IdempotencyStore{q: q, now: time.Now}
}

// Claim records key within scope. A second claim of the same pair fails with
// ErrIdempotencyConflict.
func (s *IdempotencyStore) Claim(ctx context.Context, scope, key string) error {
	if s == nil {
		return errors.New("idempotency store not initialised")
	}
	key = strings.TrimSpace(key)
	if key == "" || len(key) > MaxIdempotencyKeyLength {
		return ErrIdempotencyKeyInvalid
	}
	if scope == "" {
		return errors.New("idempotency scope required")
	}
	_, err := s.q.Exec(ctx,
		`INSERT INTO idempotency_keys (module, key, created_at) VALUES ($1, $2, $3)`,
		scope, key, s.now())
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return ErrIdempotencyConflict
		}
		return fmt.Errorf("idempotency: claim: %w", err)
	}
	return nil
}

// Cleanup removes entries older than retention and returns how many went.
func (s *IdempotencyStore) Cleanup(ctx context.Context, olderThan time.Duration) (int64, error) {
	if s == nil {
		return 0, nil
	}
	cutoff := s.now().Add(-olderThan)
	tag, err := s.q.Exec(ctx, `DELETE FROM idempotency_keys WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("idempotency: cleanup: %w", err)
	}
	return tag.RowsAffected(), nil
}
