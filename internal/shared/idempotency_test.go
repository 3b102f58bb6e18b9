package shared

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type execRecorder struct {
	claimed map[string]bool
	args    [][]any
	err     error
}

func (e *execRecorder) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	e.args = append(e.args, args)
	if e.err != nil {
		return pgconn.CommandTag{}, e.err
	}
	if len(args) == 3 {
		k := args[0].(string) + "|" + args[1].(string)
		if e.claimed[k] {
			return pgconn.CommandTag{}, &pgconn.PgError{Code: "23505", ConstraintName: "idempotency_keys_pkey"}
		}
		e.claimed[k] = true
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}
	return pgconn.NewCommandTag("DELETE 3"), nil
}

func (e *execRecorder) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not used")
}

func (e *execRecorder) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func TestIdempotencyClaim(t *testing.T) {
	rec := &execRecorder{claimed: map[string]bool{}}
	store := NewIdempotencyStore(rec)
	ctx := context.Background()

	require.NoError(t, store.Claim(ctx, "orders:1", "abc"))
	assert.ErrorIs(t, store.Claim(ctx, "orders:1", "abc"), ErrIdempotencyConflict)
	assert.ErrorIs(t, store.Claim(ctx, "orders:1", "abc"), ErrBadRequest)
	require.NoError(t, store.Claim(ctx, "orders:2", "abc"))

	assert.ErrorIs(t, store.Claim(ctx, "orders:1", "   "), ErrIdempotencyKeyInvalid)
	long := make([]byte, MaxIdempotencyKeyLength+1)
	for i := range long {
		long[i] = 'k'
	}
	assert.ErrorIs(t, store.Claim(ctx, "orders:1", string(long)), ErrValidation)
	assert.Error(t, store.Claim(ctx, "", "abc"))

	var nilStore *IdempotencyStore
	assert.Error(t, nilStore.Claim(ctx, "orders:1", "abc"))
}

func TestIdempotencyClaimPropagatesFailures(t *testing.T) {
	boom := errors.New("connection reset")
	store := NewIdempotencyStore(&execRecorder{claimed: map[string]bool{}, err: boom})
	err := store.Claim(context.Background(), "orders:1", "abc")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrIdempotencyConflict)
}

func TestIdempotencyCleanup(t *testing.T) {
	rec := &execRecorder{claimed: map[string]bool{}}
	store := NewIdempotencyStore(rec)
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	removed, err := store.Cleanup(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
	require.Len(t, rec.args, 1)
	assert.Equal(t, fixed.Add(-24*time.Hour), rec.args[0][0])

	var nilStore *IdempotencyStore
	removed, err = nilStore.Cleanup(context.Background(), time.Hour)
	assert.NoError(t, err)
	assert.Zero(t, removed)
}
