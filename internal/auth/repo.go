package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/techshop/storefront/internal/platform/db"
)

const emailConstraint = "uq_users_email"

// CredentialStore persists identities keyed by email.
type CredentialStore interface {
	// FindByEmail returns ErrIdentityNotFound when no identity matches.
	FindByEmail(ctx context.Context, email string) (*Identity, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Save inserts identities with a zero ID and updates the rest.
	Save(ctx context.Context, identity *Identity) (*Identity, error)
}

// PGRepository implements CredentialStore using PostgreSQL.
type PGRepository struct {
	q db.Querier
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(q db.Querier) *PGRepository {
	return &PGRepository{q: q}
}

const identityColumns = `id, name, surname, email, password_hash, created_at, updated_at`

func scanIdentity(row pgx.Row) (*Identity, error) {
	var ident Identity
	if err := row.Scan(&ident.ID, &ident.Name, &ident.Surname, &ident.Email, &ident.PasswordHash, &ident.CreatedAt, &ident.UpdatedAt); err != nil {
		return nil, err
	}
	return &ident, nil
}

// FindByEmail fetches an identity by exact email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*Identity, error) {
	ident, err := scanIdentity(r.q.QueryRow(ctx, `SELECT `+identityColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIdentityNotFound
		}
		return nil, fmt.Errorf("auth: find identity: %w", err)
	}
	return ident, nil
}

// ExistsByEmail reports whether an identity with email is stored.
func (r *PGRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("auth: identity exists: %w", err)
	}
	return exists, nil
}

// Save inserts or updates identity and returns the stored row.
func (r *PGRepository) Save(ctx context.Context, identity *Identity) (*Identity, error) {
	if identity == nil {
		return nil, errors.New("auth: nil identity")
	}
	var (
		stored *Identity
		err    error
	)
	if identity.ID == 0 {
		stored, err = scanIdentity(r.q.QueryRow(ctx,
			`INSERT INTO users (name, surname, email, password_hash)
			 VALUES ($1, $2, $3, $4)
			 RETURNING `+identityColumns,
			strings.TrimSpace(identity.Name), strings.TrimSpace(identity.Surname), identity.Email, identity.PasswordHash))
	} else {
		stored, err = scanIdentity(r.q.QueryRow(ctx,
			`UPDATE users SET name = $2, surname = $3, password_hash = $4, updated_at = now()
			 WHERE id = $1
			 RETURNING `+identityColumns,
			identity.ID, strings.TrimSpace(identity.Name), strings.TrimSpace(identity.Surname), identity.PasswordHash))
	}
	switch {
	case err == nil:
		return stored, nil
	case db.IsUniqueViolation(err, emailConstraint):
		return nil, ErrEmailTaken
	case errors.Is(err, pgx.ErrNoRows):
		return nil, ErrIdentityNotFound
	default:
		return nil, fmt.Errorf("auth: save identity: %w", err)
	}
}

var _ CredentialStore = (*PGRepository)(nil)
