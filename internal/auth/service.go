package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultTokenTTL is the lifetime of tokens minted at login.
const DefaultTokenTTL = 24 * time.Hour

// dummyPassword is hashed at construction and compared against when the
// login email is unknown, so both failure paths pay for one bcrypt comparison.
const dummyPassword = "storefront-dummy-password"

// Service wraps authentication business rules. It is the only component
// that mints tokens.
type Service struct {
	store  CredentialStore
	hasher PasswordHasher
	codec  *TokenCodec
	ttl    time.Duration
	dummy  string
}

// NewService constructs a new Service and hashes the dummy password used for
// unknown emails. A non-positive ttl selects DefaultTokenTTL.
func NewService(store CredentialStore, hasher PasswordHasher, codec *TokenCodec, ttl time.Duration) (*Service, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	dummy, err := hasher.Hash(context.Background(), dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("auth: hash dummy password: %w", err)
	}
	return &Service{store: store, hasher: hasher, codec: codec, ttl: ttl, dummy: dummy}, nil
}

// Register creates a new identity with a hashed password.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*Identity, error) {
	email := strings.TrimSpace(input.Email)
	exists, err := s.store.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}
	hash, err := s.hasher.Hash(ctx, input.Password)
	if err != nil {
		return nil, err
	}
	return s.store.Save(ctx, &Identity{
		Name:         input.Name,
		Surname:      input.Surname,
		Email:        email,
		PasswordHash: hash,
	})
}

// Login validates credentials and returns a signed token. Unknown emails and
// wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	ident, err := s.store.FindByEmail(ctx, strings.TrimSpace(email))
	switch {
	case errors.Is(err, ErrIdentityNotFound):
		if _, cerr := s.hasher.Compare(ctx, s.dummy, password); cerr != nil {
			return "", cerr
		}
		return "", ErrInvalidCredentials
	case err != nil:
		return "", err
	}

	ok, err := s.hasher.Compare(ctx, ident.PasswordHash, password)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrInvalidCredentials
	}
	token, err := s.codec.Issue(ident.Email, s.ttl)
	if err != nil {
		return "", fmt.Errorf("auth: issue token: %w", err)
	}
	return token, nil
}

// CurrentIdentity re-reads the identity of the request caller.
func (s *Service) CurrentIdentity(ctx context.Context) (*Identity, error) {
	caller, ok := CallerFromContext(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}
	ident, err := s.store.FindByEmail(ctx, caller.Subject())
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return nil, ErrUserVanished
		}
		return nil, err
	}
	return ident, nil
}

// UpdateProfile changes name and surname of the current identity. Blank
// fields keep their stored value.
func (s *Service) UpdateProfile(ctx context.Context, update ProfileUpdate) (*Identity, error) {
	ident, err := s.CurrentIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(update.Name); name != "" {
		ident.Name = name
	}
	if surname := strings.TrimSpace(update.Surname); surname != "" {
		ident.Surname = surname
	}
	saved, err := s.store.Save(ctx, ident)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return nil, ErrUserVanished
		}
		return nil, err
	}
	return saved, nil
}
