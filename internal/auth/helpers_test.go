package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/techshop/storefront/internal/auth"
	_ "github.com/techshop/storefront/testing"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type memStore struct {
	mu      sync.Mutex
	byEmail map[string]*auth.Identity
	nextID  int64
	findErr error
	finds   int
}

func newMemStore() *memStore {
	return &memStore{byEmail: make(map[string]*auth.Identity)}
}

func (s *memStore) FindByEmail(ctx context.Context, email string) (*auth.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finds++
	if s.findErr != nil {
		return nil, s.findErr
	}
	ident, ok := s.byEmail[email]
	if !ok {
		return nil, auth.ErrIdentityNotFound
	}
	clone := *ident
	return &clone, nil
}

func (s *memStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byEmail[email]
	return ok, nil
}

func (s *memStore) Save(ctx context.Context, identity *auth.Identity) (*auth.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *identity
	if clone.ID == 0 {
		if _, taken := s.byEmail[clone.Email]; taken {
			return nil, auth.ErrEmailTaken
		}
		s.nextID++
		clone.ID = s.nextID
		clone.CreatedAt = time.Now().UTC()
	}
	clone.UpdatedAt = time.Now().UTC()
	s.byEmail[clone.Email] = &clone
	out := clone
	return &out, nil
}

func (s *memStore) delete(email string) {
	s.mu.Lock()
	delete(s.byEmail, email)
	s.mu.Unlock()
}

func newCodec(t *testing.T, c *clock) *auth.TokenCodec {
	t.Helper()
	codec, err := auth.NewTokenCodec(testSecret, auth.WithClock(c.Now))
	require.NoError(t, err)
	return codec
}

func newService(t *testing.T, store auth.CredentialStore, c *clock) *auth.Service {
	t.Helper()
	svc, err := auth.NewService(store, auth.NewBcryptHasher(bcrypt.MinCost, 2), newCodec(t, c), time.Hour)
	require.NoError(t, err)
	return svc
}
