package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/techshop/storefront/internal/auth"
	"github.com/techshop/storefront/internal/masterdata/products"
	mdshared "github.com/techshop/storefront/internal/masterdata/shared"
	"github.com/techshop/storefront/internal/observability"
	"github.com/techshop/storefront/internal/rbac"
	"github.com/techshop/storefront/internal/users"
	"github.com/techshop/storefront/internal/wishlist"
)

type memCredentials struct {
	mu     sync.Mutex
	byMail map[string]auth.Identity
	nextID int64
}

func (m *memCredentials) FindByEmail(ctx context.Context, email string) (*auth.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ident, ok := m.byMail[email]
	if !ok {
		return nil, auth.ErrIdentityNotFound
	}
	return &ident, nil
}

func (m *memCredentials) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byMail[email]
	return ok, nil
}

func (m *memCredentials) Save(ctx context.Context, ident *auth.Identity) (*auth.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := *ident
	if saved.ID == 0 {
		m.nextID++
		saved.ID = m.nextID
	}
	m.byMail[saved.Email] = saved
	return &saved, nil
}

type catalogRepo struct{}

func (catalogRepo) List(ctx context.Context, filters mdshared.ListFilters) ([]products.Product, int, error) {
	return []products.Product{{ID: 1, Name: "Laptop", Price: 999.99, CategoryID: 1}}, 1, nil
}

func (catalogRepo) Get(ctx context.Context, id int64) (products.Product, error) {
	if id != 1 {
		return products.Product{}, mdshared.NotFound("Product")
	}
	return products.Product{ID: 1, Name: "Laptop", Price: 999.99, CategoryID: 1}, nil
}

func (catalogRepo) FindByIDs(ctx context.Context, ids []int64) ([]products.Product, error) {
	return nil, nil
}

func (catalogRepo) Create(ctx context.Context, p products.Product) (products.Product, error) {
	return p, nil
}

// wishlistRepo fails every transaction and counts how often one was opened.
type wishlistRepo struct {
	wishlist.Repository
	mu  sync.Mutex
	txs int
}

func (r *wishlistRepo) WithTx(ctx context.Context, fn func(context.Context, wishlist.Repository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txs++
	return errors.New("wishlist store unavailable")
}

func (r *wishlistRepo) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.txs
}

type server struct {
	handler  http.Handler
	metrics  *observability.Metrics
	wishlist *wishlistRepo
}

func newServer(t *testing.T, checks map[string]HealthCheck) server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &Config{AppRequestTimeout: 5 * time.Second, RateLimit: 1000, CORSOrigin: "http://localhost:4200"}

	store := &memCredentials{byMail: map[string]auth.Identity{}}
	codec, err := auth.NewTokenCodec([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	service, err := auth.NewService(store, auth.NewBcryptHasher(bcrypt.MinCost, 2), codec, time.Hour)
	require.NoError(t, err)
	policy, err := rbac.NewPolicy(rbac.DefaultRules())
	require.NoError(t, err)
	metrics := observability.NewMetrics()
	wishlists := &wishlistRepo{}

	handler := NewRouter(RouterParams{
		Logger:          logger,
		Config:          cfg,
		Filter:          auth.NewFilter(codec, store, policy, logger, auth.WithOutcomeRecorder(metrics)),
		AuthHandler:     auth.NewHandler(logger, service),
		UsersHandler:    users.NewHandler(logger, service),
		ProductsHandler: products.NewHandler(logger, products.NewService(catalogRepo{})),
		WishlistHandler: wishlist.NewHandler(logger, wishlist.NewService(wishlists)),
		Metrics:         metrics,
		HealthChecks:    checks,
	})
	return server{handler: handler, metrics: metrics, wishlist: wishlists}
}

func (s server) do(t *testing.T, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func TestRouterAuthenticationFlow(t *testing.T) {
	srv := newServer(t, nil)

	rec := srv.do(t, http.MethodPost, "/api/v1/auth/register", "",
		`{"name":"Ada","surname":"Lovelace","email":"ada@example.com","password":"s3cret"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodPost, "/api/v1/auth/authenticate", "", `{"email":"ada@example.com","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)

	rec = srv.do(t, http.MethodGet, "/api/v1/auth/me", login.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"ada@example.com"`)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = srv.do(t, http.MethodPatch, "/api/v1/user", login.Token, `{"surname":"King"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"surname":"King"`)

	rec = srv.do(t, http.MethodPost, "/api/v1/auth/authenticate", "", `{"email":"ada@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouterDeniesAnonymousOnProtectedPaths(t *testing.T) {
	srv := newServer(t, nil)

	for _, target := range []string{"/api/v1/auth/me", "/api/v1/user", "/api/v1/order", "/api/v1/wishlist", "/api/v1/unknown"} {
		rec := srv.do(t, http.MethodGet, target, "", "")
		assert.Equal(t, http.StatusForbidden, rec.Code, target)
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"), target)
	}

	rec := srv.do(t, http.MethodGet, "/api/v1/auth/me", "not-a-token", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouterDeniesEncodedTraversalToProtectedRoutes(t *testing.T) {
	srv := newServer(t, nil)

	targets := []string{
		"/api/v1/wishlist/add/5",
		"/api/v1/wishlist/add/5%2F..%2F..%2F..%2Fproduct",
		"/api/v1/wishlist/add/5%2f..%2f..%2f..%2fproduct",
		"/api/v1/wishlist/add/%2E%2E%2F%2E%2E%2F%2E%2E%2Fproduct",
		"/api/v1/wishlist/share/toggle/..%2F..%2F..%2Fproduct",
	}
	for _, target := range targets {
		rec := srv.do(t, http.MethodPost, target, "", "")
		assert.Equal(t, http.StatusForbidden, rec.Code, target)
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"), target)
	}
	assert.Zero(t, srv.wishlist.calls())
}

func TestRouterPublicCatalog(t *testing.T) {
	srv := newServer(t, nil)

	rec := srv.do(t, http.MethodGet, "/api/v1/product", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)

	rec = srv.do(t, http.MethodGet, "/api/v1/product/1", "garbage", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/product/2", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterLocalizesErrors(t *testing.T) {
	srv := newServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/authenticate",
		strings.NewReader(`{"email":"nobody@example.com","password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9")
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var problem map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	detail, _ := problem["detail"].(string)
	assert.NotEmpty(t, detail)
	assert.NotContains(t, strings.ToLower(detail), "authentication failed")
}

func TestRouterHealthAndMetrics(t *testing.T) {
	srv := newServer(t, map[string]HealthCheck{
		"postgres": func(ctx context.Context) error { return nil },
	})

	rec := srv.do(t, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","postgres":"up"}`, rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	srv.do(t, http.MethodGet, "/api/v1/order", "", "")
	rec = srv.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `storefront_auth_outcomes_total{outcome="denied"} 1`)
	assert.Contains(t, rec.Body.String(), "storefront_http_requests_total")
}

func TestRouterHealthDegraded(t *testing.T) {
	srv := newServer(t, map[string]HealthCheck{
		"redis": func(ctx context.Context) error { return errors.New("connection refused") },
	})

	rec := srv.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","redis":"down"}`, rec.Body.String())
}

func TestRouterCORSPreflight(t *testing.T) {
	srv := newServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/product", nil)
	req.Header.Set("Origin", "http://localhost:4200")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:4200", rec.Header().Get("Access-Control-Allow-Origin"))
}
