package orders

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techshop/storefront/internal/auth"
	"github.com/techshop/storefront/internal/masterdata/products"
	internalShared "github.com/techshop/storefront/internal/shared"
)

type stubProducts struct {
	items map[int64]products.Product
}

func (s stubProducts) FindByIDs(ctx context.Context, ids []int64) ([]products.Product, error) {
	var out []products.Product
	seen := map[int64]bool{}
	for _, id := range ids {
		if p, ok := s.items[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, p)
		}
	}
	return out, nil
}

type memRepo struct {
	orders    []Order
	keys      map[string]bool
	committed bool
	failLines error
}

func (m *memRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	staged := &memRepo{orders: append([]Order(nil), m.orders...), keys: map[string]bool{}, failLines: m.failLines}
	for k := range m.keys {
		staged.keys[k] = true
	}
	if err := fn(ctx, staged); err != nil {
		return err
	}
	m.orders = staged.orders
	m.keys = staged.keys
	m.committed = true
	return nil
}

func (m *memRepo) ClaimIdempotencyKey(ctx context.Context, scope, key string) error {
	if m.keys[scope+"|"+key] {
		return internalShared.ErrIdempotencyConflict
	}
	m.keys[scope+"|"+key] = true
	return nil
}

func (m *memRepo) Insert(ctx context.Context, order Order) (Order, error) {
	order.ID = int64(len(m.orders) + 1)
	order.CreatedAt = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return order, nil
}

func (m *memRepo) InsertProducts(ctx context.Context, orderID int64, productIDs []int64) error {
	if m.failLines != nil {
		return m.failLines
	}
	m.orders = append(m.orders, Order{ID: orderID, ProductIDs: productIDs})
	return nil
}

func (m *memRepo) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	return m.orders, nil
}

func catalog() stubProducts {
	return stubProducts{items: map[int64]products.Product{
		1: {ID: 1, Price: 799.99},
		2: {ID: 2, Price: 699},
	}}
}

func TestCreateOrderTotals(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo, catalog())

	order, err := svc.Create(context.Background(), 7, []int64{1, 2, 99})
	require.NoError(t, err)
	assert.Equal(t, 1498.99, order.TotalAmount)
	assert.Equal(t, OrderStatusPending, order.Status)
	assert.Equal(t, []int64{1, 2}, order.ProductIDs)
	assert.Equal(t, int64(7), order.UserID)
	assert.True(t, repo.committed)
}

func TestCreateOrderWithoutKnownProducts(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo, catalog())

	_, err := svc.Create(context.Background(), 7, []int64{42})
	assert.ErrorIs(t, err, ErrNoProducts)
	_, err = svc.Create(context.Background(), 7, nil)
	assert.ErrorIs(t, err, ErrNoProducts)
	assert.False(t, repo.committed)
}

func TestCreateOrderRollsBackOnLineFailure(t *testing.T) {
	boom := errors.New("fk violation")
	repo := &memRepo{failLines: boom}
	svc := NewService(repo, catalog())

	_, err := svc.Create(context.Background(), 7, []int64{1})
	assert.ErrorIs(t, err, boom)
	assert.False(t, repo.committed)
	assert.Empty(t, repo.orders)
}

func TestCreateOrderIdempotencyKey(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo, catalog())
	ctx := context.Background()

	_, err := svc.CreateWithKey(ctx, 7, []int64{1}, "checkout-1")
	require.NoError(t, err)
	_, err = svc.CreateWithKey(ctx, 7, []int64{1}, "checkout-1")
	assert.ErrorIs(t, err, internalShared.ErrIdempotencyConflict)
	_, err = svc.CreateWithKey(ctx, 8, []int64{1}, "checkout-1")
	require.NoError(t, err)
	assert.Len(t, repo.orders, 2)
}

func TestFailedOrderReleasesIdempotencyKey(t *testing.T) {
	repo := &memRepo{failLines: errors.New("fk violation")}
	svc := NewService(repo, catalog())
	ctx := context.Background()

	_, err := svc.CreateWithKey(ctx, 7, []int64{1}, "checkout-2")
	require.Error(t, err)

	repo.failLines = nil
	_, err = svc.CreateWithKey(ctx, 7, []int64{1}, "checkout-2")
	assert.NoError(t, err)
}

func TestOrderHandler(t *testing.T) {
	repo := &memRepo{}
	r := chi.NewRouter()
	r.Route("/api/v1/order", NewHandler(nil, NewService(repo, catalog())).MountRoutes)
	caller := &auth.Caller{Identity: &auth.Identity{ID: 7, Email: "alice@test.com"}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/order", strings.NewReader(`[1, 2]`))
	req = req.WithContext(auth.ContextWithCaller(req.Context(), caller))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.NumberOfProducts)
	assert.Equal(t, 1498.99, resp.TotalAmount)
	assert.Equal(t, OrderStatusPending, resp.Status)

	for i, want := range []int{http.StatusCreated, http.StatusBadRequest} {
		req = httptest.NewRequest(http.MethodPost, "/api/v1/order", strings.NewReader(`[1]`))
		req.Header.Set(internalShared.IdempotencyHeader, "retry-me")
		req = req.WithContext(auth.ContextWithCaller(req.Context(), caller))
		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, "attempt %d", i)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/order", strings.NewReader(`{"ids":[1]}`))
	req = req.WithContext(auth.ContextWithCaller(req.Context(), caller))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/order", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
