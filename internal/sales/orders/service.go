package orders

import (
	"context"
	"strconv"

	"github.com/techshop/storefront/internal/masterdata/products"
	"github.com/techshop/storefront/internal/sales/shared"
	internalShared "github.com/techshop/storefront/internal/shared"
)

var ErrNoProducts = internalShared.NewError(internalShared.ErrBadRequest, "orders: no valid products", internalShared.MsgOrderEmpty)

// ProductLookup resolves product ids. Unknown ids are omitted.
type ProductLookup interface {
	FindByIDs(ctx context.Context, ids []int64) ([]products.Product, error)
}

type Service struct {
	repo     Repository
	products ProductLookup
}

func NewService(repo Repository, products ProductLookup) *Service {
	return &Service{repo: repo, products: products}
}

// Create places a PENDING order for the known products among productIDs.
func (s *Service) Create(ctx context.Context, userID int64, productIDs []int64) (Order, error) {
	return s.CreateWithKey(ctx, userID, productIDs, "")
}

// CreateWithKey is Create guarded by a client idempotency key. A key already
// used by the same user for a committed order is rejected; an empty key
// disables the check.
func (s *Service) CreateWithKey(ctx context.Context, userID int64, productIDs []int64, key string) (Order, error) {
	found, err := s.products.FindByIDs(ctx, productIDs)
	if err != nil {
		return Order{}, err
	}
	if len(found) == 0 {
		return Order{}, ErrNoProducts
	}

	ids := make([]int64, 0, len(found))
	prices := make([]float64, 0, len(found))
	for _, p := range found {
		ids = append(ids, p.ID)
		prices = append(prices, p.Price)
	}

	order := Order{
		UserID:      userID,
		ProductIDs:  ids,
		TotalAmount: shared.SumAmounts(prices...),
		Status:      OrderStatusPending,
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		if key != "" {
			if err := tx.ClaimIdempotencyKey(ctx, idempotencyScope(userID), key); err != nil {
				return err
			}
		}
		created, err := tx.Insert(ctx, order)
		if err != nil {
			return err
		}
		if err := tx.InsertProducts(ctx, created.ID, ids); err != nil {
			return err
		}
		order = created
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return order, nil
}

func (s *Service) ListMine(ctx context.Context, userID int64) ([]Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func idempotencyScope(userID int64) string {
	return "orders:" + strconv.FormatInt(userID, 10)
}
