package products

import (
	"context"

	"github.com/techshop/storefront/internal/masterdata/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) (ProductPage, error) {
	list, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return ProductPage{}, err
	}
	return ProductPage{Total: total, List: list}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

// FindByIDs resolves ids to distinct products ordered by id. Unknown ids
// are omitted.
func (s *Service) FindByIDs(ctx context.Context, ids []int64) ([]Product, error) {
	unique := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id <= 0 {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return s.repo.FindByIDs(ctx, unique)
}

func (s *Service) Create(ctx context.Context, product Product) (Product, error) {
	product = normalize(product)
	if err := s.validate(product); err != nil {
		return Product{}, err
	}
	return s.repo.Create(ctx, product)
}
