package wishlist

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Service manages wishlists. Every exported method runs in its own
// transaction and delegates to unexported units that take the transactional
// repository explicitly.
type Service struct {
	repo     Repository
	newToken func() string
}

// NewService constructs a wishlist service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, newToken: uuid.NewString}
}

// GetOrCreate returns userID's wishlist, creating an empty private one on
// first access.
func (s *Service) GetOrCreate(ctx context.Context, userID int64) (Wishlist, error) {
	var out Wishlist
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		w, err := s.getOrCreate(ctx, tx, userID)
		if err != nil {
			return err
		}
		out, err = s.load(ctx, tx, w)
		return err
	})
	return out, err
}

// Add puts productID in userID's wishlist. Adding a present product is a no-op.
func (s *Service) Add(ctx context.Context, userID, productID int64) (Wishlist, error) {
	return s.mutate(ctx, userID, productID, func(ctx context.Context, tx Repository, w Wishlist) error {
		return tx.AddProduct(ctx, w.ID, productID)
	})
}

// Remove takes productID out of userID's wishlist.
func (s *Service) Remove(ctx context.Context, userID, productID int64) (Wishlist, error) {
	return s.mutate(ctx, userID, productID, func(ctx context.Context, tx Repository, w Wishlist) error {
		return tx.RemoveProduct(ctx, w.ID, productID)
	})
}

// ToggleSharing flips the public flag of userID's wishlist.
func (s *Service) ToggleSharing(ctx context.Context, userID int64) (Wishlist, error) {
	var out Wishlist
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		w, err := s.getOrCreate(ctx, tx, userID)
		if err != nil {
			return err
		}
		w.IsPublic = !w.IsPublic
		if w.ShareToken == "" {
			w.ShareToken = s.newToken()
		}
		if err := tx.SetPublic(ctx, w.ID, w.IsPublic, w.ShareToken); err != nil {
			return err
		}
		out, err = s.load(ctx, tx, w)
		return err
	})
	return out, err
}

// Shared returns the wishlist behind token when its owner made it public.
func (s *Service) Shared(ctx context.Context, token string) (Wishlist, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Wishlist{}, ErrNotFound
	}
	w, err := s.repo.FindByShareToken(ctx, token)
	if err != nil {
		return Wishlist{}, err
	}
	if !w.IsPublic {
		return Wishlist{}, ErrPrivate
	}
	return s.load(ctx, s.repo, w)
}

func (s *Service) mutate(ctx context.Context, userID, productID int64, change func(context.Context, Repository, Wishlist) error) (Wishlist, error) {
	var out Wishlist
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		w, err := s.getOrCreate(ctx, tx, userID)
		if err != nil {
			return err
		}
		exists, err := tx.ProductExists(ctx, productID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrProductNotFound
		}
		if err := change(ctx, tx, w); err != nil {
			return err
		}
		out, err = s.load(ctx, tx, w)
		return err
	})
	return out, err
}

func (s *Service) getOrCreate(ctx context.Context, tx Repository, userID int64) (Wishlist, error) {
	w, err := tx.FindByUser(ctx, userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Wishlist{}, err
	}
	if err := tx.Create(ctx, userID, s.newToken()); err != nil {
		return Wishlist{}, err
	}
	return tx.FindByUser(ctx, userID)
}

func (s *Service) load(ctx context.Context, repo Repository, w Wishlist) (Wishlist, error) {
	items, err := repo.Products(ctx, w.ID)
	if err != nil {
		return Wishlist{}, err
	}
	w.Products = items
	return w, nil
}
