package reviews

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"

	"github.com/techshop/storefront/internal/auth"
	"github.com/techshop/storefront/internal/shared"
)

// sharedRefreshTimeout bounds a rating computation shared by collapsed
// callers. It runs detached from the leader's cancellation.
const sharedRefreshTimeout = 5 * time.Second

// RefreshEnqueuer schedules an asynchronous rating recomputation.
type RefreshEnqueuer interface {
	EnqueueRatingRefresh(ctx context.Context, productID int64) error
}

// Service implements review business rules.
type Service struct {
	repo     Repository
	cache    *RatingCache
	enqueuer RefreshEnqueuer
	logger   *slog.Logger
	group    singleflight.Group
}

// NewService wires the review service. cache and enqueuer may be nil.
func NewService(repo Repository, cache *RatingCache, enqueuer RefreshEnqueuer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, enqueuer: enqueuer, logger: logger}
}

// Add records author's review of productID. Each user may review a product
// once.
func (s *Service) Add(ctx context.Context, author *auth.Identity, productID int64, rating int, comment string) (Review, error) {
	if author == nil {
		return Review{}, auth.ErrNotAuthenticated
	}
	if rating < MinRating || rating > MaxRating {
		return Review{}, ErrInvalidRating
	}
	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) > MaxCommentLength {
		return Review{}, shared.NewError(shared.ErrValidation, "reviews: comment too long", shared.MsgValidation)
	}

	var created Review
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		exists, err := tx.ProductExists(ctx, productID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrProductNotFound
		}
		reviewed, err := tx.Exists(ctx, author.ID, productID)
		if err != nil {
			return err
		}
		if reviewed {
			return ErrAlreadyReviewed
		}
		purchased, err := tx.HasPurchased(ctx, author.ID, productID)
		if err != nil {
			return err
		}
		created, err = tx.Insert(ctx, Review{
			ProductID:          productID,
			UserID:             author.ID,
			Rating:             rating,
			Comment:            comment,
			IsVerifiedPurchase: purchased,
		})
		return err
	})
	if err != nil {
		return Review{}, err
	}
	created.UserName = author.Name

	s.ratingChanged(ctx, productID)
	return created, nil
}

// List returns one page of productID's reviews, newest first.
func (s *Service) List(ctx context.Context, productID int64, page shared.PageRequest) (shared.Page[ReviewView], error) {
	reviews, total, err := s.repo.ListByProduct(ctx, productID, page)
	if err != nil {
		return shared.Page[ReviewView]{}, err
	}
	views := make([]ReviewView, 0, len(reviews))
	for _, r := range reviews {
		views = append(views, r.View())
	}
	return shared.NewPage(views, page, total), nil
}

// AverageRating serves the cached rating, computing it on a miss. Concurrent
// misses for the same product share one query.
func (s *Service) AverageRating(ctx context.Context, productID int64) (Rating, error) {
	if cached, ok, err := s.cache.Get(ctx, productID); err != nil {
		s.logger.Warn("rating cache read", slog.Int64("product_id", productID), slog.Any("error", err))
	} else if ok {
		return cached, nil
	}
	v, err, _ := s.group.Do(strconv.FormatInt(productID, 10), func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedRefreshTimeout)
		defer cancel()
		return s.RefreshRating(ctx, productID)
	})
	if err != nil {
		return Rating{}, err
	}
	return v.(Rating), nil
}

// RefreshRating recomputes productID's rating and stores it in the cache.
func (s *Service) RefreshRating(ctx context.Context, productID int64) (Rating, error) {
	avg, count, err := s.repo.Aggregate(ctx, productID)
	if err != nil {
		return Rating{}, err
	}
	rating := Rating{Average: roundRating(avg), Count: count}
	if err := s.cache.Set(ctx, productID, rating); err != nil {
		s.logger.Warn("rating cache write", slog.Int64("product_id", productID), slog.Any("error", err))
	}
	return rating, nil
}

// MarkHelpful increments the helpful counter of reviewID.
func (s *Service) MarkHelpful(ctx context.Context, reviewID int64) error {
	return s.repo.IncrementHelpful(ctx, reviewID)
}

func (s *Service) ratingChanged(ctx context.Context, productID int64) {
	if err := s.cache.Invalidate(ctx, productID); err != nil {
		s.logger.Warn("rating cache invalidate", slog.Int64("product_id", productID), slog.Any("error", err))
	}
	if s.enqueuer == nil {
		return
	}
	if err := s.enqueuer.EnqueueRatingRefresh(ctx, productID); err != nil {
		s.logger.Warn("enqueue rating refresh", slog.Int64("product_id", productID), slog.Any("error", err))
	}
}

func roundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}
