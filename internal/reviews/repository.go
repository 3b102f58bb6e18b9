package reviews

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/techshop/storefront/internal/platform/db"
	"github.com/techshop/storefront/internal/shared"
)

const userProductConstraint = "uq_reviews_user_product"

// Repository persists product reviews.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	ProductExists(ctx context.Context, productID int64) (bool, error)
	Exists(ctx context.Context, userID, productID int64) (bool, error)
	HasPurchased(ctx context.Context, userID, productID int64) (bool, error)
	Insert(ctx context.Context, review Review) (Review, error)
	ListByProduct(ctx context.Context, productID int64, page shared.PageRequest) ([]Review, int, error)
	// Aggregate returns the raw average rating and review count.
	Aggregate(ctx context.Context, productID int64) (float64, int, error)
	IncrementHelpful(ctx context.Context, reviewID int64) error
}

type repository struct {
	db   db.Querier
	pool db.TxBeginner
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool db.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) ProductExists(ctx context.Context, productID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM product WHERE id = $1)`, productID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("reviews: product exists: %w", err)
	}
	return exists, nil
}

func (r *repository) Exists(ctx context.Context, userID, productID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM product_reviews WHERE user_id = $1 AND product_id = $2)`,
		userID, productID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("reviews: exists: %w", err)
	}
	return exists, nil
}

func (r *repository) HasPurchased(ctx context.Context, userID, productID int64) (bool, error) {
	var purchased bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM customer_order o
		   JOIN order_products op ON op.order_id = o.id
		  WHERE o.user_id = $1 AND op.product_id = $2 AND o.status <> 'CANCELLED')`,
		userID, productID).Scan(&purchased)
	if err != nil {
		return false, fmt.Errorf("reviews: has purchased: %w", err)
	}
	return purchased, nil
}

func (r *repository) Insert(ctx context.Context, review Review) (Review, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO product_reviews (product_id, user_id, rating, comment, is_verified_purchase)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, helpful_count, created_at`,
		review.ProductID, review.UserID, review.Rating, review.Comment, review.IsVerifiedPurchase).
		Scan(&review.ID, &review.HelpfulCount, &review.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err, userProductConstraint) {
			return Review{}, ErrAlreadyReviewed
		}
		return Review{}, fmt.Errorf("reviews: insert: %w", err)
	}
	return review, nil
}

func (r *repository) ListByProduct(ctx context.Context, productID int64, page shared.PageRequest) ([]Review, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM product_reviews WHERE product_id = $1`, productID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("reviews: count: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT pr.id, pr.product_id, pr.user_id, u.name, pr.rating, COALESCE(pr.comment, ''),
		        pr.is_verified_purchase, pr.helpful_count, pr.created_at, pr.updated_at
		   FROM product_reviews pr
		   JOIN users u ON u.id = pr.user_id
		  WHERE pr.product_id = $1
		  ORDER BY pr.created_at DESC, pr.id DESC
		  LIMIT $2 OFFSET $3`,
		productID, page.Size, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("reviews: list: %w", err)
	}
	defer rows.Close()

	reviews := []Review{}
	for rows.Next() {
		var rv Review
		if err := rows.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.UserName, &rv.Rating, &rv.Comment,
			&rv.IsVerifiedPurchase, &rv.HelpfulCount, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("reviews: scan: %w", err)
		}
		reviews = append(reviews, rv)
	}
	return reviews, total, rows.Err()
}

func (r *repository) Aggregate(ctx context.Context, productID int64) (float64, int, error) {
	var (
		avg   *float64
		count int
	)
	err := r.db.QueryRow(ctx,
		`SELECT AVG(rating)::float8, COUNT(*) FROM product_reviews WHERE product_id = $1`,
		productID).Scan(&avg, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("reviews: aggregate: %w", err)
	}
	if avg == nil {
		return 0, 0, nil
	}
	return *avg, count, nil
}

func (r *repository) IncrementHelpful(ctx context.Context, reviewID int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE product_reviews SET helpful_count = helpful_count + 1, updated_at = now() WHERE id = $1`,
		reviewID)
	if err != nil {
		return fmt.Errorf("reviews: increment helpful: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReviewNotFound
	}
	return nil
}
