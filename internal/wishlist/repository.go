package wishlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/techshop/storefront/internal/masterdata/products"
	"github.com/techshop/storefront/internal/platform/db"
)

// Repository persists wishlists and their product sets.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	FindByUser(ctx context.Context, userID int64) (Wishlist, error)
	FindByShareToken(ctx context.Context, token string) (Wishlist, error)
	// Create inserts an empty wishlist unless the user already owns one.
	Create(ctx context.Context, userID int64, shareToken string) error
	ProductExists(ctx context.Context, productID int64) (bool, error)
	AddProduct(ctx context.Context, wishlistID, productID int64) error
	RemoveProduct(ctx context.Context, wishlistID, productID int64) error
	SetPublic(ctx context.Context, wishlistID int64, public bool, shareToken string) error
	Products(ctx context.Context, wishlistID int64) ([]products.Product, error)
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

const wishlistColumns = `id, user_id, is_public, share_token, created_at, updated_at`

func (r *repository) scanOne(ctx context.Context, where string, arg any) (Wishlist, error) {
	var w Wishlist
	err := r.db.QueryRow(ctx, `SELECT `+wishlistColumns+` FROM wishlists WHERE `+where+` = $1`, arg).
		Scan(&w.ID, &w.UserID, &w.IsPublic, &w.ShareToken, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wishlist{}, ErrNotFound
		}
		return Wishlist{}, fmt.Errorf("wishlist: find: %w", err)
	}
	return w, nil
}

func (r *repository) FindByUser(ctx context.Context, userID int64) (Wishlist, error) {
	return r.scanOne(ctx, "user_id", userID)
}

func (r *repository) FindByShareToken(ctx context.Context, token string) (Wishlist, error) {
	return r.scanOne(ctx, "share_token", token)
}

func (r *repository) Create(ctx context.Context, userID int64, shareToken string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO wishlists (user_id, share_token) VALUES ($1, $2)
		 ON CONFLICT ON CONSTRAINT uq_wishlists_user DO NOTHING`,
		userID, shareToken)
	if err != nil {
		return fmt.Errorf("wishlist: create: %w", err)
	}
	return nil
}

func (r *repository) ProductExists(ctx context.Context, productID int64) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM product WHERE id = $1)`, productID).Scan(&exists); err != nil {
		return false, fmt.Errorf("wishlist: product exists: %w", err)
	}
	return exists, nil
}

func (r *repository) AddProduct(ctx context.Context, wishlistID, productID int64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO wishlist_products (wishlist_id, product_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		wishlistID, productID)
	if err != nil {
		if db.IsForeignKeyViolation(err, "") {
			return ErrProductNotFound
		}
		return fmt.Errorf("wishlist: add product: %w", err)
	}
	return r.touch(ctx, wishlistID)
}

func (r *repository) RemoveProduct(ctx context.Context, wishlistID, productID int64) error {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM wishlist_products WHERE wishlist_id = $1 AND product_id = $2`,
		wishlistID, productID); err != nil {
		return fmt.Errorf("wishlist: remove product: %w", err)
	}
	return r.touch(ctx, wishlistID)
}

func (r *repository) SetPublic(ctx context.Context, wishlistID int64, public bool, shareToken string) error {
	if _, err := r.db.Exec(ctx,
		`UPDATE wishlists SET is_public = $2, share_token = $3, updated_at = now() WHERE id = $1`,
		wishlistID, public, shareToken); err != nil {
		return fmt.Errorf("wishlist: set public: %w", err)
	}
	return nil
}

func (r *repository) touch(ctx context.Context, wishlistID int64) error {
	if _, err := r.db.Exec(ctx, `UPDATE wishlists SET updated_at = now() WHERE id = $1`, wishlistID); err != nil {
		return fmt.Errorf("wishlist: touch: %w", err)
	}
	return nil
}

func (r *repository) Products(ctx context.Context, wishlistID int64) ([]products.Product, error) {
	rows, err := r.db.Query(ctx,
		`SELECT p.id, p.name, p.description, p.short_description, p.quantity, p.price, p.image, p.category_id
		   FROM wishlist_products wp
		   JOIN product p ON p.id = wp.product_id
		  WHERE wp.wishlist_id = $1
		  ORDER BY p.id`, wishlistID)
	if err != nil {
		return nil, fmt.Errorf("wishlist: products: %w", err)
	}
	defer rows.Close()

	items := []products.Product{}
	for rows.Next() {
		var p products.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.ShortDescription, &p.Quantity, &p.Price, &p.Image, &p.CategoryID); err != nil {
			return nil, fmt.Errorf("wishlist: scan product: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
