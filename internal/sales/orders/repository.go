package orders

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/techshop/storefront/internal/platform/db"
	"github.com/techshop/storefront/internal/shared"
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Insert(ctx context.Context, order Order) (Order, error)
	InsertProducts(ctx context.Context, orderID int64, productIDs []int64) error
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
	ClaimIdempotencyKey(ctx context.Context, scope, key string) error
}

type repository struct {
	db   db.Querier
	pool db.TxBeginner
}

func NewRepository(pool db.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) Insert(ctx context.Context, order Order) (Order, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO customer_order (user_id, total_amount, status)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		order.UserID, order.TotalAmount, string(order.Status)).
		Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return Order{}, fmt.Errorf("orders: insert: %w", err)
	}
	return order, nil
}

func (r *repository) InsertProducts(ctx context.Context, orderID int64, productIDs []int64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO order_products (order_id, product_id, position)
		 SELECT $1, t.product_id, t.ord - 1
		   FROM unnest($2::bigint[]) WITH ORDINALITY AS t(product_id, ord)`,
		orderID, productIDs)
	if err != nil {
		return fmt.Errorf("orders: insert products: %w", err)
	}
	return nil
}

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	rows, err := r.db.Query(ctx,
		`SELECT o.id, o.user_id, o.total_amount, o.status, o.created_at,
		        COALESCE(array_agg(op.product_id ORDER BY op.position) FILTER (WHERE op.product_id IS NOT NULL), '{}')
		   FROM customer_order o
		   LEFT JOIN order_products op ON op.order_id = o.id
		  WHERE o.user_id = $1
		  GROUP BY o.id
		  ORDER BY o.created_at DESC, o.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("orders: list: %w", err)
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		var (
			o      Order
			status string
		)
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalAmount, &status, &o.CreatedAt, &o.ProductIDs); err != nil {
			return nil, fmt.Errorf("orders: scan: %w", err)
		}
		o.Status = OrderStatus(status)
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *repository) ClaimIdempotencyKey(ctx context.Context, scope, key string) error {
	return shared.NewIdempotencyStore(r.db).Claim(ctx, scope, key)
}
