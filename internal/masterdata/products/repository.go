package products

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/techshop/storefront/internal/masterdata/shared"
	"github.com/techshop/storefront/internal/platform/db"
)

const productColumns = `id, name, description, short_description, quantity, price, image, category_id`

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	FindByIDs(ctx context.Context, ids []int64) ([]Product, error)
	Create(ctx context.Context, product Product) (Product, error)
}

type repository struct {
	q db.Querier
}

func NewRepository(q db.Querier) Repository {
	return &repository{q: q}
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.ShortDescription, &p.Quantity, &p.Price, &p.Image, &p.CategoryID)
	return p, err
}

func collect(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()
	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// List uses a dynamic query; search is a case-insensitive name match.
func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	where := ` WHERE 1=1`
	args := []any{}

	if filters.CategoryID != nil {
		args = append(args, *filters.CategoryID)
		where += ` AND category_id = $` + strconv.Itoa(len(args))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		where += ` AND name ILIKE $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM product`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("products: count: %w", err)
	}

	query := `SELECT ` + productColumns + ` FROM product` + where + ` ORDER BY id`
	args = append(args, filters.Page.Size)
	query += ` LIMIT $` + strconv.Itoa(len(args))
	args = append(args, filters.Page.Offset())
	query += ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("products: list: %w", err)
	}
	products, err := collect(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("products: scan: %w", err)
	}
	return products, total, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM product WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, shared.NotFound("Product")
		}
		return Product{}, fmt.Errorf("products: get: %w", err)
	}
	return p, nil
}

// FindByIDs returns the distinct products whose id is in ids, by id.
func (r *repository) FindByIDs(ctx context.Context, ids []int64) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM product WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("products: find by ids: %w", err)
	}
	return collect(rows)
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx,
		`INSERT INTO product (name, description, short_description, quantity, price, image, category_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+productColumns,
		product.Name, product.Description, product.ShortDescription, product.Quantity, product.Price, product.Image, product.CategoryID))
	if err != nil {
		if db.IsForeignKeyViolation(err, "") {
			return Product{}, shared.NotFound("Category")
		}
		return Product{}, fmt.Errorf("products: create: %w", err)
	}
	return p, nil
}
