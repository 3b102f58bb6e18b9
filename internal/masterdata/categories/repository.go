package categories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/techshop/storefront/internal/masterdata/shared"
	"github.com/techshop/storefront/internal/platform/db"
)

const nameConstraint = "uq_category_name"

type Repository interface {
	List(ctx context.Context) ([]Category, error)
	Get(ctx context.Context, id int64) (Category, error)
	Create(ctx context.Context, category Category) (Category, error)
}

type repository struct {
	q db.Querier
}

func NewRepository(q db.Querier) Repository {
	return &repository{q: q}
}

func (r *repository) List(ctx context.Context) ([]Category, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, description FROM category ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("categories: list: %w", err)
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Category, error) {
	var c Category
	err := r.q.QueryRow(ctx, `SELECT id, name, description FROM category WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, shared.NotFound("Category")
		}
		return Category{}, fmt.Errorf("categories: get: %w", err)
	}
	return c, nil
}

func (r *repository) Create(ctx context.Context, category Category) (Category, error) {
	var c Category
	err := r.q.QueryRow(ctx,
		`INSERT INTO category (name, description) VALUES ($1, $2) RETURNING id, name, description`,
		category.Name, category.Description).
		Scan(&c.ID, &c.Name, &c.Description)
	if err != nil {
		if db.IsUniqueViolation(err, nameConstraint) {
			return Category{}, shared.Duplicate("NAME")
		}
		return Category{}, fmt.Errorf("categories: create: %w", err)
	}
	return c, nil
}
