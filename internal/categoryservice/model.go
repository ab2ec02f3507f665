package categoryservice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrDuplicateCategory = errors.New("category already exists")
)

func newCategoryModel(db *sql.DB) *CategoryModel {
	return &CategoryModel{db: db}
}

func uniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (m *CategoryModel) insert(ctx context.Context, c *Category) error {
	query := `
		INSERT INTO categories (name, slug)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := m.db.QueryRowContext(ctx, query, c.Name, c.Slug).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if uniqueViolation(err) {
			return ErrDuplicateCategory
		}
		return err
	}

	return nil
}

func (m *CategoryModel) getCategories(ctx context.Context) ([]Category, error) {
	query := `
		SELECT id, name, slug, created_at
		FROM categories
		ORDER BY name ASC`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

func (m *CategoryModel) getCategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	query := `
		SELECT id, name, slug, created_at
		FROM categories
		WHERE slug = $1`

	var c Category
	err := m.db.QueryRowContext(ctx, query, slug).Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &c, nil
}
