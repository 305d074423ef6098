package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vendoria/commerce-service/internal/domain"
	"github.com/vendoria/commerce-service/internal/domain/models"
	"github.com/vendoria/commerce-service/internal/domain/ports"
)

// CategoryRepository implements ports.CategoryRepository on PostgreSQL
type CategoryRepository struct {
	pool ports.DBTX
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db ports.DBPort) *CategoryRepository {
	return &CategoryRepository{pool: db.GetDB()}
}

// Create inserts a new category
func (r *CategoryRepository) Create(ctx context.Context, tx ports.DBTX, c *models.Category) error {
	q := executorOr(tx, r.pool)

	_, err := q.Exec(ctx, `
		INSERT INTO categories (id, parent_id, name, slug)
		VALUES ($1, $2, $3, $4)`,
		c.ID, nullUUID(c.ParentID), c.Name, c.Slug,
	)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// GetByID retrieves a category by id
func (r *CategoryRepository) GetByID(ctx context.Context, db ports.DBTX, id uuid.UUID) (*models.Category, error) {
	q := executorOr(db, r.pool)
	row := q.QueryRow(ctx, `
		SELECT id, parent_id, name, slug, created_at FROM categories WHERE id = $1`, id)
	return scanCategory(row)
}

// List lists all categories
func (r *CategoryRepository) List(ctx context.Context, db ports.DBTX) ([]*models.Category, error) {
	q := executorOr(db, r.pool)
	rows, err := q.Query(ctx, `
		SELECT id, parent_id, name, slug, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

// Delete removes a category
func (r *CategoryRepository) Delete(ctx context.Context, tx ports.DBTX, id uuid.UUID) error {
	q := executorOr(tx, r.pool)

	tag, err := q.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func scanCategory(row pgx.Row) (*models.Category, error) {
	var c models.Category
	var parentID pgtype.UUID

	err := row.Scan(&c.ID, &parentID, &c.Name, &c.Slug, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("scan category: %w", err)
	}
	c.ParentID = pgUUIDPtr(parentID)
	return &c, nil
}
