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

// ProductRepository implements ports.ProductRepository on PostgreSQL
type ProductRepository struct {
	pool ports.DBTX
}

// NewProductRepository creates a new product repository
func NewProductRepository(db ports.DBPort) *ProductRepository {
	return &ProductRepository{pool: db.GetDB()}
}

const productColumns = `id, seller_id, category_id, name, slug, description,
	price, stock, is_active, created_at, updated_at`

// Create inserts a new product
func (r *ProductRepository) Create(ctx context.Context, tx ports.DBTX, p *models.Product) error {
	q := executorOr(tx, r.pool)

	price, err := decimalToNumeric(p.Price)
	if err != nil {
		return fmt.Errorf("convert price: %w", err)
	}

	_, err = q.Exec(ctx, `
		INSERT INTO products (id, seller_id, category_id, name, slug, description,
			price, stock, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.SellerID, p.CategoryID, p.Name, p.Slug, p.Description,
		price, p.Stock, p.IsActive,
	)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// GetByID retrieves a product by id
func (r *ProductRepository) GetByID(ctx context.Context, db ports.DBTX, id uuid.UUID) (*models.Product, error) {
	q := executorOr(db, r.pool)
	row := q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	return scanProduct(row)
}

// List lists active products, optionally filtered by category
func (r *ProductRepository) List(ctx context.Context, db ports.DBTX, categoryID *uuid.UUID, limit, offset int32) ([]*models.Product, error) {
	q := executorOr(db, r.pool)

	rows, err := q.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE is_active AND ($1::uuid IS NULL OR category_id = $1)
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		nullUUID(categoryID), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// Update replaces a product's mutable fields
func (r *ProductRepository) Update(ctx context.Context, tx ports.DBTX, p *models.Product) error {
	q := executorOr(tx, r.pool)

	price, err := decimalToNumeric(p.Price)
	if err != nil {
		return fmt.Errorf("convert price: %w", err)
	}

	tag, err := q.Exec(ctx, `
		UPDATE products
		SET category_id = $2, name = $3, slug = $4, description = $5,
			price = $6, stock = $7, is_active = $8, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.CategoryID, p.Name, p.Slug, p.Description, price, p.Stock, p.IsActive,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// AdjustStock changes stock by delta, failing if the result would go negative
func (r *ProductRepository) AdjustStock(ctx context.Context, tx ports.DBTX, id uuid.UUID, delta int32) error {
	q := executorOr(tx, r.pool)

	tag, err := q.Exec(ctx, `
		UPDATE products SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1 AND stock + $2 >= 0`,
		id, delta,
	)
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOutOfStock
	}
	return nil
}

// Delete removes a product
func (r *ProductRepository) Delete(ctx context.Context, tx ports.DBTX, id uuid.UUID) error {
	q := executorOr(tx, r.pool)

	tag, err := q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	var price pgtype.Numeric

	err := row.Scan(&p.ID, &p.SellerID, &p.CategoryID, &p.Name, &p.Slug,
		&p.Description, &price, &p.Stock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	if p.Price, err = pgNumericToDecimal(price); err != nil {
		return nil, fmt.Errorf("parse price: %w", err)
	}
	return &p, nil
}
