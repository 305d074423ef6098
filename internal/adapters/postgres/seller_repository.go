package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vendoria/commerce-service/internal/domain"
	"github.com/vendoria/commerce-service/internal/domain/models"
	"github.com/vendoria/commerce-service/internal/domain/ports"
)

// SellerRepository implements ports.SellerRepository on PostgreSQL
type SellerRepository struct {
	pool ports.DBTX
}

// NewSellerRepository creates a new seller repository
func NewSellerRepository(db ports.DBPort) *SellerRepository {
	return &SellerRepository{pool: db.GetDB()}
}

// Create inserts a new seller
func (r *SellerRepository) Create(ctx context.Context, tx ports.DBTX, s *models.Seller) error {
	q := executorOr(tx, r.pool)

	_, err := q.Exec(ctx, `
		INSERT INTO sellers (id, name, email, phone, pickup_location_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.Name, s.Email, s.Phone, s.PickupLocationID, s.IsActive,
	)
	if err != nil {
		return fmt.Errorf("create seller: %w", err)
	}
	return nil
}

// GetByID retrieves a seller by id
func (r *SellerRepository) GetByID(ctx context.Context, db ports.DBTX, id uuid.UUID) (*models.Seller, error) {
	q := executorOr(db, r.pool)
	row := q.QueryRow(ctx, `
		SELECT id, name, email, phone, pickup_location_id, is_active, created_at, updated_at
		FROM sellers WHERE id = $1`, id)
	return scanSeller(row)
}

// GetByEmail retrieves a seller by email
func (r *SellerRepository) GetByEmail(ctx context.Context, db ports.DBTX, email string) (*models.Seller, error) {
	q := executorOr(db, r.pool)
	row := q.QueryRow(ctx, `
		SELECT id, name, email, phone, pickup_location_id, is_active, created_at, updated_at
		FROM sellers WHERE email = $1`, email)
	return scanSeller(row)
}

// Update replaces a seller's mutable fields
func (r *SellerRepository) Update(ctx context.Context, tx ports.DBTX, s *models.Seller) error {
	q := executorOr(tx, r.pool)

	tag, err := q.Exec(ctx, `
		UPDATE sellers
		SET name = $2, phone = $3, pickup_location_id = $4, is_active = $5, updated_at = NOW()
		WHERE id = $1`,
		s.ID, s.Name, s.Phone, s.PickupLocationID, s.IsActive,
	)
	if err != nil {
		return fmt.Errorf("update seller: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSellerNotFound
	}
	return nil
}

func scanSeller(row pgx.Row) (*models.Seller, error) {
	var s models.Seller
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.PickupLocationID,
		&s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSellerNotFound
		}
		return nil, fmt.Errorf("scan seller: %w", err)
	}
	return &s, nil
}
