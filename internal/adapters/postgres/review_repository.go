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

// ReviewRepository implements ports.ReviewRepository on PostgreSQL
type ReviewRepository struct {
	pool ports.DBTX
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db ports.DBPort) *ReviewRepository {
	return &ReviewRepository{pool: db.GetDB()}
}

// Create inserts a new review
func (r *ReviewRepository) Create(ctx context.Context, tx ports.DBTX, rev *models.Review) error {
	q := executorOr(tx, r.pool)

	_, err := q.Exec(ctx, `
		INSERT INTO reviews (id, product_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)`,
		rev.ID, rev.ProductID, rev.UserID, rev.Rating, rev.Comment,
	)
	if err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

// GetByID retrieves a review by id
func (r *ReviewRepository) GetByID(ctx context.Context, db ports.DBTX, id uuid.UUID) (*models.Review, error) {
	q := executorOr(db, r.pool)
	row := q.QueryRow(ctx, `
		SELECT id, product_id, user_id, rating, comment, created_at, updated_at
		FROM reviews WHERE id = $1`, id)
	return scanReview(row)
}

// ListByProduct lists a product's reviews with pagination, newest first
func (r *ReviewRepository) ListByProduct(ctx context.Context, db ports.DBTX, productID uuid.UUID, limit, offset int32) ([]*models.Review, error) {
	q := executorOr(db, r.pool)
	rows, err := q.Query(ctx, `
		SELECT id, product_id, user_id, rating, comment, created_at, updated_at
		FROM reviews WHERE product_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*models.Review
	for rows.Next() {
		rev, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return reviews, nil
}

// Update replaces a review's rating and comment
func (r *ReviewRepository) Update(ctx context.Context, tx ports.DBTX, rev *models.Review) error {
	q := executorOr(tx, r.pool)

	tag, err := q.Exec(ctx, `
		UPDATE reviews SET rating = $2, comment = $3, updated_at = NOW() WHERE id = $1`,
		rev.ID, rev.Rating, rev.Comment,
	)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

// Delete removes a review
func (r *ReviewRepository) Delete(ctx context.Context, tx ports.DBTX, id uuid.UUID) error {
	q := executorOr(tx, r.pool)

	tag, err := q.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

func scanReview(row pgx.Row) (*models.Review, error) {
	var rev models.Review
	err := row.Scan(&rev.ID, &rev.ProductID, &rev.UserID, &rev.Rating, &rev.Comment,
		&rev.CreatedAt, &rev.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}
	return &rev, nil
}
