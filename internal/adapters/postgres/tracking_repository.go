package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vendoria/commerce-service/internal/domain/models"
	"github.com/vendoria/commerce-service/internal/domain/ports"
)

// TrackingRepository implements ports.TrackingRepository on PostgreSQL.
// The tracking log is append-only; there are deliberately no update or delete
// methods here.
type TrackingRepository struct {
	pool ports.DBTX
}

// NewTrackingRepository creates a new tracking repository
func NewTrackingRepository(db ports.DBPort) *TrackingRepository {
	return &TrackingRepository{pool: db.GetDB()}
}

// Append inserts one tracking row per entry
func (r *TrackingRepository) Append(ctx context.Context, tx ports.DBTX, entries []*models.TrackingEntry) error {
	q := executorOr(tx, r.pool)

	for _, e := range entries {
		_, err := q.Exec(ctx, `
			INSERT INTO order_tracking (id, order_item_id, status, status_code, remarks)
			VALUES ($1, $2, $3, $4, $5)`,
			e.ID, e.OrderItemID, string(e.Status), e.StatusCode, e.Remarks,
		)
		if err != nil {
			return fmt.Errorf("append tracking entry: %w", err)
		}
	}
	return nil
}

// ListByOrderItem lists tracking rows for an item, oldest first
func (r *TrackingRepository) ListByOrderItem(ctx context.Context, db ports.DBTX, orderItemID uuid.UUID) ([]*models.TrackingEntry, error) {
	q := executorOr(db, r.pool)

	rows, err := q.Query(ctx, `
		SELECT id, order_item_id, status, status_code, remarks, created_at
		FROM order_tracking
		WHERE order_item_id = $1 ORDER BY created_at`, orderItemID)
	if err != nil {
		return nil, fmt.Errorf("list tracking entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.TrackingEntry
	for rows.Next() {
		var e models.TrackingEntry
		var status string
		if err := rows.Scan(&e.ID, &e.OrderItemID, &status, &e.StatusCode, &e.Remarks, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tracking entry: %w", err)
		}
		e.Status = models.OrderItemStatus(status)
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tracking entries: %w", err)
	}
	return entries, nil
}
