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

// OrderRepository implements ports.OrderRepository on PostgreSQL
type OrderRepository struct {
	pool ports.DBTX
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db ports.DBPort) *OrderRepository {
	return &OrderRepository{pool: db.GetDB()}
}

// Create inserts a new order
func (r *OrderRepository) Create(ctx context.Context, tx ports.DBTX, o *models.Order) error {
	q := executorOr(tx, r.pool)

	total, err := decimalToNumeric(o.TotalAmount)
	if err != nil {
		return fmt.Errorf("convert total: %w", err)
	}

	_, err = q.Exec(ctx, `
		INSERT INTO orders (id, user_id, status, total_amount, currency)
		VALUES ($1, $2, $3, $4, $5)`,
		o.ID, o.UserID, string(o.Status), total, o.Currency,
	)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

// GetByID retrieves an order by id
func (r *OrderRepository) GetByID(ctx context.Context, db ports.DBTX, id uuid.UUID) (*models.Order, error) {
	q := executorOr(db, r.pool)
	row := q.QueryRow(ctx, `
		SELECT id, user_id, status, total_amount, currency, created_at, updated_at
		FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

// ListByUser lists a user's orders with pagination, newest first
func (r *OrderRepository) ListByUser(ctx context.Context, db ports.DBTX, userID uuid.UUID, limit, offset int32) ([]*models.Order, error) {
	q := executorOr(db, r.pool)
	rows, err := q.Query(ctx, `
		SELECT id, user_id, status, total_amount, currency, created_at, updated_at
		FROM orders WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders by user: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus sets an order's status
func (r *OrderRepository) UpdateStatus(ctx context.Context, tx ports.DBTX, id uuid.UUID, status models.OrderStatus) error {
	q := executorOr(tx, r.pool)

	tag, err := q.Exec(ctx, `
		UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	var status string
	var total pgtype.Numeric

	err := row.Scan(&o.ID, &o.UserID, &status, &total, &o.Currency, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	o.Status = models.OrderStatus(status)
	if o.TotalAmount, err = pgNumericToDecimal(total); err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	return &o, nil
}
