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

// PaymentRepository implements ports.PaymentRepository on PostgreSQL
type PaymentRepository struct {
	pool ports.DBTX
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db ports.DBPort) *PaymentRepository {
	return &PaymentRepository{pool: db.GetDB()}
}

// Create inserts a new payment record
func (r *PaymentRepository) Create(ctx context.Context, tx ports.DBTX, p *models.Payment) error {
	q := executorOr(tx, r.pool)

	amount, err := decimalToNumeric(p.Amount)
	if err != nil {
		return fmt.Errorf("convert amount: %w", err)
	}

	_, err = q.Exec(ctx, `
		INSERT INTO payments (id, order_id, gateway_order_id, transaction_id,
			amount, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.OrderID, nullText(p.GatewayOrderID), nullText(p.TransactionID),
		amount, p.Currency, p.Status,
	)
	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// GetByOrderID retrieves the payment attached to an order
func (r *PaymentRepository) GetByOrderID(ctx context.Context, db ports.DBTX, orderID uuid.UUID) (*models.Payment, error) {
	q := executorOr(db, r.pool)
	row := q.QueryRow(ctx, `
		SELECT id, order_id, gateway_order_id, transaction_id, amount, currency,
			status, created_at, updated_at
		FROM payments WHERE order_id = $1`, orderID)
	return scanPayment(row)
}

// GetByTransactionID retrieves a payment by gateway transaction id
func (r *PaymentRepository) GetByTransactionID(ctx context.Context, db ports.DBTX, transactionID string) (*models.Payment, error) {
	q := executorOr(db, r.pool)
	row := q.QueryRow(ctx, `
		SELECT id, order_id, gateway_order_id, transaction_id, amount, currency,
			status, created_at, updated_at
		FROM payments WHERE transaction_id = $1`, transactionID)
	return scanPayment(row)
}

// UpdateStatus sets payment status and, once known, the gateway transaction id
func (r *PaymentRepository) UpdateStatus(ctx context.Context, tx ports.DBTX, id uuid.UUID, status, transactionID string) error {
	q := executorOr(tx, r.pool)

	tag, err := q.Exec(ctx, `
		UPDATE payments
		SET status = $2, transaction_id = COALESCE($3, transaction_id), updated_at = NOW()
		WHERE id = $1`,
		id, status, nullText(transactionID),
	)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var p models.Payment
	var gatewayOrderID, transactionID *string
	var amount pgtype.Numeric

	err := row.Scan(&p.ID, &p.OrderID, &gatewayOrderID, &transactionID,
		&amount, &p.Currency, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}
	if gatewayOrderID != nil {
		p.GatewayOrderID = *gatewayOrderID
	}
	if transactionID != nil {
		p.TransactionID = *transactionID
	}
	if p.Amount, err = pgNumericToDecimal(amount); err != nil {
		return nil, fmt.Errorf("parse amount: %w", err)
	}
	return &p, nil
}
