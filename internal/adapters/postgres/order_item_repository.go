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

// OrderItemRepository implements ports.OrderItemRepository on PostgreSQL
type OrderItemRepository struct {
	pool ports.DBTX
}

// NewOrderItemRepository creates a new order item repository
func NewOrderItemRepository(db ports.DBPort) *OrderItemRepository {
	return &OrderItemRepository{pool: db.GetDB()}
}

const orderItemColumns = `id, order_id, seller_id, product_id, shipment_id,
	quantity, price, status, status_code, refund_id, refund_status, is_refunded,
	refunded_amount, created_at, updated_at`

// Create inserts a new order item
func (r *OrderItemRepository) Create(ctx context.Context, tx ports.DBTX, item *models.OrderItem) error {
	q := executorOr(tx, r.pool)

	price, err := decimalToNumeric(item.Price)
	if err != nil {
		return fmt.Errorf("convert price: %w", err)
	}

	_, err = q.Exec(ctx, `
		INSERT INTO order_items (id, order_id, seller_id, product_id, shipment_id,
			quantity, price, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		item.ID, item.OrderID, item.SellerID, item.ProductID, nullUUID(item.ShipmentID),
		item.Quantity, price, string(item.Status),
	)
	if err != nil {
		return fmt.Errorf("create order item: %w", err)
	}
	return nil
}

// GetByID retrieves an order item by id
func (r *OrderItemRepository) GetByID(ctx context.Context, db ports.DBTX, id uuid.UUID) (*models.OrderItem, error) {
	q := executorOr(db, r.pool)
	row := q.QueryRow(ctx, `SELECT `+orderItemColumns+` FROM order_items WHERE id = $1`, id)
	return scanOrderItem(row)
}

// ListByOrder lists all items of an order
func (r *OrderItemRepository) ListByOrder(ctx context.Context, db ports.DBTX, orderID uuid.UUID) ([]*models.OrderItem, error) {
	q := executorOr(db, r.pool)
	rows, err := q.Query(ctx, `
		SELECT `+orderItemColumns+` FROM order_items
		WHERE order_id = $1 ORDER BY created_at`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items by order: %w", err)
	}
	defer rows.Close()
	return collectOrderItems(rows)
}

// ListBySeller lists a seller's order items with pagination
func (r *OrderItemRepository) ListBySeller(ctx context.Context, db ports.DBTX, sellerID uuid.UUID, limit, offset int32) ([]*models.OrderItem, error) {
	q := executorOr(db, r.pool)
	rows, err := q.Query(ctx, `
		SELECT `+orderItemColumns+` FROM order_items
		WHERE seller_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		sellerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list order items by seller: %w", err)
	}
	defer rows.Close()
	return collectOrderItems(rows)
}

// ListByShipment lists all items attached to a shipment
func (r *OrderItemRepository) ListByShipment(ctx context.Context, db ports.DBTX, shipmentID uuid.UUID) ([]*models.OrderItem, error) {
	q := executorOr(db, r.pool)
	rows, err := q.Query(ctx, `
		SELECT `+orderItemColumns+` FROM order_items
		WHERE shipment_id = $1 ORDER BY created_at`, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("list order items by shipment: %w", err)
	}
	defer rows.Close()
	return collectOrderItems(rows)
}

// UpdateStatusByShipment fans a shipment status change out to every item of
// the shipment in a single statement. statusCode is the raw courier code.
func (r *OrderItemRepository) UpdateStatusByShipment(ctx context.Context, tx ports.DBTX, shipmentID uuid.UUID, status models.OrderItemStatus, statusCode int32) (int64, error) {
	q := executorOr(tx, r.pool)

	tag, err := q.Exec(ctx, `
		UPDATE order_items
		SET status = $2, status_code = $3, updated_at = NOW()
		WHERE shipment_id = $1`,
		shipmentID, string(status), statusCode,
	)
	if err != nil {
		return 0, fmt.Errorf("fan out item status: %w", err)
	}
	return tag.RowsAffected(), nil
}

// UpdateStatus sets a single item's status
func (r *OrderItemRepository) UpdateStatus(ctx context.Context, tx ports.DBTX, id uuid.UUID, status models.OrderItemStatus) error {
	q := executorOr(tx, r.pool)

	tag, err := q.Exec(ctx, `
		UPDATE order_items SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return fmt.Errorf("update item status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderItemNotFound
	}
	return nil
}

// AssignShipment attaches an item to a shipment
func (r *OrderItemRepository) AssignShipment(ctx context.Context, tx ports.DBTX, id, shipmentID uuid.UUID) error {
	q := executorOr(tx, r.pool)

	tag, err := q.Exec(ctx, `
		UPDATE order_items SET shipment_id = $2, updated_at = NOW() WHERE id = $1`,
		id, shipmentID,
	)
	if err != nil {
		return fmt.Errorf("assign shipment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderItemNotFound
	}
	return nil
}

// GetByRefundID finds the item carrying a gateway refund id
func (r *OrderItemRepository) GetByRefundID(ctx context.Context, db ports.DBTX, refundID string) (*models.OrderItem, error) {
	q := executorOr(db, r.pool)
	row := q.QueryRow(ctx, `
		SELECT `+orderItemColumns+` FROM order_items
		WHERE refund_id = $1 ORDER BY created_at LIMIT 1`, refundID)
	return scanOrderItem(row)
}

// GetByPaymentTransactionID finds the first item of the order whose payment
// carries the given gateway transaction id. Multi-item orders share one
// payment; first match wins, matching the refund reconciler's contract.
func (r *OrderItemRepository) GetByPaymentTransactionID(ctx context.Context, db ports.DBTX, transactionID string) (*models.OrderItem, error) {
	q := executorOr(db, r.pool)
	row := q.QueryRow(ctx, `
		SELECT `+orderItemColumnsPrefixed("oi")+`
		FROM order_items oi
		JOIN payments p ON p.order_id = oi.order_id
		WHERE p.transaction_id = $1
		ORDER BY oi.created_at LIMIT 1`, transactionID)
	return scanOrderItem(row)
}

// UpdateRefund applies reconciled refund state to an order item
func (r *OrderItemRepository) UpdateRefund(ctx context.Context, tx ports.DBTX, id uuid.UUID, upd models.RefundUpdate) error {
	q := executorOr(tx, r.pool)

	amount, err := decimalToNumeric(upd.RefundedAmount)
	if err != nil {
		return fmt.Errorf("convert refunded amount: %w", err)
	}

	tag, err := q.Exec(ctx, `
		UPDATE order_items
		SET refund_id = $2, refund_status = $3, is_refunded = $4,
			refunded_amount = $5, updated_at = NOW()
		WHERE id = $1`,
		id, upd.RefundID, upd.RefundStatus, upd.IsRefunded, amount,
	)
	if err != nil {
		return fmt.Errorf("update item refund: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderItemNotFound
	}
	return nil
}

func orderItemColumnsPrefixed(alias string) string {
	return alias + `.id, ` + alias + `.order_id, ` + alias + `.seller_id, ` +
		alias + `.product_id, ` + alias + `.shipment_id, ` + alias + `.quantity, ` +
		alias + `.price, ` + alias + `.status, ` + alias + `.status_code, ` +
		alias + `.refund_id, ` + alias + `.refund_status, ` + alias + `.is_refunded, ` +
		alias + `.refunded_amount, ` + alias + `.created_at, ` + alias + `.updated_at`
}

func scanOrderItem(row pgx.Row) (*models.OrderItem, error) {
	var item models.OrderItem
	var shipmentID pgtype.UUID
	var statusCode pgtype.Int4
	var status string
	var refundID, refundStatus *string
	var price, refundedAmount pgtype.Numeric

	err := row.Scan(&item.ID, &item.OrderID, &item.SellerID, &item.ProductID,
		&shipmentID, &item.Quantity, &price, &status, &statusCode,
		&refundID, &refundStatus, &item.IsRefunded, &refundedAmount,
		&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderItemNotFound
		}
		return nil, fmt.Errorf("scan order item: %w", err)
	}

	item.ShipmentID = pgUUIDPtr(shipmentID)
	item.StatusCode = pgInt4Ptr(statusCode)
	item.Status = models.OrderItemStatus(status)
	if refundID != nil {
		item.RefundID = *refundID
	}
	if refundStatus != nil {
		item.RefundStatus = *refundStatus
	}
	if item.Price, err = pgNumericToDecimal(price); err != nil {
		return nil, fmt.Errorf("parse price: %w", err)
	}
	if item.RefundedAmount, err = pgNumericToDecimal(refundedAmount); err != nil {
		return nil, fmt.Errorf("parse refunded amount: %w", err)
	}
	return &item, nil
}

func collectOrderItems(rows pgx.Rows) ([]*models.OrderItem, error) {
	var items []*models.OrderItem
	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return items, nil
}
