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

// ShipmentRepository implements ports.ShipmentRepository on PostgreSQL
type ShipmentRepository struct {
	pool ports.DBTX
}

// NewShipmentRepository creates a new shipment repository
func NewShipmentRepository(db ports.DBPort) *ShipmentRepository {
	return &ShipmentRepository{pool: db.GetDB()}
}

const shipmentColumns = `id, awb, courier_name, pickup_location_id, status,
	invoice_url, manifest_url, label_url, created_at, updated_at`

// Create inserts a new shipment
func (r *ShipmentRepository) Create(ctx context.Context, tx ports.DBTX, s *models.Shipment) error {
	q := executorOr(tx, r.pool)

	_, err := q.Exec(ctx, `
		INSERT INTO shipments (id, awb, courier_name, pickup_location_id, status,
			invoice_url, manifest_url, label_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.AWB, s.CourierName, s.PickupLocationID, s.Status,
		nullText(s.InvoiceURL), nullText(s.ManifestURL), nullText(s.LabelURL),
	)
	if err != nil {
		return fmt.Errorf("create shipment: %w", err)
	}
	return nil
}

// GetByID retrieves a shipment by its internal id
func (r *ShipmentRepository) GetByID(ctx context.Context, db ports.DBTX, id uuid.UUID) (*models.Shipment, error) {
	q := executorOr(db, r.pool)
	row := q.QueryRow(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE id = $1`, id)
	return scanShipment(row)
}

// GetByAWB retrieves a shipment by its carrier tracking number
func (r *ShipmentRepository) GetByAWB(ctx context.Context, db ports.DBTX, awb string) (*models.Shipment, error) {
	q := executorOr(db, r.pool)
	row := q.QueryRow(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE awb = $1`, awb)
	return scanShipment(row)
}

// UpdateStatus sets the shipment's courier status label
func (r *ShipmentRepository) UpdateStatus(ctx context.Context, tx ports.DBTX, id uuid.UUID, status string) error {
	q := executorOr(tx, r.pool)

	tag, err := q.Exec(ctx, `
		UPDATE shipments SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("update shipment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrShipmentNotFound
	}
	return nil
}

// UpdateDocuments sets the shipment's document URLs
func (r *ShipmentRepository) UpdateDocuments(ctx context.Context, tx ports.DBTX, id uuid.UUID, invoiceURL, manifestURL, labelURL string) error {
	q := executorOr(tx, r.pool)

	tag, err := q.Exec(ctx, `
		UPDATE shipments
		SET invoice_url = $2, manifest_url = $3, label_url = $4, updated_at = NOW()
		WHERE id = $1`,
		id, nullText(invoiceURL), nullText(manifestURL), nullText(labelURL),
	)
	if err != nil {
		return fmt.Errorf("update shipment documents: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrShipmentNotFound
	}
	return nil
}

func scanShipment(row pgx.Row) (*models.Shipment, error) {
	var s models.Shipment
	var invoiceURL, manifestURL, labelURL *string
	err := row.Scan(&s.ID, &s.AWB, &s.CourierName, &s.PickupLocationID, &s.Status,
		&invoiceURL, &manifestURL, &labelURL, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrShipmentNotFound
		}
		return nil, fmt.Errorf("scan shipment: %w", err)
	}
	if invoiceURL != nil {
		s.InvoiceURL = *invoiceURL
	}
	if manifestURL != nil {
		s.ManifestURL = *manifestURL
	}
	if labelURL != nil {
		s.LabelURL = *labelURL
	}
	return &s, nil
}
