package reconciliation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/vendoria/commerce-service/internal/courier"
	"github.com/vendoria/commerce-service/internal/domain"
	"github.com/vendoria/commerce-service/internal/domain/models"
	"github.com/vendoria/commerce-service/internal/domain/ports"
)

// Service reconciles internal order/shipment state against courier and
// payment gateway webhook events.
type Service struct {
	db        ports.DBPort
	shipments ports.ShipmentRepository
	items     ports.OrderItemRepository
	tracking  ports.TrackingRepository
	logger    *zap.Logger
}

// NewService creates a reconciliation service
func NewService(
	db ports.DBPort,
	shipments ports.ShipmentRepository,
	items ports.OrderItemRepository,
	tracking ports.TrackingRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		db:        db,
		shipments: shipments,
		items:     items,
		tracking:  tracking,
		logger:    logger,
	}
}

// ReconcileTracking applies a courier tracking webhook: resolve the status
// code, find the shipment by AWB, then in one transaction update the
// shipment, fan the status out to its order items, and append one tracking
// row per item.
//
// Replaying the same event overwrites the same status fields but appends
// tracking rows again; the log has no dedup key.
func (s *Service) ReconcileTracking(ctx context.Context, upd *courier.TrackingUpdate) (Result, error) {
	mapping, ok := courier.Resolve(upd.CurrentStatusID)
	if !ok {
		s.logger.Warn("Unrecognized courier status code",
			zap.Int32("status_code", upd.CurrentStatusID),
			zap.String("awb", upd.AWB),
		)
		return Result{Outcome: OutcomeUnrecognizedCode}, nil
	}

	shipment, err := s.shipments.GetByAWB(ctx, nil, upd.AWB)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrorCodeShipmentNotFound) {
			s.logger.Warn("Tracking webhook for unknown AWB",
				zap.String("awb", upd.AWB),
				zap.Int32("status_code", upd.CurrentStatusID),
			)
			return Result{Outcome: OutcomeUnknownReference}, nil
		}
		return Result{}, fmt.Errorf("look up shipment by awb: %w", err)
	}

	var itemsUpdated int64
	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.shipments.UpdateStatus(ctx, tx, shipment.ID, mapping.ShipmentStatus); err != nil {
			return fmt.Errorf("update shipment status: %w", err)
		}

		n, err := s.items.UpdateStatusByShipment(ctx, tx, shipment.ID, mapping.ItemStatus, mapping.Code)
		if err != nil {
			return fmt.Errorf("fan out item status: %w", err)
		}
		itemsUpdated = n

		// Re-read the updated items so the tracking log records exactly what
		// was written.
		items, err := s.items.ListByShipment(ctx, tx, shipment.ID)
		if err != nil {
			return fmt.Errorf("re-read order items: %w", err)
		}

		entries := make([]*models.TrackingEntry, 0, len(items))
		for _, item := range items {
			entries = append(entries, &models.TrackingEntry{
				ID:          uuid.New(),
				OrderItemID: item.ID,
				Status:      item.Status,
				StatusCode:  mapping.Code,
				Remarks:     string(item.Status),
			})
		}
		if err := s.tracking.Append(ctx, tx, entries); err != nil {
			return fmt.Errorf("append tracking entries: %w", err)
		}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("reconcile tracking for awb %s: %w", upd.AWB, err)
	}

	s.logger.Info("Tracking webhook reconciled",
		zap.String("awb", upd.AWB),
		zap.String("shipment_id", shipment.ID.String()),
		zap.Int32("status_code", mapping.Code),
		zap.String("shipment_status", mapping.ShipmentStatus),
		zap.Int64("items_updated", itemsUpdated),
	)

	return Result{Outcome: OutcomeApplied, ItemsUpdated: int(itemsUpdated)}, nil
}
