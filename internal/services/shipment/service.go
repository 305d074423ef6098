package shipment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vendoria/commerce-service/internal/courier"
	"github.com/vendoria/commerce-service/internal/domain"
	"github.com/vendoria/commerce-service/internal/domain/models"
	"github.com/vendoria/commerce-service/internal/domain/ports"
)

// Service creates and manages courier shipments for order items
type Service struct {
	db        ports.DBPort
	shipments ports.ShipmentRepository
	items     ports.OrderItemRepository
	orders    ports.OrderRepository
	tracking  ports.TrackingRepository
	sellers   ports.SellerRepository
	products  ports.ProductRepository
	courier   ports.CourierGateway
	logger    *zap.Logger
}

// NewService creates a shipment service
func NewService(
	db ports.DBPort,
	shipments ports.ShipmentRepository,
	items ports.OrderItemRepository,
	orders ports.OrderRepository,
	tracking ports.TrackingRepository,
	sellers ports.SellerRepository,
	products ports.ProductRepository,
	courier ports.CourierGateway,
	logger *zap.Logger,
) *Service {
	return &Service{
		db:        db,
		shipments: shipments,
		items:     items,
		orders:    orders,
		tracking:  tracking,
		sellers:   sellers,
		products:  products,
		courier:   courier,
		logger:    logger,
	}
}

// CreateShipmentRequest groups one seller's pending items of an order into a
// single consignment
type CreateShipmentRequest struct {
	OrderID      uuid.UUID
	SellerID     uuid.UUID
	CustomerName string
	Email        string
	Phone        string
	Address      string
	City         string
	State        string
	Pincode      string
	WeightKg     decimal.Decimal
}

// CreateShipment registers the consignment with the courier and binds the
// returned AWB to the seller's pending items of the order.
func (s *Service) CreateShipment(ctx context.Context, req CreateShipmentRequest) (*models.Shipment, error) {
	order, err := s.orders.GetByID(ctx, nil, req.OrderID)
	if err != nil {
		return nil, err
	}
	seller, err := s.sellers.GetByID(ctx, nil, req.SellerID)
	if err != nil {
		return nil, err
	}

	all, err := s.items.ListByOrder(ctx, nil, req.OrderID)
	if err != nil {
		return nil, err
	}
	var pending []*models.OrderItem
	for _, item := range all {
		if item.SellerID == req.SellerID && item.Status == models.ItemPending && item.ShipmentID == nil {
			pending = append(pending, item)
		}
	}
	if len(pending) == 0 {
		return nil, domain.NewDomainError(domain.ErrorCodeOrderInvalidState, "no unshipped items for this seller")
	}

	lines := make([]ports.ShipmentLineItem, 0, len(pending))
	subTotal := decimal.Zero
	for _, item := range pending {
		product, err := s.products.GetByID(ctx, nil, item.ProductID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, ports.ShipmentLineItem{
			Name:         product.Name,
			SKU:          product.Slug,
			Units:        item.Quantity,
			SellingPrice: item.Price,
		})
		subTotal = subTotal.Add(item.Price.Mul(decimal.NewFromInt32(item.Quantity)))
	}

	result, err := s.courier.CreateShipment(ctx, &ports.CreateShipmentRequest{
		OrderID:         order.ID.String(),
		OrderDate:       time.Now().Format("2006-01-02"),
		PickupLocation:  seller.PickupLocationID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.Email,
		CustomerPhone:   req.Phone,
		ShippingAddress: req.Address,
		ShippingCity:    req.City,
		ShippingState:   req.State,
		ShippingPincode: req.Pincode,
		PaymentMethod:   "prepaid",
		SubTotal:        subTotal,
		WeightKg:        req.WeightKg,
		Items:           lines,
	})
	if err != nil {
		return nil, fmt.Errorf("register courier shipment: %w", err)
	}

	shipment := &models.Shipment{
		ID:               uuid.New(),
		AWB:              result.AWB,
		CourierName:      result.CourierName,
		PickupLocationID: seller.PickupLocationID,
		Status:           result.Status,
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.shipments.Create(ctx, tx, shipment); err != nil {
			return fmt.Errorf("create shipment: %w", err)
		}
		for _, item := range pending {
			if err := s.items.AssignShipment(ctx, tx, item.ID, shipment.ID); err != nil {
				return fmt.Errorf("assign shipment to item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Shipment created",
		zap.String("shipment_id", shipment.ID.String()),
		zap.String("awb", shipment.AWB),
		zap.String("order_id", order.ID.String()),
		zap.Int("items", len(pending)),
	)
	return shipment, nil
}

func (s *Service) GetShipment(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	return s.shipments.GetByID(ctx, nil, id)
}

// CancelShipment cancels the consignment with the courier, then applies the
// table's cancelled mapping locally with the same fan-out and tracking append
// as a courier webhook would.
func (s *Service) CancelShipment(ctx context.Context, id uuid.UUID) error {
	shipment, err := s.shipments.GetByID(ctx, nil, id)
	if err != nil {
		return err
	}

	if err := s.courier.CancelShipment(ctx, shipment.AWB); err != nil {
		return err
	}

	mapping, _ := courier.Resolve(courier.CodeCancelled)
	return s.applyStatus(ctx, id, mapping, "cancelled by seller")
}

// applyStatus writes a status mapping through the shipment, its order items,
// and the tracking log in one transaction, matching webhook reconciliation.
func (s *Service) applyStatus(ctx context.Context, shipmentID uuid.UUID, mapping courier.StatusMapping, remarks string) error {
	return s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.shipments.UpdateStatus(ctx, tx, shipmentID, mapping.ShipmentStatus); err != nil {
			return err
		}
		if _, err := s.items.UpdateStatusByShipment(ctx, tx, shipmentID, mapping.ItemStatus, mapping.Code); err != nil {
			return err
		}

		items, err := s.items.ListByShipment(ctx, tx, shipmentID)
		if err != nil {
			return err
		}
		entries := make([]*models.TrackingEntry, 0, len(items))
		for _, item := range items {
			entries = append(entries, &models.TrackingEntry{
				ID:          uuid.New(),
				OrderItemID: item.ID,
				Status:      item.Status,
				StatusCode:  mapping.Code,
				Remarks:     remarks,
			})
		}
		return s.tracking.Append(ctx, tx, entries)
	})
}

// UpdateStatus lets a seller correct a shipment's status by courier status
// code, for deliveries the webhook missed. The fan-out mirrors webhook
// reconciliation so the shipment, its items, and the tracking log stay
// consistent.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, statusCode int32) (*models.Shipment, error) {
	mapping, ok := courier.Resolve(statusCode)
	if !ok {
		return nil, domain.NewDomainError(domain.ErrorCodeValidationFailed, "unrecognized status code").
			WithDetail("status_code", statusCode)
	}

	shipment, err := s.shipments.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	if err := s.applyStatus(ctx, shipment.ID, mapping, "manual seller update"); err != nil {
		return nil, fmt.Errorf("update shipment status: %w", err)
	}

	shipment.Status = mapping.ShipmentStatus
	return shipment, nil
}

// Track proxies a live courier tracking lookup by AWB
func (s *Service) Track(ctx context.Context, awb string) (*ports.TrackingResult, error) {
	if _, err := s.shipments.GetByAWB(ctx, nil, awb); err != nil {
		return nil, err
	}
	return s.courier.Track(ctx, awb)
}

// TrackingHistory returns the locally recorded tracking log of an order item
func (s *Service) TrackingHistory(ctx context.Context, orderItemID uuid.UUID) ([]*models.TrackingEntry, error) {
	if _, err := s.items.GetByID(ctx, nil, orderItemID); err != nil {
		return nil, err
	}
	return s.tracking.ListByOrderItem(ctx, nil, orderItemID)
}

// GenerateLabel fetches a label from the courier and stores its URL
func (s *Service) GenerateLabel(ctx context.Context, id uuid.UUID) (string, error) {
	shipment, err := s.shipments.GetByID(ctx, nil, id)
	if err != nil {
		return "", err
	}

	labelURL, err := s.courier.GenerateLabel(ctx, shipment.ID.String())
	if err != nil {
		return "", err
	}

	if err := s.shipments.UpdateDocuments(ctx, nil, id, shipment.InvoiceURL, shipment.ManifestURL, labelURL); err != nil {
		return "", fmt.Errorf("store label url: %w", err)
	}
	return labelURL, nil
}
