package order

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vendoria/commerce-service/internal/domain"
	"github.com/vendoria/commerce-service/internal/domain/models"
	"github.com/vendoria/commerce-service/internal/domain/ports"
	"github.com/vendoria/commerce-service/pkg/observability"
)

// Service places orders from carts and manages their payment records
type Service struct {
	db       ports.DBPort
	orders   ports.OrderRepository
	items    ports.OrderItemRepository
	payments ports.PaymentRepository
	carts    ports.CartRepository
	products ports.ProductRepository
	gateway  ports.PaymentGateway
	logger   *zap.Logger
}

// NewService creates an order service
func NewService(
	db ports.DBPort,
	orders ports.OrderRepository,
	items ports.OrderItemRepository,
	payments ports.PaymentRepository,
	carts ports.CartRepository,
	products ports.ProductRepository,
	gateway ports.PaymentGateway,
	logger *zap.Logger,
) *Service {
	return &Service{
		db:       db,
		orders:   orders,
		items:    items,
		payments: payments,
		carts:    carts,
		products: products,
		gateway:  gateway,
		logger:   logger,
	}
}

// Checkout turns the user's cart into a pending order. Stock is decremented
// and the cart cleared in the same transaction that writes the order; the
// gateway order is created after the local state commits.
func (s *Service) Checkout(ctx context.Context, userID uuid.UUID, currency string) (*models.Order, error) {
	cart, err := s.carts.GetOrCreateByUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, domain.NewDomainError(domain.ErrorCodeCartNotFound, "cart is empty")
	}

	order := &models.Order{
		ID:       uuid.New(),
		UserID:   userID,
		Status:   models.OrderPending,
		Currency: currency,
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		total := decimal.Zero
		orderItems := make([]*models.OrderItem, 0, len(cart.Items))
		for _, line := range cart.Items {
			product, err := s.products.GetByID(ctx, tx, line.ProductID)
			if err != nil {
				return err
			}
			if err := s.products.AdjustStock(ctx, tx, line.ProductID, -line.Quantity); err != nil {
				return err
			}
			lineTotal := line.Price.Mul(decimal.NewFromInt32(line.Quantity))
			total = total.Add(lineTotal)
			orderItems = append(orderItems, &models.OrderItem{
				ID:        uuid.New(),
				OrderID:   order.ID,
				SellerID:  product.SellerID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Price:     line.Price,
				Status:    models.ItemPending,
			})
		}

		order.TotalAmount = total
		if err := s.orders.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		for _, item := range orderItems {
			if err := s.items.Create(ctx, tx, item); err != nil {
				return fmt.Errorf("create order item: %w", err)
			}
		}
		return s.carts.Clear(ctx, tx, cart.ID)
	})
	observability.RecordCheckout(err)
	if err != nil {
		return nil, err
	}

	gwOrder, err := s.gateway.CreateOrder(ctx, order.TotalAmount, currency, order.ID.String())
	if err != nil {
		// The order stays pending; payment can be retried against it.
		s.logger.Error("Gateway order creation failed",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
		return order, nil
	}

	payment := &models.Payment{
		ID:             uuid.New(),
		OrderID:        order.ID,
		GatewayOrderID: gwOrder.OrderID,
		Amount:         order.TotalAmount,
		Currency:       currency,
		Status:         gwOrder.Status,
	}
	if err := s.payments.Create(ctx, nil, payment); err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("total", order.TotalAmount.String()),
		zap.String("gateway_order_id", gwOrder.OrderID),
	)
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.orders.GetByID(ctx, nil, id)
}

func (s *Service) ListOrders(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]*models.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.orders.ListByUser(ctx, nil, userID, limit, offset)
}

func (s *Service) ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]*models.OrderItem, error) {
	if _, err := s.orders.GetByID(ctx, nil, orderID); err != nil {
		return nil, err
	}
	return s.items.ListByOrder(ctx, nil, orderID)
}

// CancelOrder cancels an order that has not progressed past confirmation.
// Items are marked cancelled and their stock restored in the same transaction.
func (s *Service) CancelOrder(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orders.GetByID(ctx, nil, orderID)
	if err != nil {
		return err
	}
	if order.Status != models.OrderPending && order.Status != models.OrderConfirmed {
		return domain.NewDomainError(domain.ErrorCodeOrderInvalidState, "order can no longer be cancelled")
	}

	items, err := s.items.ListByOrder(ctx, nil, orderID)
	if err != nil {
		return err
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		for _, item := range items {
			if item.Status != models.ItemPending {
				return domain.NewDomainError(domain.ErrorCodeOrderInvalidState, "order has items already in transit")
			}
			if err := s.items.UpdateStatus(ctx, tx, item.ID, models.ItemCancelled); err != nil {
				return err
			}
			if err := s.products.AdjustStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return s.orders.UpdateStatus(ctx, tx, orderID, models.OrderCancelled)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Order cancelled", zap.String("order_id", orderID.String()))
	return nil
}

// ConfirmPayment records the gateway transaction id after a successful
// capture. The transaction id is what later refund webhooks correlate on.
func (s *Service) ConfirmPayment(ctx context.Context, orderID uuid.UUID, transactionID string) error {
	payment, err := s.payments.GetByOrderID(ctx, nil, orderID)
	if err != nil {
		return err
	}

	return s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.payments.UpdateStatus(ctx, tx, payment.ID, "captured", transactionID); err != nil {
			return err
		}
		return s.orders.UpdateStatus(ctx, tx, orderID, models.OrderConfirmed)
	})
}

// RequestRefund initiates a refund for a single order item through the
// gateway and stores the returned refund id on the item. The refund's
// terminal state lands asynchronously over the webhook.
func (s *Service) RequestRefund(ctx context.Context, orderItemID uuid.UUID) (*models.OrderItem, error) {
	item, err := s.items.GetByID(ctx, nil, orderItemID)
	if err != nil {
		return nil, err
	}
	if item.IsRefunded {
		return nil, domain.NewDomainError(domain.ErrorCodeRefundConflict, "order item is already refunded")
	}

	payment, err := s.payments.GetByOrderID(ctx, nil, item.OrderID)
	if err != nil {
		return nil, err
	}
	if payment.TransactionID == "" {
		return nil, domain.NewDomainError(domain.ErrorCodeOrderInvalidState, "order payment is not captured")
	}

	amount := item.Price.Mul(decimal.NewFromInt32(item.Quantity))
	refund, err := s.gateway.InitiateRefund(ctx, payment.TransactionID, amount)
	if err != nil {
		return nil, fmt.Errorf("initiate refund: %w", err)
	}

	upd := models.RefundUpdate{
		RefundID:       refund.RefundID,
		RefundStatus:   refund.Status,
		IsRefunded:     refund.Status == models.RefundStatusProcessed,
		RefundedAmount: refund.Amount,
	}
	if err := s.items.UpdateRefund(ctx, nil, item.ID, upd); err != nil {
		return nil, fmt.Errorf("store refund id: %w", err)
	}

	s.logger.Info("Refund requested",
		zap.String("order_item_id", item.ID.String()),
		zap.String("refund_id", refund.RefundID),
		zap.String("amount", amount.String()),
	)
	return s.items.GetByID(ctx, nil, orderItemID)
}
