package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/vendoria/commerce-service/internal/domain/models"
)

// ShipmentRepository persists courier shipments. Methods accepting a DBTX run
// against the given transaction when non-nil, otherwise against the pool.
type ShipmentRepository interface {
	Create(ctx context.Context, tx DBTX, shipment *models.Shipment) error
	GetByID(ctx context.Context, db DBTX, id uuid.UUID) (*models.Shipment, error)
	GetByAWB(ctx context.Context, db DBTX, awb string) (*models.Shipment, error)
	UpdateStatus(ctx context.Context, tx DBTX, id uuid.UUID, status string) error
	UpdateDocuments(ctx context.Context, tx DBTX, id uuid.UUID, invoiceURL, manifestURL, labelURL string) error
}

// OrderItemRepository persists order items and their refund state
type OrderItemRepository interface {
	Create(ctx context.Context, tx DBTX, item *models.OrderItem) error
	GetByID(ctx context.Context, db DBTX, id uuid.UUID) (*models.OrderItem, error)
	ListByOrder(ctx context.Context, db DBTX, orderID uuid.UUID) ([]*models.OrderItem, error)
	ListBySeller(ctx context.Context, db DBTX, sellerID uuid.UUID, limit, offset int32) ([]*models.OrderItem, error)
	ListByShipment(ctx context.Context, db DBTX, shipmentID uuid.UUID) ([]*models.OrderItem, error)

	// UpdateStatusByShipment fans a shipment-level status change out to every
	// item referencing the shipment. Returns the number of rows updated.
	UpdateStatusByShipment(ctx context.Context, tx DBTX, shipmentID uuid.UUID, status models.OrderItemStatus, statusCode int32) (int64, error)
	UpdateStatus(ctx context.Context, tx DBTX, id uuid.UUID, status models.OrderItemStatus) error
	AssignShipment(ctx context.Context, tx DBTX, id, shipmentID uuid.UUID) error

	// GetByRefundID finds the item carrying a gateway refund id
	GetByRefundID(ctx context.Context, db DBTX, refundID string) (*models.OrderItem, error)
	// GetByPaymentTransactionID finds the first item of the order whose payment
	// carries the given gateway transaction id
	GetByPaymentTransactionID(ctx context.Context, db DBTX, transactionID string) (*models.OrderItem, error)
	UpdateRefund(ctx context.Context, tx DBTX, id uuid.UUID, upd models.RefundUpdate) error
}

// TrackingRepository appends to the immutable order tracking log
type TrackingRepository interface {
	Append(ctx context.Context, tx DBTX, entries []*models.TrackingEntry) error
	ListByOrderItem(ctx context.Context, db DBTX, orderItemID uuid.UUID) ([]*models.TrackingEntry, error)
}

// OrderRepository persists orders
type OrderRepository interface {
	Create(ctx context.Context, tx DBTX, order *models.Order) error
	GetByID(ctx context.Context, db DBTX, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, db DBTX, userID uuid.UUID, limit, offset int32) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, tx DBTX, id uuid.UUID, status models.OrderStatus) error
}

// PaymentRepository persists gateway payment records
type PaymentRepository interface {
	Create(ctx context.Context, tx DBTX, payment *models.Payment) error
	GetByOrderID(ctx context.Context, db DBTX, orderID uuid.UUID) (*models.Payment, error)
	GetByTransactionID(ctx context.Context, db DBTX, transactionID string) (*models.Payment, error)
	UpdateStatus(ctx context.Context, tx DBTX, id uuid.UUID, status, transactionID string) error
}

// ProductRepository persists catalog products
type ProductRepository interface {
	Create(ctx context.Context, tx DBTX, product *models.Product) error
	GetByID(ctx context.Context, db DBTX, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, db DBTX, categoryID *uuid.UUID, limit, offset int32) ([]*models.Product, error)
	Update(ctx context.Context, tx DBTX, product *models.Product) error
	AdjustStock(ctx context.Context, tx DBTX, id uuid.UUID, delta int32) error
	Delete(ctx context.Context, tx DBTX, id uuid.UUID) error
}

// CategoryRepository persists catalog categories
type CategoryRepository interface {
	Create(ctx context.Context, tx DBTX, category *models.Category) error
	GetByID(ctx context.Context, db DBTX, id uuid.UUID) (*models.Category, error)
	List(ctx context.Context, db DBTX) ([]*models.Category, error)
	Delete(ctx context.Context, tx DBTX, id uuid.UUID) error
}

// ReviewRepository persists product reviews
type ReviewRepository interface {
	Create(ctx context.Context, tx DBTX, review *models.Review) error
	GetByID(ctx context.Context, db DBTX, id uuid.UUID) (*models.Review, error)
	ListByProduct(ctx context.Context, db DBTX, productID uuid.UUID, limit, offset int32) ([]*models.Review, error)
	Update(ctx context.Context, tx DBTX, review *models.Review) error
	Delete(ctx context.Context, tx DBTX, id uuid.UUID) error
}

// CartRepository persists carts, cart items, and wishlists
type CartRepository interface {
	GetOrCreateByUser(ctx context.Context, tx DBTX, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, tx DBTX, item *models.CartItem) error
	UpdateItemQuantity(ctx context.Context, tx DBTX, itemID uuid.UUID, quantity int32) error
	RemoveItem(ctx context.Context, tx DBTX, itemID uuid.UUID) error
	Clear(ctx context.Context, tx DBTX, cartID uuid.UUID) error

	AddWishlistItem(ctx context.Context, tx DBTX, item *models.WishlistItem) error
	RemoveWishlistItem(ctx context.Context, tx DBTX, userID, productID uuid.UUID) error
	ListWishlist(ctx context.Context, db DBTX, userID uuid.UUID) ([]*models.WishlistItem, error)
}

// SellerRepository persists seller accounts
type SellerRepository interface {
	Create(ctx context.Context, tx DBTX, seller *models.Seller) error
	GetByID(ctx context.Context, db DBTX, id uuid.UUID) (*models.Seller, error)
	GetByEmail(ctx context.Context, db DBTX, email string) (*models.Seller, error)
	Update(ctx context.Context, tx DBTX, seller *models.Seller) error
}
