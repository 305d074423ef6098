package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the state of an order as a whole
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderItemStatus is the lifecycle of a single order item.
// Courier webhooks move items forward; cancellation can happen at any point
// before delivery.
type OrderItemStatus string

const (
	ItemPending        OrderItemStatus = "pending"
	ItemShipped        OrderItemStatus = "shipped"
	ItemOutForDelivery OrderItemStatus = "outForDelivery"
	ItemDelivered      OrderItemStatus = "delivered"
	ItemCancelled      OrderItemStatus = "cancelled"
)

// RefundStatusProcessed is the gateway's terminal refund status. IsRefunded is
// true iff the latest known refund status equals this string.
const RefundStatusProcessed = "processed"

// Order is a customer purchase spanning one or more sellers
type Order struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Status      OrderStatus
	TotalAmount decimal.Decimal
	Currency    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OrderItem is the per-seller unit of an order and the fan-out target of
// shipment status changes.
type OrderItem struct {
	ID             uuid.UUID
	OrderID        uuid.UUID
	SellerID       uuid.UUID
	ProductID      uuid.UUID
	ShipmentID     *uuid.UUID
	Quantity       int32
	Price          decimal.Decimal
	Status         OrderItemStatus
	StatusCode     *int32 // last recognized courier code, kept for audit
	RefundID       string
	RefundStatus   string
	IsRefunded     bool
	RefundedAmount decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RefundUpdate carries the refund fields applied to an order item during
// payment-webhook reconciliation.
type RefundUpdate struct {
	RefundID       string
	RefundStatus   string
	IsRefunded     bool
	RefundedAmount decimal.Decimal
}

// Payment records the gateway-side identity of an order's payment. The
// transaction ID correlates inbound refund webhooks when no refund ID matches.
type Payment struct {
	ID             uuid.UUID
	OrderID        uuid.UUID
	GatewayOrderID string
	TransactionID  string
	Amount         decimal.Decimal
	Currency       string
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
