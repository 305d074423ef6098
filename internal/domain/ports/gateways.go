package ports

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"
)

// HTTPClient abstracts the HTTP transport so adapters can be tested without a
// live endpoint
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// CreateShipmentRequest asks the courier to register a forward shipment
type CreateShipmentRequest struct {
	OrderID          string
	OrderDate        string
	PickupLocation   string
	CustomerName     string
	CustomerEmail    string
	CustomerPhone    string
	ShippingAddress  string
	ShippingCity     string
	ShippingState    string
	ShippingPincode  string
	PaymentMethod    string
	SubTotal         decimal.Decimal
	WeightKg         decimal.Decimal
	LengthCm         decimal.Decimal
	BreadthCm        decimal.Decimal
	HeightCm         decimal.Decimal
	Items            []ShipmentLineItem
}

// ShipmentLineItem is one SKU line on a courier order
type ShipmentLineItem struct {
	Name         string
	SKU          string
	Units        int32
	SellingPrice decimal.Decimal
}

// CreateShipmentResult carries the courier identifiers we persist
type CreateShipmentResult struct {
	ShipmentID  string
	OrderID     string
	AWB         string
	CourierName string
	Status      string
}

// TrackingScan is one checkpoint in a courier tracking history
type TrackingScan struct {
	Activity string
	Location string
	Date     string
}

// TrackingResult is the courier's current view of a shipment
type TrackingResult struct {
	AWB           string
	CurrentStatus string
	StatusCode    int32
	ETD           string
	Scans         []TrackingScan
}

// CourierGateway is the outbound port to the shipping aggregator
type CourierGateway interface {
	CreateShipment(ctx context.Context, req *CreateShipmentRequest) (*CreateShipmentResult, error)
	CancelShipment(ctx context.Context, awb string) error
	Track(ctx context.Context, awb string) (*TrackingResult, error)
	GenerateLabel(ctx context.Context, shipmentID string) (string, error)
}

// GatewayOrderResult is the payment gateway's order handle used by checkout
type GatewayOrderResult struct {
	OrderID  string
	Amount   decimal.Decimal
	Currency string
	Status   string
}

// RefundResult reports an initiated refund
type RefundResult struct {
	RefundID  string
	PaymentID string
	Amount    decimal.Decimal
	Status    string
}

// PaymentGateway is the outbound port to the payment processor. Refund state
// transitions arrive later over the webhook, not from these calls.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (*GatewayOrderResult, error)
	InitiateRefund(ctx context.Context, paymentID string, amount decimal.Decimal) (*RefundResult, error)
}
