package models

import (
	"time"

	"github.com/google/uuid"
)

// Shipment is a courier consignment identified internally by ID and externally
// by the carrier-assigned AWB.
type Shipment struct {
	ID               uuid.UUID
	AWB              string
	CourierName      string
	PickupLocationID string
	Status           string // courier status label, e.g. "Delivered"
	InvoiceURL       string
	ManifestURL      string
	LabelURL         string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TrackingEntry is an immutable append-only log row capturing an order item's
// status at the time of a reconciliation event. Entries are never updated or
// deleted.
type TrackingEntry struct {
	ID          uuid.UUID
	OrderItemID uuid.UUID
	Status      OrderItemStatus
	StatusCode  int32
	Remarks     string
	CreatedAt   time.Time
}
