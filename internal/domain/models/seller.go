package models

import (
	"time"

	"github.com/google/uuid"
)

// Seller is a merchant account selling through the storefront
type Seller struct {
	ID               uuid.UUID
	Name             string
	Email            string
	Phone            string
	PickupLocationID string
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
