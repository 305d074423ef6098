package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable catalog entry owned by a seller
type Product struct {
	ID          uuid.UUID
	SellerID    uuid.UUID
	CategoryID  uuid.UUID
	Name        string
	Slug        string
	Description string
	Price       decimal.Decimal
	Stock       int32
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Category groups products; a nil ParentID marks a top-level category
type Category struct {
	ID        uuid.UUID
	ParentID  *uuid.UUID
	Name      string
	Slug      string
	CreatedAt time.Time
}

// Review is a customer rating for a product
type Review struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	UserID    uuid.UUID
	Rating    int32 // 1..5
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
