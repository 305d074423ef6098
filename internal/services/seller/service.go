package seller

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vendoria/commerce-service/internal/domain"
	"github.com/vendoria/commerce-service/internal/domain/models"
	"github.com/vendoria/commerce-service/internal/domain/ports"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Service manages seller accounts
type Service struct {
	db      ports.DBPort
	sellers ports.SellerRepository
	items   ports.OrderItemRepository
	logger  *zap.Logger
}

// NewService creates a seller service
func NewService(db ports.DBPort, sellers ports.SellerRepository, items ports.OrderItemRepository, logger *zap.Logger) *Service {
	return &Service{
		db:      db,
		sellers: sellers,
		items:   items,
		logger:  logger,
	}
}

// RegisterRequest carries a new seller account
type RegisterRequest struct {
	Name             string `validate:"required,max=200"`
	Email            string `validate:"required,email"`
	Phone            string `validate:"required,max=20"`
	PickupLocationID string `validate:"required"`
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.Seller, error) {
	if err := validate.Struct(req); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeValidationFailed, "invalid seller", err)
	}

	if existing, err := s.sellers.GetByEmail(ctx, nil, req.Email); err == nil && existing != nil {
		return nil, domain.NewDomainError(domain.ErrorCodeSellerExists, "seller already exists").WithDetail("email", req.Email)
	} else if err != nil && !domain.IsDomainError(err, domain.ErrorCodeSellerNotFound) {
		return nil, err
	}

	seller := &models.Seller{
		ID:               uuid.New(),
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		PickupLocationID: req.PickupLocationID,
		IsActive:         true,
	}
	if err := s.sellers.Create(ctx, nil, seller); err != nil {
		return nil, fmt.Errorf("create seller: %w", err)
	}

	s.logger.Info("Seller registered",
		zap.String("seller_id", seller.ID.String()),
		zap.String("email", seller.Email),
	)
	return seller, nil
}

func (s *Service) GetSeller(ctx context.Context, id uuid.UUID) (*models.Seller, error) {
	return s.sellers.GetByID(ctx, nil, id)
}

// UpdateRequest carries mutable seller fields; nil leaves a field as is
type UpdateRequest struct {
	Name             *string
	Phone            *string
	PickupLocationID *string
	IsActive         *bool
}

func (s *Service) UpdateSeller(ctx context.Context, id uuid.UUID, req UpdateRequest) (*models.Seller, error) {
	seller, err := s.sellers.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		seller.Name = *req.Name
	}
	if req.Phone != nil {
		seller.Phone = *req.Phone
	}
	if req.PickupLocationID != nil {
		seller.PickupLocationID = *req.PickupLocationID
	}
	if req.IsActive != nil {
		seller.IsActive = *req.IsActive
	}

	if err := s.sellers.Update(ctx, nil, seller); err != nil {
		return nil, fmt.Errorf("update seller: %w", err)
	}
	return seller, nil
}

// ListOrderItems returns the seller's slice of recent orders
func (s *Service) ListOrderItems(ctx context.Context, sellerID uuid.UUID, limit, offset int32) ([]*models.OrderItem, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if _, err := s.sellers.GetByID(ctx, nil, sellerID); err != nil {
		return nil, err
	}
	return s.items.ListBySeller(ctx, nil, sellerID, limit, offset)
}
