package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vendoria/commerce-service/internal/domain"
	"github.com/vendoria/commerce-service/internal/domain/models"
	"github.com/vendoria/commerce-service/internal/domain/ports"
)

// Service manages carts and wishlists
type Service struct {
	db       ports.DBPort
	carts    ports.CartRepository
	products ports.ProductRepository
	logger   *zap.Logger
}

// NewService creates a cart service
func NewService(db ports.DBPort, carts ports.CartRepository, products ports.ProductRepository, logger *zap.Logger) *Service {
	return &Service{
		db:       db,
		carts:    carts,
		products: products,
		logger:   logger,
	}
}

// GetCart returns the user's cart, creating an empty one on first access
func (s *Service) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	return s.carts.GetOrCreateByUser(ctx, nil, userID)
}

// AddItem puts a product in the user's cart at its current listed price. The
// price is snapshotted here so later catalog edits do not reprice the cart.
func (s *Service) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int32) (*models.Cart, error) {
	if quantity <= 0 {
		return nil, domain.NewDomainError(domain.ErrorCodeValidationFailed, "quantity must be positive")
	}

	product, err := s.products.GetByID(ctx, nil, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, domain.NewDomainError(domain.ErrorCodeProductNotFound, "product is not available")
	}
	if product.Stock < quantity {
		return nil, domain.NewDomainError(domain.ErrorCodeOutOfStock, "insufficient stock").WithDetail("available", product.Stock)
	}

	cart, err := s.carts.GetOrCreateByUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	item := &models.CartItem{
		ID:        uuid.New(),
		CartID:    cart.ID,
		ProductID: productID,
		Quantity:  quantity,
		Price:     product.Price,
	}
	if err := s.carts.AddItem(ctx, nil, item); err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}

	return s.carts.GetOrCreateByUser(ctx, nil, userID)
}

// UpdateItemQuantity changes a cart line; zero removes it
func (s *Service) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int32) (*models.Cart, error) {
	if quantity < 0 {
		return nil, domain.NewDomainError(domain.ErrorCodeValidationFailed, "quantity cannot be negative")
	}
	if quantity == 0 {
		if err := s.carts.RemoveItem(ctx, nil, itemID); err != nil {
			return nil, err
		}
	} else if err := s.carts.UpdateItemQuantity(ctx, nil, itemID, quantity); err != nil {
		return nil, err
	}
	return s.carts.GetOrCreateByUser(ctx, nil, userID)
}

func (s *Service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Cart, error) {
	if err := s.carts.RemoveItem(ctx, nil, itemID); err != nil {
		return nil, err
	}
	return s.carts.GetOrCreateByUser(ctx, nil, userID)
}

func (s *Service) ClearCart(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.carts.GetOrCreateByUser(ctx, nil, userID)
	if err != nil {
		return err
	}
	return s.carts.Clear(ctx, nil, cart.ID)
}

func (s *Service) AddToWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	if _, err := s.products.GetByID(ctx, nil, productID); err != nil {
		return err
	}
	item := &models.WishlistItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
	}
	return s.carts.AddWishlistItem(ctx, nil, item)
}

func (s *Service) RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	return s.carts.RemoveWishlistItem(ctx, nil, userID, productID)
}

func (s *Service) ListWishlist(ctx context.Context, userID uuid.UUID) ([]*models.WishlistItem, error) {
	return s.carts.ListWishlist(ctx, nil, userID)
}
