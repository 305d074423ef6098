package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vendoria/commerce-service/internal/domain"
	"github.com/vendoria/commerce-service/internal/domain/models"
	"github.com/vendoria/commerce-service/internal/domain/ports"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Service manages products, categories, and reviews
type Service struct {
	db         ports.DBPort
	products   ports.ProductRepository
	categories ports.CategoryRepository
	reviews    ports.ReviewRepository
	logger     *zap.Logger
}

// NewService creates a catalog service
func NewService(
	db ports.DBPort,
	products ports.ProductRepository,
	categories ports.CategoryRepository,
	reviews ports.ReviewRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		db:         db,
		products:   products,
		categories: categories,
		reviews:    reviews,
		logger:     logger,
	}
}

// CreateProductRequest carries a new product listing
type CreateProductRequest struct {
	SellerID    uuid.UUID       `validate:"required"`
	CategoryID  uuid.UUID       `validate:"required"`
	Name        string          `validate:"required,max=200"`
	Description string          `validate:"max=5000"`
	Price       decimal.Decimal `validate:"required"`
	Stock       int32           `validate:"gte=0"`
}

func (s *Service) CreateProduct(ctx context.Context, req CreateProductRequest) (*models.Product, error) {
	if err := validate.Struct(req); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeValidationFailed, "invalid product", err)
	}
	if req.Price.IsNegative() || req.Price.IsZero() {
		return nil, domain.NewDomainError(domain.ErrorCodeValidationFailed, "price must be positive")
	}

	if _, err := s.categories.GetByID(ctx, nil, req.CategoryID); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:          uuid.New(),
		SellerID:    req.SellerID,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Slug:        slugify(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		IsActive:    true,
	}
	if err := s.products.Create(ctx, nil, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("seller_id", req.SellerID.String()),
	)
	return product, nil
}

func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.products.GetByID(ctx, nil, id)
}

func (s *Service) ListProducts(ctx context.Context, categoryID *uuid.UUID, limit, offset int32) ([]*models.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.products.List(ctx, nil, categoryID, limit, offset)
}

// UpdateProductRequest carries mutable product fields; nil leaves a field as is
type UpdateProductRequest struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int32
	IsActive    *bool
}

func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
		product.Slug = slugify(*req.Name)
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() || req.Price.IsZero() {
			return nil, domain.NewDomainError(domain.ErrorCodeValidationFailed, "price must be positive")
		}
		product.Price = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, domain.NewDomainError(domain.ErrorCodeValidationFailed, "stock cannot be negative")
		}
		product.Stock = *req.Stock
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.products.Update(ctx, nil, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return product, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.products.Delete(ctx, nil, id)
}

// CreateCategoryRequest carries a new category; ParentID nests it
type CreateCategoryRequest struct {
	Name     string `validate:"required,max=100"`
	ParentID *uuid.UUID
}

func (s *Service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*models.Category, error) {
	if err := validate.Struct(req); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeValidationFailed, "invalid category", err)
	}
	if req.ParentID != nil {
		if _, err := s.categories.GetByID(ctx, nil, *req.ParentID); err != nil {
			return nil, err
		}
	}

	category := &models.Category{
		ID:       uuid.New(),
		ParentID: req.ParentID,
		Name:     req.Name,
		Slug:     slugify(req.Name),
	}
	if err := s.categories.Create(ctx, nil, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return s.categories.List(ctx, nil)
}

func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.categories.Delete(ctx, nil, id)
}

// CreateReviewRequest carries a product rating from a customer
type CreateReviewRequest struct {
	ProductID uuid.UUID `validate:"required"`
	UserID    uuid.UUID `validate:"required"`
	Rating    int32     `validate:"required,min=1,max=5"`
	Comment   string    `validate:"max=2000"`
}

func (s *Service) CreateReview(ctx context.Context, req CreateReviewRequest) (*models.Review, error) {
	if err := validate.Struct(req); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeValidationFailed, "invalid review", err)
	}
	if _, err := s.products.GetByID(ctx, nil, req.ProductID); err != nil {
		return nil, err
	}

	review := &models.Review{
		ID:        uuid.New(),
		ProductID: req.ProductID,
		UserID:    req.UserID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := s.reviews.Create(ctx, nil, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	return review, nil
}

func (s *Service) ListReviews(ctx context.Context, productID uuid.UUID, limit, offset int32) ([]*models.Review, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.reviews.ListByProduct(ctx, nil, productID, limit, offset)
}

func (s *Service) DeleteReview(ctx context.Context, id uuid.UUID) error {
	return s.reviews.Delete(ctx, nil, id)
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '-'
		default:
			return -1
		}
	}, slug)
	return strings.Trim(slug, "-")
}
