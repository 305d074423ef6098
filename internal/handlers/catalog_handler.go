package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vendoria/commerce-service/internal/domain"
	"github.com/vendoria/commerce-service/internal/services/catalog"
)

// CatalogHandler exposes product, category, and review endpoints
type CatalogHandler struct {
	service *catalog.Service
	logger  *zap.Logger
}

// NewCatalogHandler creates the catalog handler
func NewCatalogHandler(service *catalog.Service, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{service: service, logger: logger}
}

type createProductRequest struct {
	SellerID    string `json:"sellerId"`
	CategoryID  string `json:"categoryId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Stock       int32  `json:"stock"`
}

// CreateProduct handles POST /products
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, domain.ErrMalformedPayload)
		return
	}

	sellerID, err := uuid.Parse(req.SellerID)
	if err != nil {
		RespondError(w, http.StatusBadRequest, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid sellerId"))
		return
	}
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		RespondError(w, http.StatusBadRequest, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid categoryId"))
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		RespondError(w, http.StatusBadRequest, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid price"))
		return
	}

	product, err := h.service.CreateProduct(r.Context(), catalog.CreateProductRequest{
		SellerID:    sellerID,
		CategoryID:  categoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Stock:       req.Stock,
	})
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, product)
}

// GetProduct handles GET /products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		RespondError(w, http.StatusBadRequest, err)
		return
	}
	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, product)
}

// ListProducts handles GET /products?category=&limit=&offset=
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	var categoryID *uuid.UUID
	if raw := r.URL.Query().Get("category"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			RespondError(w, http.StatusBadRequest, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid category"))
			return
		}
		categoryID = &id
	}
	limit, offset := pagination(r)

	products, err := h.service.ListProducts(r.Context(), categoryID, limit, offset)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, products)
}

type updateProductRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *string `json:"price"`
	Stock       *int32  `json:"stock"`
	IsActive    *bool   `json:"isActive"`
}

// UpdateProduct handles PATCH /products/{id}
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		RespondError(w, http.StatusBadRequest, err)
		return
	}

	var req updateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, domain.ErrMalformedPayload)
		return
	}

	upd := catalog.UpdateProductRequest{
		Name:        req.Name,
		Description: req.Description,
		Stock:       req.Stock,
		IsActive:    req.IsActive,
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil {
			RespondError(w, http.StatusBadRequest, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid price"))
			return
		}
		upd.Price = &price
	}

	product, err := h.service.UpdateProduct(r.Context(), id, upd)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/{id}
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		RespondError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondMessage(w, http.StatusOK, "product deleted")
}

type createCategoryRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parentId"`
}

// CreateCategory handles POST /categories
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, domain.ErrMalformedPayload)
		return
	}

	var parentID *uuid.UUID
	if req.ParentID != nil {
		id, err := uuid.Parse(*req.ParentID)
		if err != nil {
			RespondError(w, http.StatusBadRequest, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid parentId"))
			return
		}
		parentID = &id
	}

	category, err := h.service.CreateCategory(r.Context(), catalog.CreateCategoryRequest{
		Name:     req.Name,
		ParentID: parentID,
	})
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, category)
}

// ListCategories handles GET /categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, categories)
}

// DeleteCategory handles DELETE /categories/{id}
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		RespondError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondMessage(w, http.StatusOK, "category deleted")
}

type createReviewRequest struct {
	UserID  string `json:"userId"`
	Rating  int32  `json:"rating"`
	Comment string `json:"comment"`
}

// CreateReview handles POST /products/{id}/reviews
func (h *CatalogHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	productID, err := pathUUID(r, "id")
	if err != nil {
		RespondError(w, http.StatusBadRequest, err)
		return
	}

	var req createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, domain.ErrMalformedPayload)
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		RespondError(w, http.StatusBadRequest, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid userId"))
		return
	}

	review, err := h.service.CreateReview(r.Context(), catalog.CreateReviewRequest{
		ProductID: productID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, review)
}

// ListReviews handles GET /products/{id}/reviews
func (h *CatalogHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	productID, err := pathUUID(r, "id")
	if err != nil {
		RespondError(w, http.StatusBadRequest, err)
		return
	}
	limit, offset := pagination(r)

	reviews, err := h.service.ListReviews(r.Context(), productID, limit, offset)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, reviews)
}

func pathUUID(r *http.Request, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, key))
	if err != nil {
		return uuid.Nil, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid "+key)
	}
	return id, nil
}

func pagination(r *http.Request) (limit, offset int32) {
	q := r.URL.Query()
	if n, err := strconv.ParseInt(q.Get("limit"), 10, 32); err == nil {
		limit = int32(n)
	}
	if n, err := strconv.ParseInt(q.Get("offset"), 10, 32); err == nil {
		offset = int32(n)
	}
	return limit, offset
}
