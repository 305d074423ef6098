package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vendoria/commerce-service/internal/auth"
	"github.com/vendoria/commerce-service/internal/domain"
	"github.com/vendoria/commerce-service/internal/services/cart"
)

// CartHandler exposes cart and wishlist endpoints. The acting user comes from
// the verified token, never the request body.
type CartHandler struct {
	service *cart.Service
	logger  *zap.Logger
}

// NewCartHandler creates the cart handler
func NewCartHandler(service *cart.Service, logger *zap.Logger) *CartHandler {
	return &CartHandler{service: service, logger: logger}
}

func requestUserID(r *http.Request) (uuid.UUID, error) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		return uuid.Nil, domain.ErrAuthMissing
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, domain.ErrAuthInvalid
	}
	return id, nil
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r)
	if err != nil {
		RespondError(w, http.StatusUnauthorized, err)
		return
	}
	c, err := h.service.GetCart(r.Context(), userID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, c)
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int32  `json:"quantity"`
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r)
	if err != nil {
		RespondError(w, http.StatusUnauthorized, err)
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, domain.ErrMalformedPayload)
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		RespondError(w, http.StatusBadRequest, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid productId"))
		return
	}

	c, err := h.service.AddItem(r.Context(), userID, productID, req.Quantity)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, c)
}

type updateItemRequest struct {
	Quantity int32 `json:"quantity"`
}

// UpdateItem handles PATCH /cart/items/{id}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r)
	if err != nil {
		RespondError(w, http.StatusUnauthorized, err)
		return
	}
	itemID, err := pathUUID(r, "id")
	if err != nil {
		RespondError(w, http.StatusBadRequest, err)
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, domain.ErrMalformedPayload)
		return
	}

	c, err := h.service.UpdateItemQuantity(r.Context(), userID, itemID, req.Quantity)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, c)
}

// RemoveItem handles DELETE /cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r)
	if err != nil {
		RespondError(w, http.StatusUnauthorized, err)
		return
	}
	itemID, err := pathUUID(r, "id")
	if err != nil {
		RespondError(w, http.StatusBadRequest, err)
		return
	}

	c, err := h.service.RemoveItem(r.Context(), userID, itemID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, c)
}

type wishlistRequest struct {
	ProductID string `json:"productId"`
}

// AddToWishlist handles POST /wishlist
func (h *CartHandler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r)
	if err != nil {
		RespondError(w, http.StatusUnauthorized, err)
		return
	}

	var req wishlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, domain.ErrMalformedPayload)
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		RespondError(w, http.StatusBadRequest, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid productId"))
		return
	}

	if err := h.service.AddToWishlist(r.Context(), userID, productID); err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondMessage(w, http.StatusCreated, "added to wishlist")
}

// RemoveFromWishlist handles DELETE /wishlist/{productId}
func (h *CartHandler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r)
	if err != nil {
		RespondError(w, http.StatusUnauthorized, err)
		return
	}
	productID, err := pathUUID(r, "productId")
	if err != nil {
		RespondError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.service.RemoveFromWishlist(r.Context(), userID, productID); err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondMessage(w, http.StatusOK, "removed from wishlist")
}

// ListWishlist handles GET /wishlist
func (h *CartHandler) ListWishlist(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r)
	if err != nil {
		RespondError(w, http.StatusUnauthorized, err)
		return
	}
	items, err := h.service.ListWishlist(r.Context(), userID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, items)
}
