package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/vendoria/commerce-service/internal/domain"
	"github.com/vendoria/commerce-service/internal/services/seller"
)

// SellerHandler exposes seller account endpoints
type SellerHandler struct {
	service *seller.Service
	logger  *zap.Logger
}

// NewSellerHandler creates the seller handler
func NewSellerHandler(service *seller.Service, logger *zap.Logger) *SellerHandler {
	return &SellerHandler{service: service, logger: logger}
}

type registerSellerRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	PickupLocationID string `json:"pickupLocationId"`
}

// Register handles POST /sellers
func (h *SellerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerSellerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, domain.ErrMalformedPayload)
		return
	}

	s, err := h.service.Register(r.Context(), seller.RegisterRequest{
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		PickupLocationID: req.PickupLocationID,
	})
	if err != nil {
		if domain.IsDomainError(err, domain.ErrorCodeSellerExists) {
			RespondError(w, http.StatusConflict, err)
			return
		}
		RespondDomainError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, s)
}

// GetSeller handles GET /sellers/{id}
func (h *SellerHandler) GetSeller(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		RespondError(w, http.StatusBadRequest, err)
		return
	}
	s, err := h.service.GetSeller(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, s)
}

type updateSellerRequest struct {
	Name             *string `json:"name"`
	Phone            *string `json:"phone"`
	PickupLocationID *string `json:"pickupLocationId"`
	IsActive         *bool   `json:"isActive"`
}

// UpdateSeller handles PATCH /sellers/{id}
func (h *SellerHandler) UpdateSeller(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		RespondError(w, http.StatusBadRequest, err)
		return
	}

	var req updateSellerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, domain.ErrMalformedPayload)
		return
	}

	s, err := h.service.UpdateSeller(r.Context(), id, seller.UpdateRequest{
		Name:             req.Name,
		Phone:            req.Phone,
		PickupLocationID: req.PickupLocationID,
		IsActive:         req.IsActive,
	})
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, s)
}

// ListOrderItems handles GET /sellers/{id}/order-items
func (h *SellerHandler) ListOrderItems(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		RespondError(w, http.StatusBadRequest, err)
		return
	}
	limit, offset := pagination(r)

	items, err := h.service.ListOrderItems(r.Context(), id, limit, offset)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, items)
}
