package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vendoria/commerce-service/internal/domain"
	"github.com/vendoria/commerce-service/internal/services/shipment"
)

// ShipmentHandler exposes shipment creation, tracking, and label endpoints
type ShipmentHandler struct {
	service *shipment.Service
	logger  *zap.Logger
}

// NewShipmentHandler creates the shipment handler
func NewShipmentHandler(service *shipment.Service, logger *zap.Logger) *ShipmentHandler {
	return &ShipmentHandler{service: service, logger: logger}
}

type createShipmentRequest struct {
	OrderID      string `json:"orderId"`
	SellerID     string `json:"sellerId"`
	CustomerName string `json:"customerName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	WeightKg     string `json:"weightKg"`
}

// CreateShipment handles POST /shipments
func (h *ShipmentHandler) CreateShipment(w http.ResponseWriter, r *http.Request) {
	var req createShipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, domain.ErrMalformedPayload)
		return
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		RespondError(w, http.StatusBadRequest, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid orderId"))
		return
	}
	sellerID, err := uuid.Parse(req.SellerID)
	if err != nil {
		RespondError(w, http.StatusBadRequest, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid sellerId"))
		return
	}
	weight, err := decimal.NewFromString(req.WeightKg)
	if err != nil {
		RespondError(w, http.StatusBadRequest, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid weightKg"))
		return
	}

	sh, err := h.service.CreateShipment(r.Context(), shipment.CreateShipmentRequest{
		OrderID:      orderID,
		SellerID:     sellerID,
		CustomerName: req.CustomerName,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		City:         req.City,
		State:        req.State,
		Pincode:      req.Pincode,
		WeightKg:     weight,
	})
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, sh)
}

// GetShipment handles GET /shipments/{id}
func (h *ShipmentHandler) GetShipment(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		RespondError(w, http.StatusBadRequest, err)
		return
	}
	sh, err := h.service.GetShipment(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, sh)
}

// CancelShipment handles POST /shipments/{id}/cancel
func (h *ShipmentHandler) CancelShipment(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		RespondError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.service.CancelShipment(r.Context(), id); err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondMessage(w, http.StatusOK, "shipment cancelled")
}

type updateShipmentStatusRequest struct {
	StatusCode int32 `json:"statusCode"`
}

// UpdateStatus handles PATCH /shipments/{id}/status
func (h *ShipmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		RespondError(w, http.StatusBadRequest, err)
		return
	}

	var req updateShipmentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, domain.ErrMalformedPayload)
		return
	}

	sh, err := h.service.UpdateStatus(r.Context(), id, req.StatusCode)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, sh)
}

// Track handles GET /shipments/track/{awb}
func (h *ShipmentHandler) Track(w http.ResponseWriter, r *http.Request) {
	awb := chi.URLParam(r, "awb")
	if awb == "" {
		RespondError(w, http.StatusBadRequest, domain.NewDomainError(domain.ErrorCodeValidationMissingField, "awb is required"))
		return
	}
	result, err := h.service.Track(r.Context(), awb)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}

// TrackingHistory handles GET /orders/items/{id}/tracking
func (h *ShipmentHandler) TrackingHistory(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathUUID(r, "id")
	if err != nil {
		RespondError(w, http.StatusBadRequest, err)
		return
	}
	entries, err := h.service.TrackingHistory(r.Context(), itemID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, entries)
}

// GenerateLabel handles POST /shipments/{id}/label
func (h *ShipmentHandler) GenerateLabel(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		RespondError(w, http.StatusBadRequest, err)
		return
	}
	labelURL, err := h.service.GenerateLabel(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"labelUrl": labelURL})
}
