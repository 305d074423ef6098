package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/vendoria/commerce-service/internal/domain"
	"github.com/vendoria/commerce-service/internal/services/order"
)

// OrderHandler exposes checkout and order query endpoints
type OrderHandler struct {
	service *order.Service
	logger  *zap.Logger
}

// NewOrderHandler creates the order handler
func NewOrderHandler(service *order.Service, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{service: service, logger: logger}
}

type checkoutRequest struct {
	Currency string `json:"currency"`
}

// Checkout handles POST /orders
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r)
	if err != nil {
		RespondError(w, http.StatusUnauthorized, err)
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, domain.ErrMalformedPayload)
		return
	}
	if req.Currency == "" {
		req.Currency = "INR"
	}

	placed, err := h.service.Checkout(r.Context(), userID, req.Currency)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, placed)
}

// GetOrder handles GET /orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		RespondError(w, http.StatusBadRequest, err)
		return
	}
	o, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, o)
}

// ListOrders handles GET /orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r)
	if err != nil {
		RespondError(w, http.StatusUnauthorized, err)
		return
	}
	limit, offset := pagination(r)

	orders, err := h.service.ListOrders(r.Context(), userID, limit, offset)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, orders)
}

// ListOrderItems handles GET /orders/{id}/items
func (h *OrderHandler) ListOrderItems(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		RespondError(w, http.StatusBadRequest, err)
		return
	}
	items, err := h.service.ListOrderItems(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, items)
}

// CancelOrder handles POST /orders/{id}/cancel
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		RespondError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.service.CancelOrder(r.Context(), id); err != nil {
		if domain.IsDomainError(err, domain.ErrorCodeOrderInvalidState) {
			RespondError(w, http.StatusConflict, err)
			return
		}
		RespondDomainError(w, err)
		return
	}
	RespondMessage(w, http.StatusOK, "order cancelled")
}

type confirmPaymentRequest struct {
	TransactionID string `json:"transactionId"`
}

// ConfirmPayment handles POST /orders/{id}/payment
func (h *OrderHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		RespondError(w, http.StatusBadRequest, err)
		return
	}

	var req confirmPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, domain.ErrMalformedPayload)
		return
	}
	if req.TransactionID == "" {
		RespondError(w, http.StatusBadRequest, domain.NewDomainError(domain.ErrorCodeValidationMissingField, "transactionId is required"))
		return
	}

	if err := h.service.ConfirmPayment(r.Context(), id, req.TransactionID); err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondMessage(w, http.StatusOK, "payment confirmed")
}

// RequestRefund handles POST /orders/items/{id}/refund
func (h *OrderHandler) RequestRefund(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathUUID(r, "id")
	if err != nil {
		RespondError(w, http.StatusBadRequest, err)
		return
	}

	item, err := h.service.RequestRefund(r.Context(), itemID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrorCodeRefundConflict) ||
			domain.IsDomainError(err, domain.ErrorCodeOrderInvalidState) {
			RespondError(w, http.StatusConflict, err)
			return
		}
		RespondDomainError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, item)
}
