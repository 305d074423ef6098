package webhook

import (
	"context"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/vendoria/commerce-service/internal/gateway"
	"github.com/vendoria/commerce-service/internal/handlers"
	"github.com/vendoria/commerce-service/internal/services/reconciliation"
	"github.com/vendoria/commerce-service/pkg/observability"
)

// RefundReconciler applies gateway refund events
type RefundReconciler interface {
	ReconcileRefund(ctx context.Context, ev *gateway.Event) (reconciliation.Result, error)
}

// PaymentHandler receives refund events from the payment gateway. Signature
// verification happens in middleware before the body reaches this handler.
type PaymentHandler struct {
	reconciler RefundReconciler
	logger     *zap.Logger
}

// NewPaymentHandler creates the gateway webhook handler
func NewPaymentHandler(reconciler RefundReconciler, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		reconciler: reconciler,
		logger:     logger,
	}
}

// HandleEvent processes a verified gateway event.
// POST /webhooks/payment/razorpay
func (h *PaymentHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		handlers.WriteJSONRaw(w, http.StatusBadRequest, ack{Success: false, Error: "unreadable body"})
		return
	}

	ev, err := gateway.ParseEvent(body)
	if err != nil {
		h.logger.Warn("Gateway webhook payload rejected", zap.Error(err))
		observability.RecordWebhookEvent("gateway", "bad_payload")
		handlers.WriteJSONRaw(w, http.StatusBadRequest, ack{Success: false, Error: "malformed payload"})
		return
	}
	observability.RecordWebhookEvent("gateway", "accepted")

	switch ev.Event {
	case gateway.EventRefundCreated, gateway.EventRefundProcessed, gateway.EventRefundFailed:
		result, err := h.reconciler.ReconcileRefund(r.Context(), ev)
		if err != nil {
			h.logger.Error("Refund reconciliation failed",
				zap.String("event", ev.Event),
				zap.Error(err),
			)
			handlers.WriteJSONRaw(w, http.StatusInternalServerError, ack{Success: false, Error: "processing failed"})
			return
		}
		refund := ev.Payload.Refund.Entity
		observability.RecordRefundReconciliation(string(result.Outcome), refund.Currency, float64(refund.Amount)/100)
		if result.Outcome == reconciliation.OutcomeUnknownReference {
			handlers.WriteJSONRaw(w, http.StatusOK, ack{Success: true, Message: "no matching order item"})
			return
		}
		handlers.WriteJSONRaw(w, http.StatusOK, ack{Success: true, Message: "refund reconciled"})
	default:
		// Unsubscribed event types are acknowledged and dropped.
		handlers.WriteJSONRaw(w, http.StatusOK, ack{Success: true, Message: "event ignored"})
	}
}
