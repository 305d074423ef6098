package webhook

import (
	"context"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/vendoria/commerce-service/internal/courier"
	"github.com/vendoria/commerce-service/internal/handlers"
	"github.com/vendoria/commerce-service/internal/services/reconciliation"
	"github.com/vendoria/commerce-service/pkg/observability"
)

// TrackingReconciler applies courier tracking updates
type TrackingReconciler interface {
	ReconcileTracking(ctx context.Context, upd *courier.TrackingUpdate) (reconciliation.Result, error)
}

// CourierHandler receives tracking callbacks from the shipping aggregator
type CourierHandler struct {
	reconciler TrackingReconciler
	logger     *zap.Logger
}

// NewCourierHandler creates the courier webhook handler
func NewCourierHandler(reconciler TrackingReconciler, logger *zap.Logger) *CourierHandler {
	return &CourierHandler{
		reconciler: reconciler,
		logger:     logger,
	}
}

// ack is the flat acknowledgement shape the courier expects, distinct from
// the API envelope
type ack struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HandleTracking processes a tracking status callback.
// POST /webhooks/courier/tracking
//
// Events that reference an unknown AWB or carry an unmapped status code are
// acknowledged with 200 so the courier stops retrying them.
func (h *CourierHandler) HandleTracking(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		handlers.WriteJSONRaw(w, http.StatusBadRequest, ack{Success: false, Error: "unreadable body"})
		return
	}

	upd, err := courier.ParseTrackingUpdate(body)
	if err != nil {
		h.logger.Warn("Courier webhook payload rejected", zap.Error(err))
		observability.RecordWebhookEvent("courier", "bad_payload")
		handlers.WriteJSONRaw(w, http.StatusBadRequest, ack{Success: false, Error: "malformed payload"})
		return
	}
	observability.RecordWebhookEvent("courier", "accepted")

	result, err := h.reconciler.ReconcileTracking(r.Context(), upd)
	if err != nil {
		h.logger.Error("Tracking reconciliation failed",
			zap.String("awb", upd.AWB),
			zap.Error(err),
		)
		handlers.WriteJSONRaw(w, http.StatusInternalServerError, ack{Success: false, Error: "processing failed"})
		return
	}

	// Applied and ignored both acknowledge; the outcome is visible in metrics.
	observability.RecordTrackingReconciliation(string(result.Outcome), result.ItemsUpdated)
	handlers.WriteJSONRaw(w, http.StatusOK, ack{Success: true})
}
