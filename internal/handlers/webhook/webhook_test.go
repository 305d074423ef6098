package webhook_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vendoria/commerce-service/internal/courier"
	"github.com/vendoria/commerce-service/internal/gateway"
	"github.com/vendoria/commerce-service/internal/handlers/webhook"
	"github.com/vendoria/commerce-service/internal/middleware"
	"github.com/vendoria/commerce-service/internal/services/reconciliation"
)

const (
	courierKey    = "courier-test-key"
	webhookSecret = "webhook-test-secret"
)

type mockReconciler struct {
	mock.Mock
}

func (m *mockReconciler) ReconcileTracking(ctx context.Context, upd *courier.TrackingUpdate) (reconciliation.Result, error) {
	args := m.Called(ctx, upd)
	return args.Get(0).(reconciliation.Result), args.Error(1)
}

func (m *mockReconciler) ReconcileRefund(ctx context.Context, ev *gateway.Event) (reconciliation.Result, error) {
	args := m.Called(ctx, ev)
	return args.Get(0).(reconciliation.Result), args.Error(1)
}

func courierServer(reconciler *mockReconciler) http.Handler {
	handler := webhook.NewCourierHandler(reconciler, zap.NewNop())
	return middleware.CourierWebhookAuth(courierKey, zap.NewNop())(http.HandlerFunc(handler.HandleTracking))
}

func paymentServer(reconciler *mockReconciler) http.Handler {
	handler := webhook.NewPaymentHandler(reconciler, zap.NewNop())
	return middleware.GatewayWebhookAuth(webhookSecret, zap.NewNop())(http.HandlerFunc(handler.HandleEvent))
}

func trackingBody(t *testing.T, awb string, statusID int32) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"awb":               awb,
		"current_status":    "Shipped",
		"current_status_id": statusID,
	})
	require.NoError(t, err)
	return body
}

func TestCourierWebhook_AppliedEventIsAcknowledged(t *testing.T) {
	reconciler := new(mockReconciler)
	reconciler.On("ReconcileTracking", mock.Anything, mock.MatchedBy(func(upd *courier.TrackingUpdate) bool {
		return upd.AWB == "AWB123" && upd.CurrentStatusID == 6
	})).Return(reconciliation.Result{Outcome: reconciliation.OutcomeApplied, ItemsUpdated: 2}, nil)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/courier/tracking", bytes.NewReader(trackingBody(t, "AWB123", 6)))
	req.Header.Set("x-api-key", courierKey)
	rec := httptest.NewRecorder()
	courierServer(reconciler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	reconciler.AssertExpectations(t)
}

func TestCourierWebhook_IgnoredEventStillAcknowledged(t *testing.T) {
	// Unknown AWBs and unmapped codes are acked so the courier stops retrying.
	reconciler := new(mockReconciler)
	reconciler.On("ReconcileTracking", mock.Anything, mock.Anything).
		Return(reconciliation.Result{Outcome: reconciliation.OutcomeUnknownReference}, nil)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/courier/tracking", bytes.NewReader(trackingBody(t, "GHOST", 7)))
	req.Header.Set("x-api-key", courierKey)
	rec := httptest.NewRecorder()
	courierServer(reconciler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}

func TestCourierWebhook_BadAPIKeyIs401(t *testing.T) {
	reconciler := new(mockReconciler)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/courier/tracking", bytes.NewReader(trackingBody(t, "AWB123", 6)))
	req.Header.Set("x-api-key", "wrong-key")
	rec := httptest.NewRecorder()
	courierServer(reconciler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	reconciler.AssertNotCalled(t, "ReconcileTracking", mock.Anything, mock.Anything)
}

func TestCourierWebhook_MalformedPayloadIs400(t *testing.T) {
	reconciler := new(mockReconciler)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/courier/tracking", bytes.NewReader([]byte(`{"awb":`)))
	req.Header.Set("x-api-key", courierKey)
	rec := httptest.NewRecorder()
	courierServer(reconciler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	reconciler.AssertNotCalled(t, "ReconcileTracking", mock.Anything, mock.Anything)
}

func refundBody(t *testing.T, event, refundID, status string, amount int64) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"event": event,
		"payload": map[string]any{
			"refund": map[string]any{
				"entity": map[string]any{
					"id":         refundID,
					"payment_id": "pay_123",
					"status":     status,
					"amount":     amount,
					"currency":   "INR",
				},
			},
		},
	})
	require.NoError(t, err)
	return body
}

func signedRequest(t *testing.T, body []byte) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment/razorpay", bytes.NewReader(body))
	req.Header.Set("X-Razorpay-Signature", gateway.ComputeSignature(body, webhookSecret))
	return req
}

func TestPaymentWebhook_ProcessedRefundIsAcknowledged(t *testing.T) {
	reconciler := new(mockReconciler)
	reconciler.On("ReconcileRefund", mock.Anything, mock.MatchedBy(func(ev *gateway.Event) bool {
		return ev.Event == gateway.EventRefundProcessed &&
			ev.Payload.Refund.Entity.ID == "rfnd_001" &&
			ev.Payload.Refund.Entity.Amount == 12999
	})).Return(reconciliation.Result{Outcome: reconciliation.OutcomeApplied, ItemsUpdated: 1}, nil)

	rec := httptest.NewRecorder()
	paymentServer(reconciler).ServeHTTP(rec, signedRequest(t, refundBody(t, "refund.processed", "rfnd_001", "processed", 12999)))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	reconciler.AssertExpectations(t)
}

func TestPaymentWebhook_MissingSignatureIs400(t *testing.T) {
	reconciler := new(mockReconciler)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment/razorpay",
		bytes.NewReader(refundBody(t, "refund.processed", "rfnd_001", "processed", 100)))
	rec := httptest.NewRecorder()
	paymentServer(reconciler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	reconciler.AssertNotCalled(t, "ReconcileRefund", mock.Anything, mock.Anything)
}

func TestPaymentWebhook_BadSignatureIs401(t *testing.T) {
	reconciler := new(mockReconciler)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment/razorpay",
		bytes.NewReader(refundBody(t, "refund.processed", "rfnd_001", "processed", 100)))
	req.Header.Set("X-Razorpay-Signature", "deadbeef")
	rec := httptest.NewRecorder()
	paymentServer(reconciler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	reconciler.AssertNotCalled(t, "ReconcileRefund", mock.Anything, mock.Anything)
}

func TestPaymentWebhook_TamperedBodyFailsVerification(t *testing.T) {
	reconciler := new(mockReconciler)

	original := refundBody(t, "refund.processed", "rfnd_001", "processed", 100)
	tampered := refundBody(t, "refund.processed", "rfnd_001", "processed", 999999)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment/razorpay", bytes.NewReader(tampered))
	req.Header.Set("X-Razorpay-Signature", gateway.ComputeSignature(original, webhookSecret))
	rec := httptest.NewRecorder()
	paymentServer(reconciler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPaymentWebhook_UnhandledEventIsIgnored(t *testing.T) {
	reconciler := new(mockReconciler)

	body, err := json.Marshal(map[string]any{"event": "payment.captured"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	paymentServer(reconciler).ServeHTTP(rec, signedRequest(t, body))

	assert.Equal(t, http.StatusOK, rec.Code)
	reconciler.AssertNotCalled(t, "ReconcileRefund", mock.Anything, mock.Anything)
}

func TestPaymentWebhook_ReconcilerFailureIs500(t *testing.T) {
	reconciler := new(mockReconciler)
	reconciler.On("ReconcileRefund", mock.Anything, mock.Anything).
		Return(reconciliation.Result{}, assert.AnError)

	rec := httptest.NewRecorder()
	paymentServer(reconciler).ServeHTTP(rec, signedRequest(t, refundBody(t, "refund.failed", "rfnd_002", "failed", 100)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}
