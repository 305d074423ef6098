package shiprocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vendoria/commerce-service/internal/domain"
	"github.com/vendoria/commerce-service/internal/domain/ports"
)

func setupClientTest(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := Config{
		BaseURL:  server.URL,
		Email:    "ops@example.com",
		Password: "test-password",
	}
	client := NewClientWithHTTP(config, &http.Client{}, zap.NewNop())
	return client, server
}

func loginHandler(t *testing.T, w http.ResponseWriter, r *http.Request) bool {
	t.Helper()
	if r.URL.Path != "/v1/external/auth/login" {
		return false
	}
	var req loginRequest
	require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
	assert.Equal(t, "ops@example.com", req.Email)
	json.NewEncoder(w).Encode(loginResponse{Token: "test-token"})
	return true
}

func TestClient_CreateShipment_Success(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if loginHandler(t, w, r) {
			return
		}
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/external/orders/create/adhoc", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req createOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ORD-1001", req.OrderID)
		assert.Equal(t, "prepaid", req.PaymentMethod)
		require.Len(t, req.OrderItems, 1)
		assert.Equal(t, "SKU-1", req.OrderItems[0].SKU)

		json.NewEncoder(w).Encode(map[string]any{
			"order_id":     441074,
			"shipment_id":  438966,
			"status":       "NEW",
			"awb_code":     "AWB100",
			"courier_name": "Delhivery",
		})
	}
	client, _ := setupClientTest(t, handler)

	result, err := client.CreateShipment(context.Background(), &ports.CreateShipmentRequest{
		OrderID:       "ORD-1001",
		OrderDate:     "2026-08-30",
		PaymentMethod: "prepaid",
		SubTotal:      decimal.NewFromInt(499),
		Items: []ports.ShipmentLineItem{
			{Name: "Widget", SKU: "SKU-1", Units: 1, SellingPrice: decimal.NewFromInt(499)},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "438966", result.ShipmentID)
	assert.Equal(t, "AWB100", result.AWB)
	assert.Equal(t, "Delhivery", result.CourierName)
}

func TestClient_TokenIsCachedAcrossCalls(t *testing.T) {
	logins := 0
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/external/auth/login" {
			logins++
			json.NewEncoder(w).Encode(loginResponse{Token: "test-token"})
			return
		}
		json.NewEncoder(w).Encode(trackResponse{})
	}
	client, _ := setupClientTest(t, handler)

	ctx := context.Background()
	_, err := client.Track(ctx, "AWB1")
	require.NoError(t, err)
	_, err = client.Track(ctx, "AWB2")
	require.NoError(t, err)

	assert.Equal(t, 1, logins)
}

func TestClient_Track_ParsesHistory(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if loginHandler(t, w, r) {
			return
		}
		assert.Equal(t, "/v1/external/courier/track/awb/AWB555", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"tracking_data": map[string]any{
				"shipment_status": 7,
				"etd":             "2026-09-02 18:00:00",
				"shipment_track": []map[string]any{
					{"awb_code": "AWB555", "current_status": "Delivered"},
				},
				"shipment_track_activities": []map[string]any{
					{"activity": "Delivered", "location": "Pune", "date": "2026-09-01"},
					{"activity": "Out for delivery", "location": "Pune", "date": "2026-09-01"},
				},
			},
		})
	}
	client, _ := setupClientTest(t, handler)

	result, err := client.Track(context.Background(), "AWB555")

	require.NoError(t, err)
	assert.Equal(t, "Delivered", result.CurrentStatus)
	assert.Equal(t, int32(7), result.StatusCode)
	require.Len(t, result.Scans, 2)
	assert.Equal(t, "Pune", result.Scans[0].Location)
}

func TestClient_AuthFailure_SurfacesDomainError(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if loginHandler(t, w, r) {
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}
	client, _ := setupClientTest(t, handler)

	_, err := client.Track(context.Background(), "AWB1")

	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeCourierAuthFailed))
}

func TestClient_ServerErrorsTripBreaker(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if loginHandler(t, w, r) {
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}
	client, _ := setupClientTest(t, handler)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := client.Track(ctx, "AWB1")
		require.Error(t, err)
		assert.True(t, domain.IsDomainError(err, domain.ErrorCodeCourierUnavailable))
	}

	// Breaker is now open; the next call fails without reaching the server.
	_, err := client.Track(ctx, "AWB1")
	require.Error(t, err)
	assert.False(t, domain.IsDomainError(err, domain.ErrorCodeCourierUnavailable))
}
