package shiprocket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/vendoria/commerce-service/internal/domain"
	"github.com/vendoria/commerce-service/internal/domain/ports"
	"github.com/vendoria/commerce-service/pkg/observability"
)

// Auth tokens are valid for 10 days; refresh well before that.
const tokenTTL = 9 * 24 * time.Hour

// Config holds the courier API credentials and endpoint
type Config struct {
	BaseURL  string
	Email    string
	Password string
	Timeout  time.Duration
}

// Client implements ports.CourierGateway against the Shiprocket external API
type Client struct {
	config     Config
	httpClient ports.HTTPClient
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates a courier client with a default HTTP client
func NewClient(config Config, logger *zap.Logger) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return NewClientWithHTTP(config, &http.Client{Timeout: timeout}, logger)
}

// NewClientWithHTTP creates a courier client with an injected HTTP client
func NewClientWithHTTP(config Config, httpClient ports.HTTPClient, logger *zap.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "shiprocket",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Courier circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &Client{
		config:     config,
		httpClient: httpClient,
		breaker:    breaker,
		logger:     logger,
	}
}

// BreakerOpen reports whether the circuit to the courier API is open
func (c *Client) BreakerOpen() bool {
	return c.breaker.State() == gobreaker.StateOpen
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// ensureToken logs in when no valid token is cached. Callers hold no locks.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	var resp loginResponse
	err := c.doJSON(ctx, http.MethodPost, "/v1/external/auth/login", "", loginRequest{
		Email:    c.config.Email,
		Password: c.config.Password,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("courier login: %w", err)
	}
	if resp.Token == "" {
		return "", domain.NewDomainError(domain.ErrorCodeCourierAuthFailed, "courier login returned no token")
	}

	c.token = resp.Token
	c.tokenExpiry = time.Now().Add(tokenTTL)
	c.logger.Info("Courier auth token refreshed", zap.Time("expires_at", c.tokenExpiry))
	return c.token, nil
}

type createOrderRequest struct {
	OrderID           string            `json:"order_id"`
	OrderDate         string            `json:"order_date"`
	PickupLocation    string            `json:"pickup_location"`
	BillingName       string            `json:"billing_customer_name"`
	BillingEmail      string            `json:"billing_email"`
	BillingPhone      string            `json:"billing_phone"`
	BillingAddress    string            `json:"billing_address"`
	BillingCity       string            `json:"billing_city"`
	BillingState      string            `json:"billing_state"`
	BillingPincode    string            `json:"billing_pincode"`
	BillingCountry    string            `json:"billing_country"`
	ShippingIsBilling bool              `json:"shipping_is_billing"`
	PaymentMethod     string            `json:"payment_method"`
	SubTotal          float64           `json:"sub_total"`
	Length            float64           `json:"length"`
	Breadth           float64           `json:"breadth"`
	Height            float64           `json:"height"`
	Weight            float64           `json:"weight"`
	OrderItems        []createOrderItem `json:"order_items"`
}

type createOrderItem struct {
	Name         string  `json:"name"`
	SKU          string  `json:"sku"`
	Units        int32   `json:"units"`
	SellingPrice float64 `json:"selling_price"`
}

type createOrderResponse struct {
	OrderID     json.Number `json:"order_id"`
	ShipmentID  json.Number `json:"shipment_id"`
	Status      string      `json:"status"`
	AWBCode     string      `json:"awb_code"`
	CourierName string      `json:"courier_name"`
}

// CreateShipment registers a forward order with the courier
func (c *Client) CreateShipment(ctx context.Context, req *ports.CreateShipmentRequest) (*ports.CreateShipmentResult, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]createOrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, createOrderItem{
			Name:         it.Name,
			SKU:          it.SKU,
			Units:        it.Units,
			SellingPrice: it.SellingPrice.InexactFloat64(),
		})
	}

	apiReq := createOrderRequest{
		OrderID:         req.OrderID,
		OrderDate:       req.OrderDate,
		PickupLocation:  req.PickupLocation,
		BillingName:     req.CustomerName,
		BillingEmail:    req.CustomerEmail,
		BillingPhone:    req.CustomerPhone,
		BillingAddress:  req.ShippingAddress,
		BillingCity:     req.ShippingCity,
		BillingState:    req.ShippingState,
		BillingPincode:  req.ShippingPincode,
		BillingCountry:  "India",
		ShippingIsBilling: true,
		PaymentMethod:   req.PaymentMethod,
		SubTotal:        req.SubTotal.InexactFloat64(),
		Length:          req.LengthCm.InexactFloat64(),
		Breadth:         req.BreadthCm.InexactFloat64(),
		Height:          req.HeightCm.InexactFloat64(),
		Weight:          req.WeightKg.InexactFloat64(),
		OrderItems:      items,
	}

	var resp createOrderResponse
	err = c.doJSON(ctx, http.MethodPost, "/v1/external/orders/create/adhoc", token, apiReq, &resp)
	observability.RecordCourierRequest("create_shipment", err)
	if err != nil {
		return nil, fmt.Errorf("create courier order: %w", err)
	}

	c.logger.Info("Courier order created",
		zap.String("order_id", req.OrderID),
		zap.String("courier_shipment_id", resp.ShipmentID.String()),
		zap.String("awb", resp.AWBCode),
	)

	return &ports.CreateShipmentResult{
		ShipmentID:  resp.ShipmentID.String(),
		OrderID:     resp.OrderID.String(),
		AWB:         resp.AWBCode,
		CourierName: resp.CourierName,
		Status:      resp.Status,
	}, nil
}

type cancelRequest struct {
	AWBs []string `json:"awbs"`
}

// CancelShipment cancels an AWB that has not yet been picked up
func (c *Client) CancelShipment(ctx context.Context, awb string) error {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}
	err = c.doJSON(ctx, http.MethodPost, "/v1/external/orders/cancel/shipment/awbs", token, cancelRequest{AWBs: []string{awb}}, nil)
	observability.RecordCourierRequest("cancel_shipment", err)
	if err != nil {
		return fmt.Errorf("cancel courier shipment %s: %w", awb, err)
	}
	c.logger.Info("Courier shipment cancelled", zap.String("awb", awb))
	return nil
}

type trackResponse struct {
	TrackingData struct {
		ShipmentTrack []struct {
			AWB           string `json:"awb_code"`
			CurrentStatus string `json:"current_status"`
		} `json:"shipment_track"`
		ShipmentStatus int32  `json:"shipment_status"`
		ETD            string `json:"etd"`
		ShipmentTrackActivities []struct {
			Activity string `json:"activity"`
			Location string `json:"location"`
			Date     string `json:"date"`
		} `json:"shipment_track_activities"`
	} `json:"tracking_data"`
}

// Track pulls the courier's current view of a shipment by AWB
func (c *Client) Track(ctx context.Context, awb string) (*ports.TrackingResult, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	var resp trackResponse
	endpoint := "/v1/external/courier/track/awb/" + awb
	err = c.doJSON(ctx, http.MethodGet, endpoint, token, nil, &resp)
	observability.RecordCourierRequest("track", err)
	if err != nil {
		return nil, fmt.Errorf("track awb %s: %w", awb, err)
	}

	result := &ports.TrackingResult{
		AWB:        awb,
		StatusCode: resp.TrackingData.ShipmentStatus,
		ETD:        resp.TrackingData.ETD,
	}
	if len(resp.TrackingData.ShipmentTrack) > 0 {
		result.CurrentStatus = resp.TrackingData.ShipmentTrack[0].CurrentStatus
	}
	for _, a := range resp.TrackingData.ShipmentTrackActivities {
		result.Scans = append(result.Scans, ports.TrackingScan{
			Activity: a.Activity,
			Location: a.Location,
			Date:     a.Date,
		})
	}
	return result, nil
}

type labelRequest struct {
	ShipmentIDs []string `json:"shipment_id"`
}

type labelResponse struct {
	LabelCreated int32  `json:"label_created"`
	LabelURL     string `json:"label_url"`
}

// GenerateLabel asks the courier for a printable label URL
func (c *Client) GenerateLabel(ctx context.Context, shipmentID string) (string, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return "", err
	}

	var resp labelResponse
	err = c.doJSON(ctx, http.MethodPost, "/v1/external/courier/generate/label", token, labelRequest{ShipmentIDs: []string{shipmentID}}, &resp)
	observability.RecordCourierRequest("generate_label", err)
	if err != nil {
		return "", fmt.Errorf("generate label for shipment %s: %w", shipmentID, err)
	}
	if resp.LabelURL == "" {
		return "", domain.NewDomainError(domain.ErrorCodeCourierUnavailable, "courier returned no label url")
	}
	return resp.LabelURL, nil
}

// doJSON runs one API call through the circuit breaker. A nil response skips
// decoding; a nil request sends no body.
func (c *Client) doJSON(ctx context.Context, method, endpoint, token string, request, response any) error {
	var body io.Reader
	if request != nil {
		payload, err := json.Marshal(request)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	raw, err := c.breaker.Execute(func() (any, error) {
		httpResp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return nil, domain.NewDomainErrorWithDetails(domain.ErrorCodeCourierUnavailable, "courier unreachable", err.Error())
		}
		defer httpResp.Body.Close()

		data, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}

		switch {
		case httpResp.StatusCode == http.StatusUnauthorized, httpResp.StatusCode == http.StatusForbidden:
			return nil, domain.NewDomainError(domain.ErrorCodeCourierAuthFailed, "courier rejected credentials")
		case httpResp.StatusCode >= 500:
			return nil, domain.NewDomainErrorWithDetails(domain.ErrorCodeCourierUnavailable, "courier error", string(data))
		case httpResp.StatusCode >= 400:
			return nil, domain.NewDomainErrorWithDetails(domain.ErrorCodeCourierRejected, "courier rejected request", string(data))
		}
		return data, nil
	})
	if err != nil {
		return err
	}

	if response != nil {
		if err := json.Unmarshal(raw.([]byte), response); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
