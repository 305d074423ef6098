package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vendoria/commerce-service/internal/domain"
	"github.com/vendoria/commerce-service/internal/domain/ports"
	"github.com/vendoria/commerce-service/pkg/observability"
)

var minorUnits = decimal.NewFromInt(100)

// Config holds the gateway API key pair and endpoint
type Config struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Timeout   time.Duration
}

// Client implements ports.PaymentGateway against the Razorpay REST API.
// Requests authenticate with basic auth on the key pair; amounts go over the
// wire in minor currency units.
type Client struct {
	config     Config
	httpClient ports.HTTPClient
	logger     *zap.Logger
}

// NewClient creates a gateway client with a default HTTP client
func NewClient(config Config, logger *zap.Logger) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return NewClientWithHTTP(config, &http.Client{Timeout: timeout}, logger)
}

// NewClientWithHTTP creates a gateway client with an injected HTTP client
func NewClientWithHTTP(config Config, httpClient ports.HTTPClient, logger *zap.Logger) *Client {
	return &Client{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
	}
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// CreateOrder registers a checkout order with the gateway
func (c *Client) CreateOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (*ports.GatewayOrderResult, error) {
	apiReq := createOrderRequest{
		Amount:   amount.Mul(minorUnits).IntPart(),
		Currency: currency,
		Receipt:  receipt,
	}

	var resp orderResponse
	err := c.doJSON(ctx, http.MethodPost, "/v1/orders", apiReq, &resp)
	observability.RecordGatewayRequest("create_order", err)
	if err != nil {
		return nil, fmt.Errorf("create gateway order: %w", err)
	}

	c.logger.Info("Gateway order created",
		zap.String("gateway_order_id", resp.ID),
		zap.String("receipt", receipt),
	)

	return &ports.GatewayOrderResult{
		OrderID:  resp.ID,
		Amount:   decimal.NewFromInt(resp.Amount).Div(minorUnits),
		Currency: resp.Currency,
		Status:   resp.Status,
	}, nil
}

type refundRequest struct {
	Amount int64 `json:"amount"`
}

type refundResponse struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

// InitiateRefund asks the gateway to refund part or all of a captured
// payment. The refund settles asynchronously; its terminal state arrives over
// the webhook.
func (c *Client) InitiateRefund(ctx context.Context, paymentID string, amount decimal.Decimal) (*ports.RefundResult, error) {
	endpoint := fmt.Sprintf("/v1/payments/%s/refund", paymentID)

	var resp refundResponse
	err := c.doJSON(ctx, http.MethodPost, endpoint, refundRequest{Amount: amount.Mul(minorUnits).IntPart()}, &resp)
	observability.RecordGatewayRequest("initiate_refund", err)
	if err != nil {
		return nil, fmt.Errorf("initiate refund for payment %s: %w", paymentID, err)
	}

	c.logger.Info("Gateway refund initiated",
		zap.String("refund_id", resp.ID),
		zap.String("payment_id", paymentID),
		zap.String("status", resp.Status),
	)

	return &ports.RefundResult{
		RefundID:  resp.ID,
		PaymentID: resp.PaymentID,
		Amount:    decimal.NewFromInt(resp.Amount).Div(minorUnits),
		Status:    resp.Status,
	}, nil
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, request, response any) error {
	payload, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.config.KeyID, c.config.KeySecret)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return domain.NewDomainErrorWithDetails(domain.ErrorCodeGatewayUnavailable, "gateway unreachable", err.Error())
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch {
	case httpResp.StatusCode >= 500:
		return domain.NewDomainErrorWithDetails(domain.ErrorCodeGatewayUnavailable, "gateway error", string(data))
	case httpResp.StatusCode >= 400:
		return domain.NewDomainErrorWithDetails(domain.ErrorCodeGatewayRejected, "gateway rejected request", string(data))
	}

	if response != nil {
		if err := json.Unmarshal(data, response); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
