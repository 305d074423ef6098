package gateway

import (
	"encoding/json"

	"github.com/vendoria/commerce-service/internal/domain"
)

// Webhook event types the refund reconciler reacts to
const (
	EventRefundCreated   = "refund.created"
	EventRefundProcessed = "refund.processed"
	EventRefundFailed    = "refund.failed"
)

// RefundEntity is the gateway's refund object. Amount is in minor currency
// units (paise).
type RefundEntity struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	CreatedAt int64  `json:"created_at"`
}

// PaymentEntity is the gateway's payment object nested in webhook events
type PaymentEntity struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Event is the gateway webhook envelope
type Event struct {
	Event   string `json:"event"`
	Payload struct {
		Refund struct {
			Entity RefundEntity `json:"entity"`
		} `json:"refund"`
		Payment struct {
			Entity PaymentEntity `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
	CreatedAt int64 `json:"created_at"`
}

// ParseEvent decodes a raw webhook body into the event envelope. Signature
// verification happens before this on the raw bytes; this only guards shape.
func ParseEvent(raw []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeMalformedPayload, "decode gateway event", err)
	}
	if ev.Event == "" {
		return nil, domain.NewDomainError(domain.ErrorCodeMalformedPayload, "gateway event missing event type")
	}
	return &ev, nil
}
