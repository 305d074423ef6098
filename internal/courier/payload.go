package courier

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/vendoria/commerce-service/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Scan is one checkpoint entry in the courier's scan history. Observability
// only; reconciliation never reads it.
type Scan struct {
	Date         string `json:"date"`
	Activity     string `json:"activity"`
	Location     string `json:"location"`
	SRStatusCode int32  `json:"sr-status"`
}

// TrackingUpdate is the courier's tracking webhook body. Fields are validated
// at the boundary so a malformed payload fails fast and is never conflated
// with an unknown AWB or status code.
type TrackingUpdate struct {
	AWB             string `json:"awb" validate:"required"`
	CourierName     string `json:"courier_name"`
	CurrentStatus   string `json:"current_status"`
	CurrentStatusID int32  `json:"current_status_id"`
	OrderID         string `json:"order_id"`
	SROrderID       int64  `json:"sr_order_id"`
	ETD             string `json:"etd"`
	Scans           []Scan `json:"scans"`
	IsReturn        int32  `json:"is_return"`
	ChannelID       int64  `json:"channel_id"`
}

// trackingUpdateWire shadows the status-code field as a pointer so presence
// can be required while zero stays a legal value. Zero is not in the status
// table and gets the unrecognized-code acknowledgment, not a 400.
type trackingUpdateWire struct {
	TrackingUpdate
	CurrentStatusID *int32 `json:"current_status_id" validate:"required"`
}

// ParseTrackingUpdate decodes and validates a raw webhook body
func ParseTrackingUpdate(raw []byte) (*TrackingUpdate, error) {
	var wire trackingUpdateWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeMalformedPayload, "decode tracking update", err)
	}
	if err := validate.Struct(&wire); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeMalformedPayload, fmt.Sprintf("validate tracking update: %v", err), err)
	}
	upd := wire.TrackingUpdate
	upd.CurrentStatusID = *wire.CurrentStatusID
	return &upd, nil
}
