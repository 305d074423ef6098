package courier

import (
	"github.com/vendoria/commerce-service/internal/domain/models"
)

// StatusMapping is the normalized pair a courier status code resolves to
type StatusMapping struct {
	Code           int32
	ItemStatus     models.OrderItemStatus
	ShipmentStatus string
}

// Courier status codes carried in tracking webhooks
const (
	CodeCancelled      int32 = 5
	CodeShipped        int32 = 6
	CodeDelivered      int32 = 7
	CodeOutForDelivery int32 = 19
)

// The table is fixed; codes outside it are treated as unrecognized and must
// not mutate any state.
var statusCodes = map[int32]StatusMapping{
	CodeCancelled: {
		Code:           CodeCancelled,
		ItemStatus:     models.ItemCancelled,
		ShipmentStatus: "Cancelled",
	},
	CodeShipped: {
		Code:           CodeShipped,
		ItemStatus:     models.ItemShipped,
		ShipmentStatus: "Shipped",
	},
	CodeDelivered: {
		Code:           CodeDelivered,
		ItemStatus:     models.ItemDelivered,
		ShipmentStatus: "Delivered",
	},
	CodeOutForDelivery: {
		Code:           CodeOutForDelivery,
		ItemStatus:     models.ItemOutForDelivery,
		ShipmentStatus: "Out For Delivery",
	},
}

// Resolve maps a courier status code to its normalized statuses. The second
// return is false for codes not in the table.
func Resolve(code int32) (StatusMapping, bool) {
	m, ok := statusCodes[code]
	return m, ok
}
