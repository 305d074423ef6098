package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	webhookEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_total",
		Help: "Total webhook events received, by source and verification result",
	}, []string{
		"source", // courier, gateway
		"result", // accepted, bad_signature, bad_payload
	})

	trackingReconciliationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracking_reconciliations_total",
		Help: "Total courier tracking updates reconciled, by outcome",
	}, []string{
		"outcome", // applied, unknown_reference, unrecognized_code
	})

	trackingItemsUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracking_order_items_updated_total",
		Help: "Total order items whose status was updated by tracking fan-out",
	})

	refundReconciliationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "refund_reconciliations_total",
		Help: "Total refund events reconciled, by outcome",
	}, []string{
		"outcome", // applied, unknown_reference
	})

	refundAmountTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "refund_amount_total",
		Help: "Total refunded amount in major currency units",
	}, []string{
		"currency",
	})

	courierRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "courier_requests_total",
		Help: "Total outbound courier API requests, by operation and result",
	}, []string{
		"operation", // create_shipment, cancel_shipment, track, generate_label
		"result",    // ok, error
	})

	gatewayRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_requests_total",
		Help: "Total outbound payment gateway API requests, by operation and result",
	}, []string{
		"operation", // create_order, initiate_refund
		"result",    // ok, error
	})

	ordersCheckedOutTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_checked_out_total",
		Help: "Total checkouts attempted, by result",
	}, []string{
		"result", // ok, error
	})
)

// RecordWebhookEvent counts an inbound webhook by source and how far it got
// through verification.
func RecordWebhookEvent(source, result string) {
	webhookEventsTotal.WithLabelValues(source, result).Inc()
}

// RecordTrackingReconciliation counts a tracking update by reconciliation
// outcome and the number of order items it touched.
func RecordTrackingReconciliation(outcome string, itemsUpdated int) {
	trackingReconciliationsTotal.WithLabelValues(outcome).Inc()
	if itemsUpdated > 0 {
		trackingItemsUpdated.Add(float64(itemsUpdated))
	}
}

// RecordRefundReconciliation counts a refund event by outcome. Amount is in
// major units and only added for applied refunds.
func RecordRefundReconciliation(outcome, currency string, amount float64) {
	refundReconciliationsTotal.WithLabelValues(outcome).Inc()
	if outcome == "applied" && amount > 0 {
		refundAmountTotal.WithLabelValues(currency).Add(amount)
	}
}

// RecordCourierRequest counts an outbound courier API call.
func RecordCourierRequest(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	courierRequestsTotal.WithLabelValues(operation, result).Inc()
}

// RecordGatewayRequest counts an outbound payment gateway API call.
func RecordGatewayRequest(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	gatewayRequestsTotal.WithLabelValues(operation, result).Inc()
}

// RecordCheckout counts a checkout attempt.
func RecordCheckout(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	ordersCheckedOutTotal.WithLabelValues(result).Inc()
}
