package reconciliation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vendoria/commerce-service/internal/domain"
	"github.com/vendoria/commerce-service/internal/domain/models"
	"github.com/vendoria/commerce-service/internal/gateway"
)

var minorUnitsPerMajor = decimal.NewFromInt(100)

// ReconcileRefund applies a verified gateway refund event to the matching
// order item. The item is located by its stored refund id first, then by the
// parent order's payment transaction id; when a shared payment could match
// several items of a multi-item order, only the first is updated.
//
// Callers must have verified the webhook signature; this trusts its input.
func (s *Service) ReconcileRefund(ctx context.Context, ev *gateway.Event) (Result, error) {
	refund := ev.Payload.Refund.Entity
	paymentID := refund.PaymentID
	if paymentID == "" {
		paymentID = ev.Payload.Payment.Entity.ID
	}

	item, err := s.items.GetByRefundID(ctx, nil, refund.ID)
	if err != nil {
		if !domain.IsDomainError(err, domain.ErrorCodeOrderItemNotFound) {
			return Result{}, fmt.Errorf("look up item by refund id: %w", err)
		}
		item, err = s.items.GetByPaymentTransactionID(ctx, nil, paymentID)
		if err != nil {
			if domain.IsDomainError(err, domain.ErrorCodeOrderItemNotFound) {
				s.logger.Warn("Refund webhook matched no order item",
					zap.String("refund_id", refund.ID),
					zap.String("payment_id", paymentID),
					zap.String("event", ev.Event),
				)
				return Result{Outcome: OutcomeUnknownReference}, nil
			}
			return Result{}, fmt.Errorf("look up item by transaction id: %w", err)
		}
	}

	// Gateway amounts arrive in minor currency units.
	amount := decimal.NewFromInt(refund.Amount).Div(minorUnitsPerMajor)

	upd := models.RefundUpdate{
		RefundID:       refund.ID,
		RefundStatus:   refund.Status,
		IsRefunded:     refund.Status == models.RefundStatusProcessed,
		RefundedAmount: amount,
	}
	if err := s.items.UpdateRefund(ctx, nil, item.ID, upd); err != nil {
		return Result{}, fmt.Errorf("update item refund state: %w", err)
	}

	s.logger.Info("Refund webhook reconciled",
		zap.String("order_item_id", item.ID.String()),
		zap.String("refund_id", refund.ID),
		zap.String("refund_status", refund.Status),
		zap.Bool("is_refunded", upd.IsRefunded),
		zap.String("refunded_amount", amount.String()),
	)

	return Result{Outcome: OutcomeApplied, ItemsUpdated: 1}, nil
}
