package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDomainErrors_OrderErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{
			name:     "order_not_found",
			err:      ErrOrderNotFound,
			contains: "order not found",
		},
		{
			name:     "order_item_not_found",
			err:      ErrOrderItemNotFound,
			contains: "order item not found",
		},
		{
			name:     "order_invalid_state",
			err:      ErrOrderInvalidState,
			contains: "invalid state",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Errorf("expected error to be defined, got nil")
			}
			if !strings.Contains(strings.ToLower(tt.err.Error()), tt.contains) {
				t.Errorf("error message %q does not contain %q", tt.err.Error(), tt.contains)
			}
		})
	}
}

func TestDomainErrors_CatalogErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{
			name:     "product_not_found",
			err:      ErrProductNotFound,
			contains: "product not found",
		},
		{
			name:     "category_not_found",
			err:      ErrCategoryNotFound,
			contains: "category not found",
		},
		{
			name:     "review_not_found",
			err:      ErrReviewNotFound,
			contains: "review not found",
		},
		{
			name:     "out_of_stock",
			err:      ErrOutOfStock,
			contains: "insufficient stock",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Errorf("expected error to be defined, got nil")
			}
			if !strings.Contains(strings.ToLower(tt.err.Error()), tt.contains) {
				t.Errorf("error message %q does not contain %q", tt.err.Error(), tt.contains)
			}
		})
	}
}

func TestDomainErrors_Wrapping(t *testing.T) {
	base := fmt.Errorf("connection refused")
	wrapped := WrapError(ErrorCodeDatabaseError, "query failed", base)

	if !errors.Is(wrapped, base) {
		t.Errorf("expected wrapped error to match base via errors.Is")
	}

	var domainErr *DomainError
	if !errors.As(wrapped, &domainErr) {
		t.Fatalf("expected errors.As to find a DomainError")
	}
	if domainErr.Code != ErrorCodeDatabaseError {
		t.Errorf("expected code %s, got %s", ErrorCodeDatabaseError, domainErr.Code)
	}
	if !strings.Contains(wrapped.Error(), "query failed") {
		t.Errorf("wrapped error message should contain the context message")
	}
}

func TestDomainErrors_Details(t *testing.T) {
	err := NewDomainErrorWithDetails(ErrorCodeCourierRejected, "courier rejected request", "bad pincode")

	if err.Details["detail"] != "bad pincode" {
		t.Errorf("expected detail to be stored, got %v", err.Details["detail"])
	}

	err.WithDetail("awb", "AWB123")
	if err.Details["awb"] != "AWB123" {
		t.Errorf("expected chained detail to be stored, got %v", err.Details["awb"])
	}
}

func TestDomainErrors_Classification(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		notFound   bool
		authErr    bool
		validation bool
	}{
		{
			name:     "shipment_not_found",
			err:      ErrShipmentNotFound,
			notFound: true,
		},
		{
			name:     "payment_not_found",
			err:      ErrPaymentNotFound,
			notFound: true,
		},
		{
			name:    "auth_missing",
			err:     ErrAuthMissing,
			authErr: true,
		},
		{
			name:    "auth_forbidden",
			err:     ErrAuthForbidden,
			authErr: true,
		},
		{
			name:       "malformed_payload",
			err:        ErrMalformedPayload,
			validation: true,
		},
		{
			name: "plain_error_is_nothing",
			err:  errors.New("boom"),
		},
		{
			name:     "wrapped_not_found_still_classifies",
			err:      fmt.Errorf("lookup: %w", ErrSellerNotFound),
			notFound: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFoundError(tt.err); got != tt.notFound {
				t.Errorf("IsNotFoundError = %v, want %v", got, tt.notFound)
			}
			if got := IsAuthError(tt.err); got != tt.authErr {
				t.Errorf("IsAuthError = %v, want %v", got, tt.authErr)
			}
			if got := IsValidationError(tt.err); got != tt.validation {
				t.Errorf("IsValidationError = %v, want %v", got, tt.validation)
			}
		})
	}
}

func TestDomainErrors_GetErrorCode(t *testing.T) {
	refundErr := NewDomainError(ErrorCodeRefundConflict, "order item is already refunded")
	if code := GetErrorCode(refundErr); code != ErrorCodeRefundConflict {
		t.Errorf("expected %s, got %s", ErrorCodeRefundConflict, code)
	}
	if code := GetErrorCode(errors.New("plain")); code != "" {
		t.Errorf("expected empty code for plain error, got %s", code)
	}
}
