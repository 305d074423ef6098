package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Authentication & Authorization Errors (AUTH_*)
	ErrorCodeAuthMissing      ErrorCode = "AUTH_MISSING"
	ErrorCodeAuthInvalid      ErrorCode = "AUTH_INVALID"
	ErrorCodeAuthForbidden    ErrorCode = "AUTH_FORBIDDEN"
	ErrorCodeAuthBadSignature ErrorCode = "AUTH_BAD_SIGNATURE"

	// Order Errors (ORDER_*)
	ErrorCodeOrderNotFound     ErrorCode = "ORDER_NOT_FOUND"
	ErrorCodeOrderItemNotFound ErrorCode = "ORDER_ITEM_NOT_FOUND"
	ErrorCodeOrderInvalidState ErrorCode = "ORDER_INVALID_STATE"

	// Shipment Errors (SHIPMENT_*)
	ErrorCodeShipmentNotFound ErrorCode = "SHIPMENT_NOT_FOUND"

	// Payment Errors (PAYMENT_*)
	ErrorCodePaymentNotFound ErrorCode = "PAYMENT_NOT_FOUND"
	ErrorCodeRefundConflict  ErrorCode = "PAYMENT_REFUND_CONFLICT"

	// Catalog Errors (CATALOG_*)
	ErrorCodeProductNotFound  ErrorCode = "CATALOG_PRODUCT_NOT_FOUND"
	ErrorCodeCategoryNotFound ErrorCode = "CATALOG_CATEGORY_NOT_FOUND"
	ErrorCodeReviewNotFound   ErrorCode = "CATALOG_REVIEW_NOT_FOUND"
	ErrorCodeOutOfStock       ErrorCode = "CATALOG_OUT_OF_STOCK"

	// Cart Errors (CART_*)
	ErrorCodeCartNotFound     ErrorCode = "CART_NOT_FOUND"
	ErrorCodeCartItemNotFound ErrorCode = "CART_ITEM_NOT_FOUND"

	// Seller Errors (SELLER_*)
	ErrorCodeSellerNotFound ErrorCode = "SELLER_NOT_FOUND"
	ErrorCodeSellerExists   ErrorCode = "SELLER_ALREADY_EXISTS"

	// Validation Errors (VALIDATION_*)
	ErrorCodeValidationFailed       ErrorCode = "VALIDATION_FAILED"
	ErrorCodeValidationMissingField ErrorCode = "VALIDATION_MISSING_FIELD"
	ErrorCodeMalformedPayload       ErrorCode = "VALIDATION_MALFORMED_PAYLOAD"

	// Courier/Gateway Errors (COURIER_*, GATEWAY_*)
	ErrorCodeCourierAuthFailed  ErrorCode = "COURIER_AUTH_FAILED"
	ErrorCodeCourierUnavailable ErrorCode = "COURIER_UNAVAILABLE"
	ErrorCodeCourierRejected    ErrorCode = "COURIER_REJECTED"
	ErrorCodeGatewayUnavailable ErrorCode = "GATEWAY_UNAVAILABLE"
	ErrorCodeGatewayRejected    ErrorCode = "GATEWAY_REJECTED"

	// Internal Errors (INTERNAL_*)
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
	ErrorCodeDatabaseError ErrorCode = "INTERNAL_DATABASE_ERROR"
)

// DomainError represents a structured domain error with error code and context
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail field to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// NewDomainErrorWithDetails creates a domain error carrying one detail string
func NewDomainErrorWithDetails(code ErrorCode, message, detail string) *DomainError {
	return NewDomainError(code, message).WithDetail("detail", detail)
}

// WrapError wraps an existing error with a domain error code
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// IsDomainError checks if an error is a DomainError with the given code
func IsDomainError(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error, returns empty string if not a DomainError
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsNotFoundError checks if an error represents a "not found" condition
func IsNotFoundError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeOrderNotFound ||
		code == ErrorCodeOrderItemNotFound ||
		code == ErrorCodeShipmentNotFound ||
		code == ErrorCodePaymentNotFound ||
		code == ErrorCodeProductNotFound ||
		code == ErrorCodeCategoryNotFound ||
		code == ErrorCodeReviewNotFound ||
		code == ErrorCodeCartNotFound ||
		code == ErrorCodeCartItemNotFound ||
		code == ErrorCodeSellerNotFound
}

// IsAuthError checks if an error is authentication/authorization related
func IsAuthError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeAuthMissing ||
		code == ErrorCodeAuthInvalid ||
		code == ErrorCodeAuthForbidden ||
		code == ErrorCodeAuthBadSignature
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeValidationFailed ||
		code == ErrorCodeValidationMissingField ||
		code == ErrorCodeMalformedPayload
}

// Structured error instances
var (
	ErrAuthMissing   = NewDomainError(ErrorCodeAuthMissing, "authentication required")
	ErrAuthInvalid   = NewDomainError(ErrorCodeAuthInvalid, "invalid authentication")
	ErrAuthForbidden = NewDomainError(ErrorCodeAuthForbidden, "access denied")

	ErrOrderNotFound     = NewDomainError(ErrorCodeOrderNotFound, "order not found")
	ErrOrderItemNotFound = NewDomainError(ErrorCodeOrderItemNotFound, "order item not found")
	ErrOrderInvalidState = NewDomainError(ErrorCodeOrderInvalidState, "order is in invalid state for this operation")

	ErrShipmentNotFound = NewDomainError(ErrorCodeShipmentNotFound, "shipment not found")

	ErrPaymentNotFound = NewDomainError(ErrorCodePaymentNotFound, "payment not found")

	ErrProductNotFound  = NewDomainError(ErrorCodeProductNotFound, "product not found")
	ErrCategoryNotFound = NewDomainError(ErrorCodeCategoryNotFound, "category not found")
	ErrReviewNotFound   = NewDomainError(ErrorCodeReviewNotFound, "review not found")
	ErrOutOfStock       = NewDomainError(ErrorCodeOutOfStock, "insufficient stock")

	ErrCartNotFound     = NewDomainError(ErrorCodeCartNotFound, "cart not found")
	ErrCartItemNotFound = NewDomainError(ErrorCodeCartItemNotFound, "cart item not found")

	ErrSellerNotFound = NewDomainError(ErrorCodeSellerNotFound, "seller not found")
	ErrSellerExists   = NewDomainError(ErrorCodeSellerExists, "seller already exists")

	ErrValidationFailed = NewDomainError(ErrorCodeValidationFailed, "validation failed")
	ErrMalformedPayload = NewDomainError(ErrorCodeMalformedPayload, "malformed payload")

	ErrInternalError = NewDomainError(ErrorCodeInternalError, "internal server error")
	ErrDatabaseError = NewDomainError(ErrorCodeDatabaseError, "database error")
)
