package dto

import (
	"net/http"
	"strings"

	"github.com/shopman/backend/internal/domain/shared"
)

// Error codes returned by the API. Format: ERR_<DESCRIPTION>

// General
const (
	ErrCodeInternal           = "ERR_INTERNAL"
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"
)

// Request shape
const (
	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
	ErrCodeRateLimited     = "ERR_RATE_LIMITED"
)

// Resources
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeDuplicateRequest    = "ERR_DUPLICATE_REQUEST"
)

// Ledger rules
const (
	ErrCodeInvalidState          = "ERR_INVALID_STATE"
	ErrCodeInvalidTransition     = "ERR_INVALID_TRANSITION"
	ErrCodeInsufficientStock     = "ERR_INSUFFICIENT_STOCK"
	ErrCodePaymentExceedsDue     = "ERR_PAYMENT_EXCEEDS_DUE"
	ErrCodeInvalidDateRange      = "ERR_INVALID_DATE_RANGE"
	ErrCodeCustomerRequired      = "ERR_CUSTOMER_REQUIRED"
	ErrCodeInvalidPrice          = "ERR_INVALID_PRICE"
	ErrCodeReturnExceedsQuantity = "ERR_RETURN_EXCEEDS_QUANTITY"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,

	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeDuplicateRequest:    http.StatusConflict,

	ErrCodeInvalidState:          http.StatusUnprocessableEntity,
	ErrCodeInvalidTransition:     http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:     http.StatusUnprocessableEntity,
	ErrCodePaymentExceedsDue:     http.StatusUnprocessableEntity,
	ErrCodeInvalidDateRange:      http.StatusUnprocessableEntity,
	ErrCodeCustomerRequired:      http.StatusUnprocessableEntity,
	ErrCodeInvalidPrice:          http.StatusUnprocessableEntity,
	ErrCodeReturnExceedsQuantity: http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status for an error code.
// Unlisted ERR_INVALID_* codes are field rejections (400); anything else is 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "ERR_INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// domainCodes maps DomainError codes to API codes
var domainCodes = map[string]string{
	shared.CodeNotFound:            ErrCodeNotFound,
	shared.CodeAlreadyExists:       ErrCodeAlreadyExists,
	shared.CodeInvalidInput:        ErrCodeInvalidInput,
	shared.CodeConcurrencyConflict: ErrCodeConcurrencyConflict,
	shared.CodeInvalidState:        ErrCodeInvalidState,
	shared.CodeInsufficientStock:   ErrCodeInsufficientStock,
	shared.CodePaymentExceedsDue:   ErrCodePaymentExceedsDue,
	shared.CodeInvalidDateRange:    ErrCodeInvalidDateRange,
	shared.CodeCustomerRequired:    ErrCodeCustomerRequired,
	shared.CodeInvalidTransition:   ErrCodeInvalidTransition,
	shared.CodeInvalidPrice:        ErrCodeInvalidPrice,
	shared.CodeReturnExceedsSold:   ErrCodeReturnExceedsQuantity,
	shared.CodeDuplicateRequest:    ErrCodeDuplicateRequest,
}

// NormalizeErrorCode converts a domain error code to its API form.
// Field codes such as INVALID_SKU become ERR_INVALID_SKU.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := domainCodes[code]; ok {
		return apiCode
	}
	if strings.HasPrefix(code, "ERR_") {
		return code
	}
	return "ERR_" + code
}
