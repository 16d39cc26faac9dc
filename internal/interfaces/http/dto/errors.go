package dto

import "net/http"

// Transport-level error codes emitted by handlers and middleware.
// Format: ERR_<CATEGORY>_<DESCRIPTION>
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// ErrorCodeHTTPStatus maps transport-level error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState: http.StatusUnprocessableEntity,
}

// DomainCodeHTTPStatus maps domain error codes to HTTP status codes.
// Validation failures are 400, missing aggregates 404, state machine
// violations 422, write races 409, credential problems 401/403.
var DomainCodeHTTPStatus = map[string]int{
	// Field validation
	"INVALID_INPUT":           http.StatusBadRequest,
	"INVALID_INVOICE_NUMBER":  http.StatusBadRequest,
	"INVALID_CUSTOMER_NAME":   http.StatusBadRequest,
	"INVALID_CHANNEL":         http.StatusBadRequest,
	"INVALID_CONTRACT":        http.StatusBadRequest,
	"INVALID_TXN_DATE":        http.StatusBadRequest,
	"INVALID_QUANTITY":        http.StatusBadRequest,
	"INVALID_RATE":            http.StatusBadRequest,
	"INVALID_SURCHARGE":       http.StatusBadRequest,
	"INVALID_AMOUNT":          http.StatusBadRequest,
	"INVALID_METHOD":          http.StatusBadRequest,
	"INVALID_STATUS":          http.StatusBadRequest,
	"INVALID_CONTRACT_NUMBER": http.StatusBadRequest,
	"INVALID_VENDOR_NAME":     http.StatusBadRequest,
	"INVALID_ADVANCE":         http.StatusBadRequest,
	"INVALID_START_DATE":      http.StatusBadRequest,
	"INVALID_REASON":          http.StatusBadRequest,
	"INVALID_USERNAME":        http.StatusBadRequest,
	"INVALID_PASSWORD":        http.StatusBadRequest,
	"INVALID_DISPLAY_NAME":    http.StatusBadRequest,
	"INVALID_EMAIL":           http.StatusBadRequest,

	// Missing resources
	"NOT_FOUND":      http.StatusNotFound,
	"USER_NOT_FOUND": http.StatusNotFound,

	// Conflicts
	"ALREADY_EXISTS":           http.StatusConflict,
	"DUPLICATE_INVOICE_NUMBER": http.StatusConflict,
	"USERNAME_TAKEN":           http.StatusConflict,
	"CONCURRENCY_CONFLICT":     http.StatusConflict,

	// State machine violations
	"INVALID_STATE":       http.StatusUnprocessableEntity,
	"EXCEEDS_PENDING":     http.StatusUnprocessableEntity,
	"ALREADY_DEACTIVATED": http.StatusUnprocessableEntity,

	// Authentication and account standing
	"UNAUTHORIZED":        http.StatusUnauthorized,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"TOKEN_EXPIRED":       http.StatusUnauthorized,
	"TOKEN_INVALID":       http.StatusUnauthorized,
	"TOKEN_MAX_REFRESH":   http.StatusUnauthorized,
	"FORBIDDEN":           http.StatusForbidden,
	"ACCOUNT_LOCKED":      http.StatusForbidden,
	"ACCOUNT_DEACTIVATED": http.StatusForbidden,
	"ACCOUNT_INACTIVE":    http.StatusForbidden,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if status, ok := DomainCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// internalCodeMapping folds infrastructure failure codes into the generic
// internal code so implementation details never reach clients
var internalCodeMapping = map[string]string{
	"INTERNAL_ERROR":      ErrCodeInternal,
	"PASSWORD_HASH_ERROR": ErrCodeInternal,
	"TOKEN_ERROR":         ErrCodeInternal,
	"ALLOCATION_MISMATCH": ErrCodeInternal,
}

// NormalizeErrorCode rewrites internal-only error codes to the generic
// internal code. Domain codes with a defined HTTP mapping pass through
// unchanged so clients can branch on them.
func NormalizeErrorCode(code string) string {
	if mapped, ok := internalCodeMapping[code]; ok {
		return mapped
	}
	return code
}
