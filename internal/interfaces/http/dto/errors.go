package dto

import "net/http"

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "INVALID_JSON"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeForbidden is used when the caller's role denies the action
	ErrCodeForbidden = "FORBIDDEN"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "TOKEN_INVALID"
)

// Domain error codes carried through from the application layer
const (
	// ErrCodeTenantMismatch is used when the asserted tenant does not match
	// the caller's resolved tenant
	ErrCodeTenantMismatch = "TENANT_MISMATCH"
	// ErrCodeWorkflowViolation is used when a document is not in the status
	// an operation requires
	ErrCodeWorkflowViolation = "WORKFLOW_VIOLATION"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	// ErrCodeInsufficientStock is used when projected stock cannot cover a sale
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	// ErrCodeSerialUnavailable is used when a serial unit cannot serve a
	// reservation or consumption
	ErrCodeSerialUnavailable = "SERIAL_UNAVAILABLE"
	// ErrCodeValidationFailure is used for invalid input data
	ErrCodeValidationFailure = "VALIDATION_FAILURE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeTenantMismatch:      http.StatusForbidden,
	ErrCodeWorkflowViolation:   http.StatusConflict,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeInsufficientStock:   http.StatusUnprocessableEntity,
	ErrCodeSerialUnavailable:   http.StatusConflict,
	ErrCodeValidationFailure:   http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
