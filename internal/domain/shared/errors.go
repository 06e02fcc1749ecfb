package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorWithDetails creates a new domain error carrying structured details
// (offending status, available vs requested quantities, per-serial failures)
func NewDomainErrorWithDetails(code, message string, details map[string]any) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Error codes for the posting taxonomy
const (
	CodeTenantMismatch    = "TENANT_MISMATCH"
	CodeWorkflowViolation = "WORKFLOW_VIOLATION"
	CodeNotFound          = "NOT_FOUND"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeSerialUnavailable = "SERIAL_UNAVAILABLE"
	CodeValidationFailure = "VALIDATION_FAILURE"
)

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrTenantMismatch      = NewDomainError(CodeTenantMismatch, "Asserted tenant does not match resolved tenant")
	ErrValidationFailure   = NewDomainError(CodeValidationFailure, "Invalid input provided")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Role does not permit this action")
)

// WorkflowViolation builds a WORKFLOW_VIOLATION error naming the offending status
func WorkflowViolation(message, offendingStatus string) *DomainError {
	return NewDomainErrorWithDetails(CodeWorkflowViolation, message, map[string]any{
		"status": offendingStatus,
	})
}

// InsufficientStock builds an INSUFFICIENT_STOCK error carrying the available
// and requested quantities
func InsufficientStock(available, requested int64) *DomainError {
	return NewDomainErrorWithDetails(CodeInsufficientStock, "Insufficient stock available", map[string]any{
		"available": available,
		"requested": requested,
	})
}

// SerialUnavailable builds a SERIAL_UNAVAILABLE error for a specific serial number
func SerialUnavailable(serialNumber, reason string) *DomainError {
	return NewDomainErrorWithDetails(CodeSerialUnavailable, "Serial unit is not available: "+reason, map[string]any{
		"serial_number": serialNumber,
	})
}

// IsCode reports whether err is a DomainError with the given code
func IsCode(err error, code string) bool {
	de, ok := err.(*DomainError)
	return ok && de.Code == code
}
