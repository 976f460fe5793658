package dto

import "net/http"

// Error code constants, format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	// ErrCodeDuplicateRequest is used when an idempotency key is replayed
	ErrCodeDuplicateRequest = "ERR_DUPLICATE_REQUEST"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeAlreadyReconciled is used when a record was already matched
	ErrCodeAlreadyReconciled = "ERR_ALREADY_RECONCILED"
	// ErrCodeCountMismatch is used when not all requested records were found
	ErrCodeCountMismatch = "ERR_COUNT_MISMATCH"
	// ErrCodeTransactionAborted is used when a commit was rolled back
	ErrCodeTransactionAborted = "ERR_TRANSACTION_ABORTED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeDuplicateRequest:    http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeAlreadyReconciled: http.StatusUnprocessableEntity,
	ErrCodeCountMismatch:     http.StatusUnprocessableEntity,

	ErrCodeTransactionAborted: http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the standardized
// transport codes.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"ALREADY_RECONCILED":   ErrCodeAlreadyReconciled,
	"COUNT_MISMATCH":       ErrCodeCountMismatch,
	"DUPLICATE_REQUEST":    ErrCodeDuplicateRequest,
	"TRANSACTION_ABORTED":  ErrCodeTransactionAborted,

	// Aggregate construction failures surface as validation problems.
	"INVALID_FOLIO":        ErrCodeValidation,
	"INVALID_USER":         ErrCodeValidation,
	"INVALID_FISCAL_UUID":  ErrCodeValidation,
	"INVALID_AMOUNT":       ErrCodeValidation,
	"INVALID_COMPANY":      ErrCodeValidation,
	"INVALID_BANK_ACCOUNT": ErrCodeValidation,
	"INVALID_DATE":         ErrCodeValidation,
	"INVALID_CORRELATION":  ErrCodeValidation,
	"INVALID_PACKAGE":      ErrCodeValidation,

	"DUPLICATE_FISCAL_UUID": ErrCodeConflict,
	"DUPLICATE_INVOICE":     ErrCodeConflict,
}

// NormalizeErrorCode converts a domain error code to the standardized
// transport format. Codes already in the new format or unknown codes are
// returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
