package dto

import "net/http"

// Error codes. Domain codes are returned unchanged; the rest originate in
// the HTTP layer.
const (
	ErrCodeAuthenticationRequired = "AUTHENTICATION_REQUIRED"
	ErrCodeNotFound               = "NOT_FOUND"
	ErrCodeAlreadyExists          = "ALREADY_EXISTS"
	ErrCodeInvalidInput           = "INVALID_INPUT"
	ErrCodeInvalidState           = "INVALID_STATE"
	ErrCodeAdapterNotConfigured   = "ADAPTER_NOT_CONFIGURED"
	ErrCodeAdapterCallFailed      = "ADAPTER_CALL_FAILED"
	ErrCodeDuplicateMatch         = "DUPLICATE_MATCH"
	ErrCodeInventorySyncFailed    = "INVENTORY_SYNC_FAILED"

	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeAuthenticationRequired: http.StatusUnauthorized,
	ErrCodeNotFound:               http.StatusNotFound,
	ErrCodeAlreadyExists:          http.StatusConflict,
	ErrCodeInvalidInput:           http.StatusBadRequest,
	ErrCodeInvalidState:           http.StatusConflict,
	ErrCodeAdapterNotConfigured:   http.StatusUnprocessableEntity,
	ErrCodeAdapterCallFailed:      http.StatusBadGateway,
	ErrCodeDuplicateMatch:         http.StatusConflict,
	ErrCodeInventorySyncFailed:    http.StatusBadGateway,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeInternal:        http.StatusInternalServerError,
}

// GetHTTPStatus returns the status for code, 500 for unknown codes
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
