package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrPaymentNotFound is returned when no payment row exists for a reference.
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrEventNotFound is returned when no IPN event exists for a reference.
	ErrEventNotFound = errors.New("ipn event not found")
	// ErrNotConfigured is returned when PayFast merchant credentials are missing.
	ErrNotConfigured = errors.New("payfast is not configured")
	// ErrInvalidAmount is returned when an amount cannot be parsed or is not positive.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidStatus is returned when an operator override uses an unknown status.
	ErrInvalidStatus = errors.New("invalid payment status")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrPaymentNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "PAYMENT_NOT_FOUND")
	case errors.Is(err, ErrEventNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "EVENT_NOT_FOUND")
	case errors.Is(err, ErrNotConfigured):
		return NewHTTPError(http.StatusServiceUnavailable, err.Error(), "NOT_CONFIGURED")
	case errors.Is(err, ErrInvalidAmount):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_AMOUNT")
	case errors.Is(err, ErrInvalidStatus):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_STATUS")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
