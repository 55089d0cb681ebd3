// internal/apperrors/apperrors.go
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-checkable error codes returned in API responses.
const (
	CodeValidationFailed       = "VALIDATION_FAILED"
	CodeNotFound               = "NOT_FOUND"
	CodeConflict               = "CONFLICT"
	CodeInsufficientStock      = "INSUFFICIENT_STOCK"
	CodeStorageFailure         = "STORAGE_FAILURE"
	CodeExternalServiceFailure = "EXTERNAL_SERVICE_FAILURE"
)

// AppError carries a stable code and HTTP status alongside the message.
// Handlers map it to the response envelope; internal detail stays in the
// wrapped parent error and is logged, never exposed.
type AppError struct {
	Code    string
	Status  int
	Message string
	Details interface{}
	parent  error
}

func (e *AppError) Error() string {
	if e.parent != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.parent)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.parent
}

// WrapParent attaches an underlying cause while keeping code and status.
func (e *AppError) WrapParent(parent error) *AppError {
	return &AppError{
		Code:    e.Code,
		Status:  e.Status,
		Message: e.Message,
		Details: e.Details,
		parent:  parent,
	}
}

func NewValidationFailed(message string, details interface{}) *AppError {
	return &AppError{Code: CodeValidationFailed, Status: http.StatusBadRequest, Message: message, Details: details}
}

func NewNotFound(resource string) *AppError {
	return &AppError{Code: CodeNotFound, Status: http.StatusNotFound, Message: resource + " not found"}
}

func NewConflict(message string) *AppError {
	return &AppError{Code: CodeConflict, Status: http.StatusConflict, Message: message}
}

// NewInsufficientStock reports a sale that would overdraw on-hand stock.
func NewInsufficientStock(available, requested int) *AppError {
	return &AppError{
		Code:    CodeInsufficientStock,
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf("Insufficient stock. Available: %d, Requested: %d", available, requested),
		Details: map[string]int{"available": available, "requested": requested},
	}
}

// NewStorageFailure wraps an infrastructure-level error. The atomic unit
// it interrupted has been rolled back, so the caller may retry.
func NewStorageFailure(parent error) *AppError {
	return &AppError{
		Code:    CodeStorageFailure,
		Status:  http.StatusInternalServerError,
		Message: "storage operation failed",
		parent:  parent,
	}
}

func NewExternalServiceFailure(parent error) *AppError {
	return &AppError{
		Code:    CodeExternalServiceFailure,
		Status:  http.StatusBadGateway,
		Message: "external service failed",
		parent:  parent,
	}
}

// As extracts an *AppError from an error chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether err carries the given application error code.
func IsCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}
