package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an application error so callers can react without parsing messages
type Kind string

const (
	KindNotFound            Kind = "NotFound"
	KindValidation          Kind = "ValidationError"
	KindEmptyOrder          Kind = "EmptyOrder"
	KindInvalidAmount       Kind = "InvalidAmount"
	KindInvalidTransition   Kind = "InvalidTransition"
	KindStaleOrderState     Kind = "StaleOrderState"
	KindOverpaymentRejected Kind = "OverpaymentRejected"
	KindPaymentFailure      Kind = "PaymentFailure"
	KindPartialSagaFailure  Kind = "PartialSagaFailure"
	KindUnauthorized        Kind = "Unauthorized"
	KindForbidden           Kind = "Forbidden"
	KindConflict            Kind = "Conflict"
	KindBadRequest          Kind = "BadRequest"
	KindInternal            Kind = "Internal"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Kind    Kind         `json:"kind"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	Details interface{}  `json:"details,omitempty"`
	cause   error
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap exposes the underlying cause, if any
func (e *AppError) Unwrap() error {
	return e.cause
}

// Is matches on Kind so errors.Is(err, apperror.ErrStaleOrderState) works for any instance
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind != "" && t.Kind == e.Kind
}

// WithDetails returns a copy of the error carrying extra payload for the client
func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// Wrap returns a copy of the error that records cause
func (e *AppError) Wrap(cause error) *AppError {
	cp := *e
	cp.cause = cause
	return &cp
}

// Common errors
var (
	ErrNotFound            = &AppError{Code: http.StatusNotFound, Kind: KindNotFound, Message: "Resource not found"}
	ErrUnauthorized        = &AppError{Code: http.StatusUnauthorized, Kind: KindUnauthorized, Message: "Unauthorized"}
	ErrForbidden           = &AppError{Code: http.StatusForbidden, Kind: KindForbidden, Message: "Forbidden"}
	ErrBadRequest          = &AppError{Code: http.StatusBadRequest, Kind: KindBadRequest, Message: "Bad request"}
	ErrInternalServer      = &AppError{Code: http.StatusInternalServerError, Kind: KindInternal, Message: "Internal server error"}
	ErrConflict            = &AppError{Code: http.StatusConflict, Kind: KindConflict, Message: "Resource already exists"}
	ErrValidation          = &AppError{Code: http.StatusUnprocessableEntity, Kind: KindValidation, Message: "Validation failed"}
	ErrEmptyOrder          = &AppError{Code: http.StatusUnprocessableEntity, Kind: KindEmptyOrder, Message: "Order must contain at least one line"}
	ErrInvalidAmount       = &AppError{Code: http.StatusUnprocessableEntity, Kind: KindInvalidAmount, Message: "Amount must be greater than zero"}
	ErrInvalidTransition   = &AppError{Code: http.StatusConflict, Kind: KindInvalidTransition, Message: "Order status transition is not allowed"}
	ErrStaleOrderState     = &AppError{Code: http.StatusConflict, Kind: KindStaleOrderState, Message: "Order was changed by another user"}
	ErrOverpaymentRejected = &AppError{Code: http.StatusUnprocessableEntity, Kind: KindOverpaymentRejected, Message: "Payment exceeds the outstanding due amount"}
	ErrPaymentFailure      = &AppError{Code: http.StatusPaymentRequired, Kind: KindPaymentFailure, Message: "Payment provider error"}
	ErrPartialSagaFailure  = &AppError{Code: http.StatusInternalServerError, Kind: KindPartialSagaFailure, Message: "Bill was saved but a follow-up step failed"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindValidation,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewFieldError is a shorthand for a validation error on a single field
func NewFieldError(field, message string) *AppError {
	return NewValidationError([]FieldError{{Field: field, Message: message}})
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Kind:    KindNotFound,
		Message: resource + " not found",
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindConflict,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Kind:    KindBadRequest,
		Message: message,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// KindOf returns the Kind of err, or KindInternal for foreign errors
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindInternal,
		Message: err.Error(),
	}
}
