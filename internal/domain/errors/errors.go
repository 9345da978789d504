package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrBadRequest    = errors.New("bad request")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")

	// Configuration/mapping gaps — fail closed, never fall back to a
	// default network or asset.
	ErrUnsupportedNetwork = errors.New("unsupported network")
	ErrUnsupportedAsset   = errors.New("unsupported asset")
	ErrUnsupportedRoute   = errors.New("unsupported route")

	// Settlement flow errors
	ErrValidation            = errors.New("validation failed")
	ErrChainRead             = errors.New("chain read failed")
	ErrUserRejected          = errors.New("user rejected signature")
	ErrNetworkSwitch         = errors.New("network switch failed")
	ErrQuoteUnavailable      = errors.New("quote unavailable")
	ErrSettlementBuildFailed = errors.New("settlement transaction build failed")
	ErrTransactionFailed     = errors.New("transaction failed")

	ErrRequestNotPending = errors.New("payment request is not pending")
)

// AppError represents an application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the wrapped domain error for errors.Is checks
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, message, ErrForbidden)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, message, ErrAlreadyExists)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "internal server error", err)
}

// Validation wraps ErrValidation with a specific message
func Validation(message string) *AppError {
	return NewAppError(http.StatusUnprocessableEntity, message, ErrValidation)
}
