package errors

import (
	"errors"
	"fmt"
)

// Code classifies an application error. Codes are stable strings so they
// can be returned to API clients and matched by tests.
type Code string

const (
	CodeAuth              Code = "AUTH_ERROR"
	CodeValidation        Code = "VALIDATION_ERROR"
	CodeInvalidTransition Code = "INVALID_TRANSITION"
	CodeNotFound          Code = "NOT_FOUND"
	CodeVersionConflict   Code = "VERSION_CONFLICT"
	CodeStore             Code = "STORE_ERROR"
	CodeNotification      Code = "NOTIFICATION_ERROR"
)

// AppError represents an application error
type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Error constructors

func NewAuth(message string) *AppError {
	return &AppError{Code: CodeAuth, Message: message}
}

func NewValidation(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message}
}

func NewInvalidTransition(from, to, role string) *AppError {
	return &AppError{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("%s may not move appointment from %s to %s", role, from, to),
	}
}

func NewNotFound(resource string) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func NewVersionConflict() *AppError {
	return &AppError{Code: CodeVersionConflict, Message: "record was modified concurrently"}
}

func NewStore(err error) *AppError {
	return &AppError{Code: CodeStore, Message: "storage operation failed", Err: err}
}

func NewNotification(err error) *AppError {
	return &AppError{Code: CodeNotification, Message: "notification delivery failed", Err: err}
}

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

func IsNotFound(err error) bool        { return HasCode(err, CodeNotFound) }
func IsVersionConflict(err error) bool { return HasCode(err, CodeVersionConflict) }
func IsAuth(err error) bool            { return HasCode(err, CodeAuth) }
func IsValidation(err error) bool      { return HasCode(err, CodeValidation) }
func IsInvalidTransition(err error) bool {
	return HasCode(err, CodeInvalidTransition)
}
