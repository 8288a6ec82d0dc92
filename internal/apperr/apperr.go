// Package apperr defines the errors the service layer hands to the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes.
const (
	CodeUnauthenticated = "NOT_AUTHENTICATED"
	CodeForbidden       = "PERMISSION_DENIED"
	CodeNotFound        = "NOT_FOUND"
	CodeValidation      = "VALIDATION_FAILED"
	CodeBadRequest      = "BAD_REQUEST"
	CodeReferenced      = "REFERENCED"
	CodeInternal        = "INTERNAL_ERROR"
)

// NonFieldKey holds record-level validation messages.
const NonFieldKey = "non_field_errors"

// Fields maps a field name (or NonFieldKey) to its messages.
type Fields map[string][]string

// Add appends a message for field.
func (f Fields) Add(field, message string) {
	f[field] = append(f[field], message)
}

// Merge appends every message of other.
func (f Fields) Merge(other Fields) {
	for field, msgs := range other {
		f[field] = append(f[field], msgs...)
	}
}

// Has reports whether field already failed.
func (f Fields) Has(field string) bool {
	return len(f[field]) > 0
}

// AppError is a request-terminal error with its HTTP status.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Fields     Fields
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Unauthenticated is a missing or rejected credential.
func Unauthenticated(message string) *AppError {
	return &AppError{Code: CodeUnauthenticated, Message: message, HTTPStatus: http.StatusUnauthorized}
}

// Forbidden is an authenticated actor lacking the write permission.
func Forbidden() *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    "You do not have permission to perform this action.",
		HTTPStatus: http.StatusForbidden,
	}
}

// NotFound covers absent rows and rows outside the actor's scope alike.
func NotFound() *AppError {
	return &AppError{Code: CodeNotFound, Message: "Not found.", HTTPStatus: http.StatusNotFound}
}

// Validation carries every field and record-level violation of a request.
func Validation(fields Fields) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    "Invalid input.",
		HTTPStatus: http.StatusBadRequest,
		Fields:     fields,
	}
}

// BadRequest is a request the server could not decode.
func BadRequest(message string, err error) *AppError {
	return &AppError{Code: CodeBadRequest, Message: message, HTTPStatus: http.StatusBadRequest, Err: err}
}

// Referenced blocks a delete of a row other rows still point to.
func Referenced(message string, err error) *AppError {
	return &AppError{Code: CodeReferenced, Message: message, HTTPStatus: http.StatusConflict, Err: err}
}

// Internal wraps an unexpected failure.
func Internal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "A server error occurred.",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// From returns err as an *AppError, wrapping unknown errors as Internal.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
