package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// DomainError standardizes application errors across service boundaries.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// New constructs a DomainError.
func New(code, message string, status int) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status}
}

func NewBadRequest(message string) error {
	return New("BAD_REQUEST", message, http.StatusBadRequest)
}

func NewUnauthorized(message string) error {
	return New("UNAUTHORIZED", message, http.StatusUnauthorized)
}

func NewForbidden(message string) error {
	return New("FORBIDDEN", message, http.StatusForbidden)
}

func NewNotFound(resource string) error {
	return New("NOT_FOUND", fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func NewConflict(message string) error {
	return New("CONFLICT", message, http.StatusConflict)
}

func NewUnprocessable(message string) error {
	return New("UNPROCESSABLE_ENTITY", message, http.StatusUnprocessableEntity)
}

func NewInternal(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError. Unknown errors map to
// INTERNAL_ERROR so internals never leak to clients.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return New("NOT_FOUND", "resource not found", http.StatusNotFound)
	}
	de := &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
	return de
}

// MapError wraps ToDomainError for call sites returning error.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}
