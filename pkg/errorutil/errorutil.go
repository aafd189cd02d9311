package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/qna-service/internal/domain"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
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

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewAlreadyAnswered() error {
	return NewDomainError("ALREADY_ANSWERED", "post already has an answer", http.StatusConflict, nil)
}

func NewNotAnswered() error {
	return NewDomainError("NOT_ANSWERED", "post has no answer", http.StatusConflict, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts workflow and storage errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	var validation *domain.ValidationError
	switch {
	case errors.As(err, &validation):
		details := map[string]any{}
		if len(validation.Fields) > 0 {
			details["fields"] = validation.Fields
		}
		err = NewValidationError(validation.Error(), details)
	case errors.Is(err, domain.ErrPostNotFound), errors.Is(err, pgx.ErrNoRows):
		err = NewNotFound("post", nil)
	case errors.Is(err, domain.ErrSecretMismatch):
		err = NewUnauthorized("secret does not match")
	case errors.Is(err, domain.ErrAlreadyAnswered):
		err = NewAlreadyAnswered()
	case errors.Is(err, domain.ErrNotAnswered):
		err = NewNotAnswered()
	default:
		err = NewInternalError(err)
	}

	if de, ok := err.(*DomainError); ok {
		return de
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
