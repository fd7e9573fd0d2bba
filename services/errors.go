package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/upb/quiz-client/apiclient"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeInternal     ErrorType = "internal"
	ErrorTypeExternal     ErrorType = "external"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && (t.Message == "" || t.Message == e.Message)
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// Domain error variables

var (
	ErrInvalidInput = NewDomainError(ErrorTypeValidation, "invalid input", nil)

	ErrUnauthorized       = NewDomainError(ErrorTypeUnauthorized, "unauthorized", nil)
	ErrInvalidCredentials = NewDomainError(ErrorTypeUnauthorized, "Invalid credentials", nil)
	ErrMissingToken       = NewDomainError(ErrorTypeUnauthorized, "login response did not contain an access token", nil)
	ErrInvalidToken       = NewDomainError(ErrorTypeUnauthorized, "invalid authentication token", nil)

	ErrForbidden = NewDomainError(ErrorTypeForbidden, "access forbidden", nil)
	ErrNotFound  = NewDomainError(ErrorTypeNotFound, "resource not found", nil)
	ErrConflict  = NewDomainError(ErrorTypeConflict, "resource already exists", nil)
	ErrInternal  = NewDomainError(ErrorTypeInternal, "internal server error", nil)
)

// FromHTTPError classifies an API error response by status code. The
// original *apiclient.HTTPError stays reachable through errors.As. Errors
// that are not HTTP responses (transport failures) are returned unchanged.
func FromHTTPError(err error) error {
	if err == nil {
		return nil
	}
	httpErr, ok := apiclient.AsHTTPError(err)
	if !ok {
		return err
	}

	message := httpErr.Message
	if message == "" {
		message = http.StatusText(httpErr.StatusCode)
	}

	var errType ErrorType
	switch httpErr.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		errType = ErrorTypeValidation
	case http.StatusUnauthorized:
		errType = ErrorTypeUnauthorized
	case http.StatusForbidden:
		errType = ErrorTypeForbidden
	case http.StatusNotFound:
		errType = ErrorTypeNotFound
	case http.StatusConflict:
		errType = ErrorTypeConflict
	default:
		if httpErr.StatusCode >= 500 {
			errType = ErrorTypeExternal
		} else {
			errType = ErrorTypeInternal
		}
	}

	return NewDomainError(errType, message, err).WithDetail("status", httpErr.StatusCode)
}

// Error type checking helper functions

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return GetErrorType(err) == ErrorTypeNotFound
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return GetErrorType(err) == ErrorTypeValidation
}

// IsUnauthorizedError checks if an error is an unauthorized error
func IsUnauthorizedError(err error) bool {
	return GetErrorType(err) == ErrorTypeUnauthorized
}

// IsForbiddenError checks if an error is a forbidden error
func IsForbiddenError(err error) bool {
	return GetErrorType(err) == ErrorTypeForbidden
}

// IsConflictError checks if an error is a conflict error
func IsConflictError(err error) bool {
	return GetErrorType(err) == ErrorTypeConflict
}

// IsExternalError checks if an error is a server-side failure
func IsExternalError(err error) bool {
	return GetErrorType(err) == ErrorTypeExternal
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapError wraps an error with additional context
func WrapError(errType ErrorType, message string, err error) error {
	return NewDomainError(errType, message, err)
}

// WrapValidation wraps a payload validation failure
func WrapValidation(err error) error {
	return NewDomainError(ErrorTypeValidation, "invalid input", err)
}
