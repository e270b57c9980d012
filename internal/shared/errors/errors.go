// Package errors carries typed application errors and the validation error
// collection returned by request validation.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "VALIDATION_ERROR"
	ErrorTypeAuthentication  ErrorType = "AUTHENTICATION_ERROR"
	ErrorTypeAuthorization   ErrorType = "AUTHORIZATION_ERROR"
	ErrorTypePaymentRequired ErrorType = "PAYMENT_REQUIRED"
	ErrorTypeNotFound        ErrorType = "NOT_FOUND_ERROR"
	ErrorTypeConflict        ErrorType = "CONFLICT_ERROR"
	ErrorTypeUnavailable     ErrorType = "SERVICE_UNAVAILABLE"
	ErrorTypeInternal        ErrorType = "INTERNAL_ERROR"
)

var statusByType = map[ErrorType]int{
	ErrorTypeValidation:      http.StatusBadRequest,
	ErrorTypeAuthentication:  http.StatusUnauthorized,
	ErrorTypeAuthorization:   http.StatusForbidden,
	ErrorTypePaymentRequired: http.StatusForbidden,
	ErrorTypeNotFound:        http.StatusNotFound,
	ErrorTypeConflict:        http.StatusConflict,
	ErrorTypeUnavailable:     http.StatusServiceUnavailable,
	ErrorTypeInternal:        http.StatusInternalServerError,
}

// AppError is an error with a type that decides its HTTP status.
type AppError struct {
	Type    ErrorType              `json:"type"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

// Status is the HTTP status for the error's type.
func (e *AppError) Status() int {
	if code, ok := statusByType[e.Type]; ok {
		return code
	}
	return http.StatusInternalServerError
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func newError(t ErrorType, message string) *AppError {
	return &AppError{Type: t, Message: message}
}

func NewValidationError(message string) *AppError {
	return newError(ErrorTypeValidation, message)
}

func NewAuthenticationError(message string) *AppError {
	return newError(ErrorTypeAuthentication, message)
}

func NewAuthorizationError(message string) *AppError {
	return newError(ErrorTypeAuthorization, message)
}

// NewPaymentRequiredError is returned when an unpaid, non-admin user reaches
// paid content.
func NewPaymentRequiredError() *AppError {
	return newError(ErrorTypePaymentRequired, "Payment required")
}

func NewNotFoundError(resource string) *AppError {
	return newError(ErrorTypeNotFound, resource+" not found")
}

func NewConflictError(message string) *AppError {
	return newError(ErrorTypeConflict, message)
}

// NewUnavailableError marks a dependency that is not configured or reachable.
func NewUnavailableError(message string) *AppError {
	return newError(ErrorTypeUnavailable, message)
}

func NewInternalError(message string) *AppError {
	return newError(ErrorTypeInternal, message)
}

// FieldError is one failed field of a request.
type FieldError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// ValidationErrors collects every failed field of a request.
type ValidationErrors struct {
	Errors []FieldError `json:"errors"`
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{Errors: make([]FieldError, 0)}
}

func (ve *ValidationErrors) Error() string {
	if len(ve.Errors) == 0 {
		return "validation failed"
	}
	return "validation failed: " + ve.Errors[0].Message
}

func (ve *ValidationErrors) Add(field, message string, value interface{}) *ValidationErrors {
	ve.Errors = append(ve.Errors, FieldError{Field: field, Message: message, Value: value})
	return ve
}

func (ve *ValidationErrors) HasErrors() bool { return len(ve.Errors) > 0 }

// First is the message of the first failed field.
func (ve *ValidationErrors) First() string {
	if len(ve.Errors) == 0 {
		return "validation failed"
	}
	return ve.Errors[0].Message
}

// Fields lists the failed field names in order.
func (ve *ValidationErrors) Fields() []string {
	out := make([]string, 0, len(ve.Errors))
	for _, fe := range ve.Errors {
		out = append(out, fe.Field)
	}
	return out
}

func (ve *ValidationErrors) ToAppError() *AppError {
	if !ve.HasErrors() {
		return nil
	}
	return NewValidationError(ve.First()).WithDetail("validation_errors", ve.Errors)
}

func IsValidation(err error) bool {
	var ve *ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	return is(err, ErrorTypeValidation)
}

func IsNotFound(err error) bool { return is(err, ErrorTypeNotFound) }

func IsConflict(err error) bool { return is(err, ErrorTypeConflict) }

func is(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

// HTTPStatus returns the status of the first AppError or ValidationErrors in
// the chain, or 500.
func HTTPStatus(err error) int {
	var ve *ValidationErrors
	if errors.As(err, &ve) {
		return http.StatusBadRequest
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status()
	}
	return http.StatusInternalServerError
}

// Body is the JSON error payload for err. Errors without a type are reported
// as a generic internal error.
func Body(err error) map[string]interface{} {
	var ve *ValidationErrors
	if errors.As(err, &ve) {
		return map[string]interface{}{"error": ve.First(), "details": ve.Errors}
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		body := map[string]interface{}{"error": appErr.Message}
		if len(appErr.Details) > 0 {
			body["details"] = appErr.Details
		}
		return body
	}
	return map[string]interface{}{"error": "Internal Server Error"}
}
