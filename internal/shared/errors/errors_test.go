package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Builders(t *testing.T) {
	err := NewValidationError("invalid prefix").WithDetail("field", "prefix")

	assert.Equal(t, ErrorTypeValidation, err.Type)
	assert.Equal(t, "invalid prefix", err.Error())
	assert.Equal(t, "prefix", err.Details["field"])
	assert.Equal(t, http.StatusBadRequest, err.Status())
}

func TestAppError_WithCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := NewInternalError("saving upload").WithCause(cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.Equal(t, "saving upload: disk full", err.Error())
}

func TestValidationErrors(t *testing.T) {
	ve := NewValidationErrors().
		Add("program", "program is required", "").
		Add("course", "course is required", "")

	assert.True(t, ve.HasErrors())
	assert.Equal(t, "program is required", ve.First())
	assert.Equal(t, []string{"program", "course"}, ve.Fields())
	assert.Equal(t, "validation failed: program is required", ve.Error())

	appErr := ve.ToAppError()
	assert.Equal(t, ErrorTypeValidation, appErr.Type)
	assert.Equal(t, ve.Errors, appErr.Details["validation_errors"])
	assert.Nil(t, NewValidationErrors().ToAppError())
}

func TestPredicates_SeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("loading exam: %w", NewNotFoundError("exam"))

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsConflict(wrapped))
	assert.True(t, IsValidation(fmt.Errorf("x: %w", NewValidationErrors().Add("a", "b", nil))))
	assert.True(t, IsConflict(NewConflictError("code exists")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, HTTPStatus(NewPaymentRequiredError()))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(NewAuthenticationError("session expired")))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(NewAuthorizationError("admins only")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(fmt.Errorf("wrap: %w", NewNotFoundError("question"))))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(NewUnavailableError("AI generator not configured")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(NewValidationErrors().Add("count", "count must be at most 100", 500)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(fmt.Errorf("boom")))
}

func TestBody(t *testing.T) {
	ve := NewValidationErrors().Add("count", "count must be at most 100", 500)
	assert.Equal(t, map[string]interface{}{"error": "count must be at most 100", "details": ve.Errors}, Body(ve))

	assert.Equal(t, map[string]interface{}{"error": "exam not found"}, Body(NewNotFoundError("exam")))
	assert.Equal(t, map[string]interface{}{"error": "Internal Server Error"}, Body(fmt.Errorf("driver: socket closed")))
}
