package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pass-questions/internal/shared/errors"
)

type signupRequest struct {
	Username string `json:"username" validate:"notblank,max=80"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=admin user"`
	Count    int    `json:"count" validate:"gte=1,lte=100"`
}

func TestStruct_Valid(t *testing.T) {
	err := Struct(signupRequest{Username: "ama", Email: "ama@example.com", Password: "secret1", Count: 5})
	assert.NoError(t, err)
}

func TestStruct_CollectsFieldErrorsByJSONName(t *testing.T) {
	// Arrange
	req := signupRequest{Username: "   ", Email: "nope", Password: "123", Role: "owner", Count: 0}

	// Act
	err := Struct(req)

	// Assert
	require.Error(t, err)
	var ve *apperrors.ValidationErrors
	require.ErrorAs(t, err, &ve)

	byField := map[string]string{}
	for _, fe := range ve.Errors {
		byField[fe.Field] = fe.Message
	}
	assert.Equal(t, "username is required", byField["username"])
	assert.Equal(t, "email must be a valid email address", byField["email"])
	assert.Equal(t, "password must be at least 6 characters", byField["password"])
	assert.Equal(t, "role must be one of: admin, user", byField["role"])
	assert.Equal(t, "count must be at least 1", byField["count"])
	assert.True(t, apperrors.IsValidation(ve.ToAppError()))
}

func TestVar(t *testing.T) {
	assert.NoError(t, Var("prefix", "PQ", "min=1,max=6,alphanum"))

	err := Var("prefix", "TOOLONGX", "min=1,max=6,alphanum")
	require.Error(t, err)
	assert.Equal(t, "prefix must be at most 6 characters", FirstMessage(err))
}
