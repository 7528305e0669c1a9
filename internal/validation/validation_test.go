package validation

import (
	"errors"
	"strings"
	"testing"

	"photoshare/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUsername(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"Valid", "test_user123", false},
		{"Too Short", "tu", true},
		{"Too Long", strings.Repeat("a", 31), true},
		{"Illegal Chars", "user@123", true},
		{"Dash", "user-name", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "secret1", false},
		{"Exactly Min Length", "abcdef", false},
		{"Too Short", "abc", true},
		{"Too Long", strings.Repeat("a", 129), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email"`
	Bio      string `json:"bio" validate:"max=5"`
}

func TestStruct_FieldErrors(t *testing.T) {
	t.Parallel()

	err := Struct(registerRequest{Username: "a!", Email: "nope", Bio: "too long bio"})
	require.Error(t, err)

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeValidation, appErr.Code)
	assert.Equal(t, "Validation failed", appErr.Message)

	fields := map[string]string{}
	for _, f := range appErr.Fields {
		fields[f.Field] = f.Message
	}
	assert.Contains(t, fields, "username")
	assert.Equal(t, "Please enter a valid email", fields["email"])
	assert.Equal(t, "bio must be at most 5 characters", fields["bio"])
}

func TestStruct_Valid(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Struct(registerRequest{Username: "alice_1", Email: "alice@example.com"}))
}

func TestTrimmedText(t *testing.T) {
	t.Parallel()

	got, err := TrimmedText("content", "Comment", "  hello  ", 500)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	_, err = TrimmedText("content", "Comment", "   ", 500)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "Comment is required", appErr.Fields[0].Message)

	_, err = TrimmedText("content", "Comment", strings.Repeat("x", 501), 500)
	require.Error(t, err)

	_, err = TrimmedText("content", "Comment", strings.Repeat("x", 500), 500)
	assert.NoError(t, err)
}
