package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("ada@example.com"))
	assert.NoError(t, ValidateEmail(" ada@example.co.uk "))

	for _, bad := range []string{"", "ada", "ada@", "ada@example", "a da@example.com", "@example.com"} {
		err := ValidateEmail(bad)
		assert.Error(t, err, bad)
		assert.Equal(t, CategoryInvalidCredentials, CategoryFromError(err))
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		message  string
	}{
		{"Ab1", "Password must be at least 8 characters long"},
		{"abcdefg1", "Password must contain at least one uppercase letter"},
		{"ABCDEFG1", "Password must contain at least one lowercase letter"},
		{"Abcdefgh", "Password must contain at least one number"},
		{"Abcdefg1", ""},
	}
	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if tt.message == "" {
			assert.NoError(t, err, tt.password)
			continue
		}
		var ae *AuthError
		if assert.True(t, errors.As(err, &ae), tt.password) {
			assert.Equal(t, tt.message, ae.UserMessage())
			assert.Equal(t, CategoryWeakPassword, ae.Category)
		}
	}
}

func TestPasswordStrength(t *testing.T) {
	assert.Equal(t, StrengthWeak, PasswordStrength("password"))
	assert.Equal(t, StrengthMedium, PasswordStrength("Abcdefg1"))
	assert.Equal(t, StrengthStrong, PasswordStrength("Abcdefg1!"))
	assert.Equal(t, StrengthStrong, PasswordStrength("Abcdefghijk1"))
}

func TestCategoryOf(t *testing.T) {
	assert.Equal(t, CategoryEmailInUse, CategoryOf(CodeEmailExists))
	assert.Equal(t, CategoryInvalidCredentials, CategoryOf(CodeUserDisabled))
	assert.Equal(t, CategoryUnknown, CategoryOf("SOMETHING_NEW"))
}

func TestUserMessageFallbacks(t *testing.T) {
	assert.Equal(t, "Authentication failed. Please try again.", (&AuthError{Category: CategoryUnknown, Code: "X"}).UserMessage())
	assert.Equal(t, "Incorrect password. Please try again.", (&AuthError{Category: CategoryInvalidCredentials, Code: CodeInvalidPassword}).UserMessage())
	assert.Equal(t, "Too many unsuccessful attempts. Please try again later.", (&AuthError{Category: CategoryRateLimited, Code: "HTTP_429"}).UserMessage())
}

func TestDecodeFailure(t *testing.T) {
	ae := decodeFailure(400, []byte(`{"error":{"code":400,"message":"WEAK_PASSWORD : Password should be at least 6 characters"}}`))
	assert.Equal(t, CodeWeakPassword, ae.Code)
	assert.Equal(t, CategoryWeakPassword, ae.Category)

	ae = decodeFailure(503, []byte("upstream down"))
	assert.Equal(t, "HTTP_503", ae.Code)
	assert.Equal(t, CategoryUnknown, ae.Category)
}
