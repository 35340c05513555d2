package auth

import (
	"errors"
	"fmt"
)

// Category is the closed set of user-facing auth failure kinds
type Category string

const (
	CategoryInvalidCredentials Category = "invalid_credentials"
	CategoryEmailInUse         Category = "email_in_use"
	CategoryWeakPassword       Category = "weak_password"
	CategoryRateLimited        Category = "rate_limited"
	CategoryNetworkFailure     Category = "network_failure"
	CategoryUnknown            Category = "unknown"
)

// Provider error codes the adapter understands
const (
	CodeEmailExists             = "EMAIL_EXISTS"
	CodeEmailNotFound           = "EMAIL_NOT_FOUND"
	CodeInvalidPassword         = "INVALID_PASSWORD"
	CodeInvalidLoginCredentials = "INVALID_LOGIN_CREDENTIALS"
	CodeInvalidEmail            = "INVALID_EMAIL"
	CodeUserDisabled            = "USER_DISABLED"
	CodeWeakPassword            = "WEAK_PASSWORD"
	CodeTooManyAttempts         = "TOO_MANY_ATTEMPTS_TRY_LATER"
	CodeNetwork                 = "NETWORK_REQUEST_FAILED"
	CodeMissingField            = "MISSING_FIELD"
)

// AuthError is a failed authentication operation
type AuthError struct {
	Category Category
	Code     string // provider or local code, e.g. EMAIL_EXISTS
	Message  string // overrides the default user-facing message
	Err      error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth %s (%s): %v", e.Category, e.Code, e.Err)
	}
	return fmt.Sprintf("auth %s (%s)", e.Category, e.Code)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

var codeMessages = map[string]string{
	CodeEmailExists:             "This email is already registered. Please use a different email or try logging in.",
	CodeInvalidEmail:            "Invalid email address format.",
	CodeWeakPassword:            "Password is too weak. Please use a stronger password.",
	CodeEmailNotFound:           "No account found with this email address.",
	CodeInvalidPassword:         "Incorrect password. Please try again.",
	CodeInvalidLoginCredentials: "Incorrect email or password. Please try again.",
	CodeUserDisabled:            "This account has been disabled.",
	CodeTooManyAttempts:         "Too many unsuccessful attempts. Please try again later.",
	CodeNetwork:                 "Network error. Please check your internet connection.",
}

var categoryMessages = map[Category]string{
	CategoryInvalidCredentials: "Incorrect email or password. Please try again.",
	CategoryEmailInUse:         codeMessages[CodeEmailExists],
	CategoryWeakPassword:       codeMessages[CodeWeakPassword],
	CategoryRateLimited:        codeMessages[CodeTooManyAttempts],
	CategoryNetworkFailure:     codeMessages[CodeNetwork],
}

// UserMessage is the text to show the user
func (e *AuthError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if msg, ok := codeMessages[e.Code]; ok {
		return msg
	}
	if msg, ok := categoryMessages[e.Category]; ok {
		return msg
	}
	return "Authentication failed. Please try again."
}

// CategoryOf maps a provider error code to its category
func CategoryOf(code string) Category {
	switch code {
	case CodeEmailExists:
		return CategoryEmailInUse
	case CodeEmailNotFound, CodeInvalidPassword, CodeInvalidLoginCredentials, CodeInvalidEmail, CodeUserDisabled:
		return CategoryInvalidCredentials
	case CodeWeakPassword:
		return CategoryWeakPassword
	case CodeTooManyAttempts:
		return CategoryRateLimited
	case CodeNetwork:
		return CategoryNetworkFailure
	default:
		return CategoryUnknown
	}
}

// IsAuthError reports whether err is or wraps an *AuthError
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// CategoryFromError returns the category of err, or CategoryUnknown
func CategoryFromError(err error) Category {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Category
	}
	return CategoryUnknown
}
