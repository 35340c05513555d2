package shopeasy

import (
	"errors"
	"fmt"

	"github.com/itsneelabh/shopeasy/pkg/auth"
	"github.com/itsneelabh/shopeasy/pkg/cart"
	"github.com/itsneelabh/shopeasy/pkg/catalog"
	"github.com/itsneelabh/shopeasy/pkg/memory"
)

// Standard sentinel errors for comparison using errors.Is()
var (
	// Configuration errors
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrMissingConfiguration = errors.New("missing required configuration")

	// ErrAuthDisabled is returned by auth operations when no identity
	// project is configured.
	ErrAuthDisabled = errors.New("authentication is not configured")

	// Re-exported component sentinels
	ErrProductNotFound = catalog.ErrNotFound
	ErrQuantityLimit   = cart.ErrQuantityLimit
	ErrInvalidItem     = cart.ErrInvalidItem
	ErrItemNotFound    = cart.ErrItemNotFound
	ErrKeyNotFound     = memory.ErrKeyNotFound
)

// StorefrontError provides structured error information with context
type StorefrontError struct {
	Op      string // Operation that failed (e.g., "Config.Validate")
	Kind    string // Error kind (e.g., "config", "storage")
	Message string // Human-readable message
	Err     error  // Underlying error for wrapping
}

func (e *StorefrontError) Error() string {
	if e.Message != "" {
		if e.Op != "" {
			return fmt.Sprintf("%s: %s", e.Op, e.Message)
		}
		return e.Message
	}
	if e.Op != "" && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s error", e.Kind)
}

// Unwrap returns the underlying error for use with errors.Is/As
func (e *StorefrontError) Unwrap() error {
	return e.Err
}

// IsConfigurationError checks if an error is configuration-related
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration) ||
		errors.Is(err, ErrMissingConfiguration)
}

// IsNetworkError reports a failed catalog request
func IsNetworkError(err error) bool {
	return catalog.IsNetworkError(err)
}

// IsValidationError reports a rejected cart item or quantity
func IsValidationError(err error) bool {
	return cart.IsValidationError(err)
}

// IsAuthError reports a failed authentication operation
func IsAuthError(err error) bool {
	return auth.IsAuthError(err)
}

// IsStorageError reports a failed durable storage operation
func IsStorageError(err error) bool {
	return memory.IsStorageError(err)
}

// IsNotFound checks if an error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrKeyNotFound)
}

// UserMessage returns text suitable for showing the shopper
func UserMessage(err error) string {
	var ae *auth.AuthError
	if errors.As(err, &ae) {
		return ae.UserMessage()
	}
	var ve *cart.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	switch {
	case errors.Is(err, ErrAuthDisabled):
		return "Sign-in is not available right now."
	case errors.Is(err, ErrProductNotFound):
		return "Product not found."
	case IsNetworkError(err):
		return "Could not reach the store. Please check your connection and try again."
	case IsStorageError(err):
		return "Could not access saved data."
	case IsConfigurationError(err):
		return "The storefront is misconfigured: " + err.Error()
	default:
		return "Something went wrong. Please try again."
	}
}
