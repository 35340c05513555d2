package cart

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidItem marks a rejected AddItem request
	ErrInvalidItem = errors.New("invalid cart item")

	// ErrQuantityLimit marks an update that would exceed MaxQuantity
	ErrQuantityLimit = errors.New("quantity limit exceeded")

	// ErrItemNotFound is returned for an unknown line item key
	ErrItemNotFound = errors.New("cart item not found")
)

// ValidationError is a rejected cart mutation. Message is safe to show to
// the user.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg, Err: ErrInvalidItem}
}

// IsValidationError reports whether err is or wraps a *ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
