package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the catalog has no product for an id
var ErrNotFound = errors.New("product not found")

// NetworkError is a failed catalog request: a transport failure, a non-2xx
// status, or a body that could not be decoded. Err holds the original cause.
type NetworkError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("catalog %s: %s: HTTP status %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("catalog %s: %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err is or wraps a *NetworkError
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
