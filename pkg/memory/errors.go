package memory

import (
	"errors"
	"fmt"
)

var (
	// ErrKeyNotFound is returned when no live record exists for a key
	ErrKeyNotFound = errors.New("key not found")

	// ErrQuotaExceeded is returned when a write would exceed the store quota
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrUnknownProvider is returned by Open for an unsupported provider
	ErrUnknownProvider = errors.New("unknown storage provider")
)

// StorageError reports a failed durable storage operation
type StorageError struct {
	Op  string // get, set, delete, exists, open
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err means the key has no live record
func IsNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound)
}

// IsStorageError reports whether err came from a storage backend
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

func storageErr(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Key: key, Err: err}
}
