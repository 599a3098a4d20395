// Package storage defines the key/value contract the memory engine is built
// against. All engine state is serialized to and from a backend as opaque
// strings under namespaced keys; the backend's durability guarantees are its
// own concern.
package storage

import (
	"context"
	"fmt"
	"time"
)

// KVStore is the uniform key/value interface consumed by the memory engine.
// Implementations must treat values as opaque strings. A ttl of zero means
// the key never expires.
type KVStore interface {
	// Get returns the value for key, or a NotFoundError if the key does not
	// exist or has expired.
	Get(ctx context.Context, key string) (string, error)

	// Put stores value under key. A non-zero ttl requests expiry after that
	// duration.
	Put(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// NotFoundError indicates that the requested key was not found.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("key not found: %s", e.Key)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// StorageUnavailableError indicates that the storage backend is unavailable.
type StorageUnavailableError struct {
	Cause error
}

func (e *StorageUnavailableError) Error() string {
	return fmt.Sprintf("storage unavailable: %v", e.Cause)
}

func (e *StorageUnavailableError) Unwrap() error {
	return e.Cause
}

// SerializationError indicates a failure in data serialization/deserialization.
type SerializationError struct {
	Operation string
	Cause     error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialization error during %s: %v", e.Operation, e.Cause)
}

func (e *SerializationError) Unwrap() error {
	return e.Cause
}
