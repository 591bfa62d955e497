package statestore

import "errors"

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a key does not exist or has expired.
	ErrNotFound = errors.New("statestore: entry not found")

	// ErrClosed is returned when an operation is attempted on a closed store.
	ErrClosed = errors.New("statestore: closed")

	// ErrMarshal is returned when value serialization fails.
	ErrMarshal = errors.New("statestore: failed to marshal value")

	// ErrUnmarshal is returned when value deserialization fails.
	ErrUnmarshal = errors.New("statestore: failed to unmarshal value")
)
