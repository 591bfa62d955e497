package statestore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
)

// Store is a process-wide key-value store with optional TTL support.
// It backs the script-state maps (keyed by absolute script path) and the
// workspace-scoped shared state. Writes are last-write-wins: concurrent
// requests touching the same key are a cooperative scenario, not an
// adversarial one, so no transactional guarantee is provided.
//
// TTL semantics for Set:
//   - Positive duration: entry expires after this duration
//   - Zero: entry never expires (the default for script state)
//   - Negative: same as zero
type Store[V any] interface {
	// Get retrieves a value by key.
	// Returns ErrNotFound if the key does not exist or has expired.
	Get(ctx context.Context, key string) (V, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value V, ttl time.Duration) error

	// Delete removes a key from the store.
	Delete(ctx context.Context, key string) error

	// Has checks whether a key exists and has not expired.
	Has(ctx context.Context, key string) (bool, error)

	// Clear removes all entries from the store.
	Clear(ctx context.Context) error

	// Close releases resources (stops background goroutines, etc.).
	Close() error
}

// Values is the shape of a single script's persistent state: a flat
// name/value mapping the script may read and mutate between invocations.
type Values = map[string]any

// Marshaler serializes and deserializes values for backends that require a
// byte representation (e.g., Redis).
type Marshaler[V any] interface {
	Marshal(v V) ([]byte, error)
	Unmarshal(data []byte) (V, error)
}

type jsonMarshaler[V any] struct{}

func (jsonMarshaler[V]) Marshal(v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func (jsonMarshaler[V]) Unmarshal(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}

var sfGroup singleflight.Group

type getOrSetResult[V any] struct {
	val V
	ttl time.Duration
}

// GetOrSet retrieves a value from the store, or calls fn to compute it on a
// miss. Uses singleflight so concurrent misses for the same key call fn only
// once.
//
// The callback returns the value, a TTL, and an error. If fn returns an
// error, nothing is stored and the error is returned.
func GetOrSet[V any](ctx context.Context, s Store[V], key string, fn func(ctx context.Context) (V, time.Duration, error)) (V, error) {
	if v, err := s.Get(ctx, key); err == nil {
		return v, nil
	}

	v, err, _ := sfGroup.Do(key, func() (any, error) {
		val, ttl, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return getOrSetResult[V]{val: val, ttl: ttl}, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	r := v.(getOrSetResult[V])

	// Best-effort store of the computed value.
	_ = s.Set(ctx, key, r.val, r.ttl)

	return r.val, nil
}

// Update reads the value under key, applies fn to it, and writes the result
// back. A missing key calls fn with the zero value. Last-write-wins: the
// read-modify-write is not atomic across processes.
func Update[V any](ctx context.Context, s Store[V], key string, fn func(V) V) error {
	cur, err := s.Get(ctx, key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return s.Set(ctx, key, fn(cur), 0)
}
