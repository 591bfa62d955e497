package redis

import (
	"context"
	"io"
)

// Shutdown returns a function that closes the Redis client.
// Use with editgate.ShutdownHook when a Redis-backed state store is
// configured.
func Shutdown(client io.Closer) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return client.Close()
	}
}
