// Package statestore provides the process-wide key-value stores the gateway
// injects into its dispatcher: per-script persistent state (keyed by absolute
// script path) and workspace-scoped shared state.
//
// Two backends are provided: an in-memory store with optional LRU capping and
// TTL janitor, and a Redis-backed store for deployments that want state to
// survive restarts. Both implement the same generic Store interface, so the
// dispatcher never knows which one it holds.
//
// Writes are deliberately last-write-wins. Concurrent handlers touching the
// same script's state is a cooperative scenario; the store does not attempt
// transactional guarantees.
package statestore
