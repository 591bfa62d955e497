// Package health provides liveness and readiness HTTP handlers.
//
// Liveness always answers OK while the process runs. Readiness fans out the
// configured checks in parallel under a shared timeout and reports
// per-check results; it is wired with closures from pkg/redis (state store
// connectivity) and pkg/host (editing environment responsiveness).
package health
