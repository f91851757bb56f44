// Package job implements the JobManager surface: submission idempotency
// keyed on an image fingerprint, the queued/processing/completed/failed
// state machine, TTL-bounded storage, and the worker pool that drives each
// job through pipeline.Hub.
package job
