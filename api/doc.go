// Package api wires job.Manager behind an HTTP transport: submit, status,
// and export endpoints, plus a per-IP token-bucket rate limiter as a second,
// independent line of defence in front of job.Manager's own queue-depth
// backpressure.
package api
