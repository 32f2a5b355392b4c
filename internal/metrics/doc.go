// Package metrics defines the Prometheus instrumentation for pixelfin:
// HTTP traffic, report run outcomes and durations, per-slot fetch
// failures and database query counters.
package metrics
