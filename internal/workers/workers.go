// Package workers sizes worker pools from the available CPUs.
//
// GOMAXPROCS reflects container CPU limits on Go 1.19+, unlike
// runtime.NumCPU which reports the host. Pools sized here respect cgroup
// limits and can be overridden with the FETCH_WORKERS environment
// variable.
package workers

import (
	"os"
	"runtime"
	"strconv"
)

// Count returns the worker count for a task type. The multiplier adjusts
// for workload characteristics (1.0 CPU-bound, 2.0 I/O-bound) and limit
// caps the result; use 0 for no cap. FETCH_WORKERS overrides everything.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv("FETCH_WORKERS"); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	available := runtime.GOMAXPROCS(0)

	count := int(float64(available) * multiplier)
	if count < 1 {
		count = 1
	}
	if limit > 0 && count > limit {
		count = limit
	}
	return count
}

// ForCPU returns the worker count for CPU-bound tasks (1 per CPU).
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// ForIO returns the worker count for I/O-bound tasks (2 per CPU). Image
// dimension fetches against the media server fall in this bucket.
func ForIO(limit int) int {
	return Count(2.0, limit)
}
