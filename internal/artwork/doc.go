// Package artwork implements the image inventory engine: resolving an
// item's raw image-tag map into concrete slots, classifying slots against
// resolution thresholds, disambiguating duplicate titles, and aggregating
// per-item results into report rows.
//
// Everything in this package is pure computation over run-scoped inputs.
// No component here performs I/O or retains state across runs, which keeps
// the report logic testable without any server or task machinery.
package artwork
