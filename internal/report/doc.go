// Package report renders the aggregated artwork model into a standalone
// HTML document: a summary table, per-item two-column galleries and a
// shared lightbox viewer. Output is deterministic for identical inputs;
// generation timestamps live in artifact filenames, not in the markup.
package report
