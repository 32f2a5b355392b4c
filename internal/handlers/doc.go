// Package handlers implements the HTTP API: settings persistence, run
// triggering and status, artifact listing, serving, download and
// deletion, plus the health and version endpoints.
//
// Handlers stay thin. Run execution lives in the runner package, report
// semantics in artwork, report and archive; everything here is request
// decoding, validation and response shaping.
package handlers
