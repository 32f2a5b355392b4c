// Package jellyfin is the catalog loader and image byte fetcher for
// Jellyfin and Emby servers.
//
// It resolves the first enabled user, looks up a library view by name,
// pages through the library's items and validates the raw image-tag maps
// into the closed artwork type enum at this boundary. Server-level
// failures (unreachable host, bad key, unknown library) surface as fatal
// errors; individual image fetches may fail per-slot without aborting a
// run.
package jellyfin
