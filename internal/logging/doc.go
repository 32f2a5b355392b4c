// Package logging provides the leveled logging interface used across
// pixelfin.
//
// Levels are DEBUG, INFO, WARN and ERROR, selected via the LOG_LEVEL
// environment variable; DEBUG=true forces debug output regardless of
// LOG_LEVEL.
package logging
