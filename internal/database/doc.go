// Package database persists user-facing state between runs: server and
// library history, per-library settings, the last-used settings record
// and the report run history. Backed by SQLite in WAL mode.
//
// The report engine never reads from here directly; handlers load
// settings and pass them to the engine as explicit parameters, so the
// engine stays a pure function of its inputs.
package database
