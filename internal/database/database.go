package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"pixelfin/internal/logging"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

const schemaVersion = 1

// Database stores persisted settings, usage history and run records.
// The report engine itself never touches this state; handlers load
// settings here and pass them to the engine as plain parameters.
type Database struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// New opens (or creates) the database at dbPath. The parent directory
// must already exist and be writable; startup.LoadConfig validates that.
func New(ctx context.Context, dbPath string) (*Database, error) {
	logging.Info("Database path: %s", dbPath)

	// WAL keeps readers unblocked while a run record is being written.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	d := &Database{db: db, dbPath: dbPath}

	if err := d.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	logging.Info("Database initialized successfully at %s", dbPath)
	return d, nil
}

func (d *Database) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL
	);

	-- Known servers, for the configuration form's history dropdown
	CREATE TABLE IF NOT EXISTS servers (
		url TEXT PRIMARY KEY,
		last_used_at INTEGER NOT NULL
	);

	-- Per-library run settings, stored as a versioned JSON document
	CREATE TABLE IF NOT EXISTS library_settings (
		library TEXT PRIMARY KEY,
		server TEXT NOT NULL,
		settings TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	-- Most recently used settings, a single row
	CREATE TABLE IF NOT EXISTS last_used (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		settings TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	-- Report run history
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		library TEXT NOT NULL,
		kind TEXT NOT NULL,
		status TEXT NOT NULL,
		artifact TEXT NOT NULL DEFAULT '',
		diagnostics INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		started_at INTEGER NOT NULL,
		finished_at INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_runs_library ON runs(library);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`

	initCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := d.db.ExecContext(initCtx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	var version int
	err := d.db.QueryRowContext(initCtx, `SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		if _, err := d.db.ExecContext(initCtx,
			`INSERT INTO schema_version (version) VALUES (?)`, schemaVersion); err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to read schema version: %w", err)
	case version > schemaVersion:
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, schemaVersion)
	}

	return nil
}

// Ping verifies the database is reachable. Used by health probes.
func (d *Database) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return d.db.PingContext(ctx)
}

// Close closes the underlying database handle.
func (d *Database) Close() error {
	return d.db.Close()
}

// Path returns the database file path.
func (d *Database) Path() string {
	return d.dbPath
}
