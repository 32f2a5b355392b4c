package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"pixelfin/internal/metrics"
)

// SaveSettings stores the settings for a library and updates the server
// history and last-used record in one transaction.
func (d *Database) SaveSettings(library string, s Settings) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	doc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	now := time.Now().Unix()

	tx, err := d.db.Begin()
	if err != nil {
		metrics.DBQueryTotal.WithLabelValues("save_settings", "error").Inc()
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if s.Server != "" {
		if _, err := tx.Exec(`
			INSERT INTO servers (url, last_used_at) VALUES (?, ?)
			ON CONFLICT(url) DO UPDATE SET last_used_at = excluded.last_used_at`,
			s.Server, now); err != nil {
			metrics.DBQueryTotal.WithLabelValues("save_settings", "error").Inc()
			return fmt.Errorf("failed to record server: %w", err)
		}
	}

	if library != "" {
		if _, err := tx.Exec(`
			INSERT INTO library_settings (library, server, settings, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT(library) DO UPDATE SET
				server = excluded.server,
				settings = excluded.settings,
				updated_at = excluded.updated_at`,
			library, s.Server, string(doc), now); err != nil {
			metrics.DBQueryTotal.WithLabelValues("save_settings", "error").Inc()
			return fmt.Errorf("failed to save library settings: %w", err)
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO last_used (id, settings, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			settings = excluded.settings,
			updated_at = excluded.updated_at`,
		string(doc), now); err != nil {
		metrics.DBQueryTotal.WithLabelValues("save_settings", "error").Inc()
		return fmt.Errorf("failed to save last-used settings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		metrics.DBQueryTotal.WithLabelValues("save_settings", "error").Inc()
		return fmt.Errorf("failed to commit settings: %w", err)
	}

	metrics.DBQueryTotal.WithLabelValues("save_settings", "ok").Inc()
	return nil
}

// LibrarySettings returns the stored settings for a library. The second
// return value reports whether any settings were found.
func (d *Database) LibrarySettings(library string) (Settings, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var doc string
	err := d.db.QueryRow(`SELECT settings FROM library_settings WHERE library = ?`, library).Scan(&doc)
	if err == sql.ErrNoRows {
		metrics.DBQueryTotal.WithLabelValues("library_settings", "ok").Inc()
		return Settings{}, false, nil
	}
	if err != nil {
		metrics.DBQueryTotal.WithLabelValues("library_settings", "error").Inc()
		return Settings{}, false, fmt.Errorf("failed to load library settings: %w", err)
	}

	var s Settings
	if err := json.Unmarshal([]byte(doc), &s); err != nil {
		metrics.DBQueryTotal.WithLabelValues("library_settings", "error").Inc()
		return Settings{}, false, fmt.Errorf("failed to decode library settings: %w", err)
	}
	metrics.DBQueryTotal.WithLabelValues("library_settings", "ok").Inc()
	return s, true, nil
}

// LastUsed returns the most recently used settings.
func (d *Database) LastUsed() (Settings, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var doc string
	err := d.db.QueryRow(`SELECT settings FROM last_used WHERE id = 1`).Scan(&doc)
	if err == sql.ErrNoRows {
		return Settings{}, false, nil
	}
	if err != nil {
		return Settings{}, false, fmt.Errorf("failed to load last-used settings: %w", err)
	}

	var s Settings
	if err := json.Unmarshal([]byte(doc), &s); err != nil {
		return Settings{}, false, fmt.Errorf("failed to decode last-used settings: %w", err)
	}
	return s, true, nil
}

// History returns the known server URLs (most recently used first) and
// library names (alphabetical).
func (d *Database) History() (servers []string, libraries []string, err error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rows, err := d.db.Query(`SELECT url FROM servers ORDER BY last_used_at DESC`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list servers: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, nil, fmt.Errorf("failed to scan server row: %w", err)
		}
		servers = append(servers, url)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("server row iteration failed: %w", err)
	}

	libRows, err := d.db.Query(`SELECT library FROM library_settings ORDER BY library COLLATE NOCASE`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list libraries: %w", err)
	}
	defer libRows.Close() //nolint:errcheck

	for libRows.Next() {
		var name string
		if err := libRows.Scan(&name); err != nil {
			return nil, nil, fmt.Errorf("failed to scan library row: %w", err)
		}
		libraries = append(libraries, name)
	}
	if err := libRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("library row iteration failed: %w", err)
	}

	return servers, libraries, nil
}
