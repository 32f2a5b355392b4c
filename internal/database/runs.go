package database

import (
	"database/sql"
	"fmt"
	"time"

	"pixelfin/internal/metrics"
)

// CreateRun records the start of a report run.
func (d *Database) CreateRun(id, library string, kind RunKind) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, err := d.db.Exec(`
		INSERT INTO runs (id, library, kind, status, started_at)
		VALUES (?, ?, ?, ?, ?)`,
		id, library, string(kind), string(RunRunning), time.Now().Unix())
	if err != nil {
		metrics.DBQueryTotal.WithLabelValues("create_run", "error").Inc()
		return fmt.Errorf("failed to create run record: %w", err)
	}
	metrics.DBQueryTotal.WithLabelValues("create_run", "ok").Inc()
	return nil
}

// FinishRun records a run's terminal state. Artifact is empty for failed
// runs; errMsg is empty for successful ones.
func (d *Database) FinishRun(id string, status RunStatus, artifact string, diagnostics int, errMsg string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, err := d.db.Exec(`
		UPDATE runs
		SET status = ?, artifact = ?, diagnostics = ?, error = ?, finished_at = ?
		WHERE id = ?`,
		string(status), artifact, diagnostics, errMsg, time.Now().Unix(), id)
	if err != nil {
		metrics.DBQueryTotal.WithLabelValues("finish_run", "error").Inc()
		return fmt.Errorf("failed to finish run record: %w", err)
	}
	metrics.DBQueryTotal.WithLabelValues("finish_run", "ok").Inc()
	return nil
}

// Run returns a single run record by id.
func (d *Database) Run(id string) (RunRecord, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	row := d.db.QueryRow(`
		SELECT id, library, kind, status, artifact, diagnostics, error, started_at, finished_at
		FROM runs WHERE id = ?`, id)

	rec, err := scanRun(row)
	if err == sql.ErrNoRows {
		return RunRecord{}, false, nil
	}
	if err != nil {
		return RunRecord{}, false, fmt.Errorf("failed to load run: %w", err)
	}
	return rec, true, nil
}

// RecentRuns returns up to limit run records, newest first.
func (d *Database) RecentRuns(limit int) ([]RunRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if limit < 1 {
		limit = 50
	}

	rows, err := d.db.Query(`
		SELECT id, library, kind, status, artifact, diagnostics, error, started_at, finished_at
		FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("run row iteration failed: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (RunRecord, error) {
	var rec RunRecord
	var kind, status string
	var startedAt int64
	var finishedAt sql.NullInt64

	err := row.Scan(&rec.ID, &rec.Library, &kind, &status, &rec.Artifact,
		&rec.Diagnostics, &rec.Error, &startedAt, &finishedAt)
	if err != nil {
		return RunRecord{}, err
	}

	rec.Kind = RunKind(kind)
	rec.Status = RunStatus(status)
	rec.StartedAt = time.Unix(startedAt, 0)
	if finishedAt.Valid {
		t := time.Unix(finishedAt.Int64, 0)
		rec.FinishedAt = &t
	}
	return rec, nil
}
