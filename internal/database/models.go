package database

import "time"

// Settings is the persisted per-library (and last-used) run
// configuration. Images and ZipNames are keyed by artwork short codes
// ("p", "bd", ...) to keep the stored document stable across releases.
type Settings struct {
	Server        string            `json:"server"`
	APIKey        string            `json:"apikey"`
	Images        []string          `json:"images"`
	MinWidth      int               `json:"minWidth"`
	MinHeight     int               `json:"minHeight"`
	ZipNames      map[string]string `json:"zipnames,omitempty"`
	BGColor       string            `json:"bgcolor"`
	TextColor     string            `json:"textcolor"`
	TableBGColor  string            `json:"tablebgcolor"`
	Embedded      bool              `json:"embedded"`
	EmbedMaxWidth int               `json:"embedMaxWidth,omitempty"`
}

// RunStatus is the lifecycle state of a report run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// RunKind distinguishes report generation from ZIP export.
type RunKind string

const (
	RunKindHTML RunKind = "html"
	RunKindZIP  RunKind = "zip"
)

// RunRecord is one row of the run history.
type RunRecord struct {
	ID          string     `json:"id"`
	Library     string     `json:"library"`
	Kind        RunKind    `json:"kind"`
	Status      RunStatus  `json:"status"`
	Artifact    string     `json:"artifact,omitempty"`
	Diagnostics int        `json:"diagnostics"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"startedAt"`
	FinishedAt  *time.Time `json:"finishedAt,omitempty"`
}
