// Package state persists extraction run history in SQLite: one row per
// batch run plus its recoverable failures, so operators can compare runs
// across schema or corpus revisions.
package state

import "time"

// RunStatus is the lifecycle state of an extraction run.
type RunStatus string

// Run lifecycle states.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one extraction run over a split.
type Run struct {
	ID          string
	Split       string
	Status      RunStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	Total       int
	Succeeded   int
	Failed      int
	Error       string
}

// FailureRecord is one persisted per-example failure of a run.
type FailureRecord struct {
	RunID   string
	Idx     int
	DBID    string
	Kind    string
	Message string
}

// Store is the persistence contract for run history.
type Store interface {
	CreateRun(split string) (*Run, error)
	CompleteRun(id string, total, succeeded, failed int) error
	FailRun(id string, message string) error
	RecordFailures(runID string, failures []FailureRecord) error
	GetRun(id string) (*Run, error)
	ListRuns(limit int) ([]*Run, error)
	ListFailures(runID string) ([]FailureRecord, error)
	Close() error
}
