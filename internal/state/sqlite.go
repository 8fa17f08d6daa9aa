package state

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore implements Store on a SQLite database file.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// Open opens or creates the SQLite database at path and applies the schema.
// The path ":memory:" opens an in-memory database.
func Open(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	if path == ":memory:" {
		dsn = "file::memory:?_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// modernc's driver serializes writes per connection. A single
	// connection avoids SQLITE_BUSY between the run row and its failures.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	store := &SQLiteStore{db: db, path: path}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func generateID() string {
	return uuid.New().String()
}

// CreateRun inserts a new run in the running state and returns it.
func (s *SQLiteStore) CreateRun(split string) (*Run, error) {
	run := &Run{
		ID:        generateID(),
		Split:     split,
		Status:    RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (id, split, status, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Split, string(run.Status), run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating run: %w", err)
	}
	return run, nil
}

// CompleteRun marks a run as completed with its final counts.
func (s *SQLiteStore) CompleteRun(id string, total, succeeded, failed int) error {
	res, err := s.db.Exec(
		`UPDATE runs SET status = ?, completed_at = ?, total = ?, succeeded = ?, failed = ? WHERE id = ?`,
		string(RunStatusCompleted), time.Now().UTC(), total, succeeded, failed, id,
	)
	if err != nil {
		return fmt.Errorf("completing run: %w", err)
	}
	return checkRowFound(res, id)
}

// FailRun marks a run as failed with the fatal error message.
func (s *SQLiteStore) FailRun(id string, message string) error {
	res, err := s.db.Exec(
		`UPDATE runs SET status = ?, completed_at = ?, error = ? WHERE id = ?`,
		string(RunStatusFailed), time.Now().UTC(), message, id,
	)
	if err != nil {
		return fmt.Errorf("failing run: %w", err)
	}
	return checkRowFound(res, id)
}

func checkRowFound(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

// RecordFailures persists the per-example failures of a run in one
// transaction.
func (s *SQLiteStore) RecordFailures(runID string, failures []FailureRecord) error {
	if len(failures) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO run_failures (id, run_id, idx, db_id, kind, message) VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range failures {
		if _, err := stmt.Exec(generateID(), runID, f.Idx, f.DBID, f.Kind, f.Message); err != nil {
			return fmt.Errorf("recording failure for example %d: %w", f.Idx, err)
		}
	}
	return tx.Commit()
}

// GetRun returns the run with the given id, or an error if it does not exist.
func (s *SQLiteStore) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(
		`SELECT id, split, status, started_at, completed_at, total, succeeded, failed, error
		 FROM runs WHERE id = ?`, id,
	)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	return run, err
}

// ListRuns returns up to limit runs, most recently started first. A limit
// of zero or less returns all runs.
func (s *SQLiteStore) ListRuns(limit int) ([]*Run, error) {
	query := `SELECT id, split, status, started_at, completed_at, total, succeeded, failed, error
		  FROM runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListFailures returns the recorded failures of a run ordered by example
// index.
func (s *SQLiteStore) ListFailures(runID string) ([]FailureRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, idx, db_id, kind, message FROM run_failures
		 WHERE run_id = ? ORDER BY idx`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing failures: %w", err)
	}
	defer rows.Close()

	var failures []FailureRecord
	for rows.Next() {
		var f FailureRecord
		if err := rows.Scan(&f.RunID, &f.Idx, &f.DBID, &f.Kind, &f.Message); err != nil {
			return nil, fmt.Errorf("scanning failure: %w", err)
		}
		failures = append(failures, f)
	}
	return failures, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run         Run
		status      string
		completedAt sql.NullTime
		errMsg      sql.NullString
	)
	err := row.Scan(&run.ID, &run.Split, &status, &run.StartedAt, &completedAt,
		&run.Total, &run.Succeeded, &run.Failed, &errMsg)
	if err != nil {
		return nil, err
	}
	run.Status = RunStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	run.Error = errMsg.String
	return &run, nil
}
