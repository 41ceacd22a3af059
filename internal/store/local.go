// Package store persists simulation runs, their per-day section results and the decode report in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Run statuses.
const (
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// ErrRunNotFound is returned for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// LocalStore is the SQLite result store.
type LocalStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
	log    *zap.Logger
}

// NewLocalStore initializes the SQLite database at the given path.
func NewLocalStore(path string, log *zap.Logger) (*LocalStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A :memory: database lives per connection.
	db.SetMaxOpenConns(1)

	store := &LocalStore{db: db, dbPath: path, log: log}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// initialize creates the required tables.
func (s *LocalStore) initialize() error {
	runsTable := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		inventory_path TEXT NOT NULL,
		begin_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT DEFAULT '',
		started_at DATETIME NOT NULL,
		finished_at DATETIME
	);
	`

	// One row per simulated day.
	daysTable := `
	CREATE TABLE IF NOT EXISTS run_days (
		run_id TEXT NOT NULL REFERENCES runs(id),
		day TEXT NOT NULL,
		moves INTEGER NOT NULL,
		diagnostics INTEGER NOT NULL,
		heat_diagnostics INTEGER NOT NULL,
		PRIMARY KEY (run_id, day)
	);
	`

	// One row per simulated day and section.
	sectionsTable := `
	CREATE TABLE IF NOT EXISTS day_sections (
		run_id TEXT NOT NULL REFERENCES runs(id),
		day TEXT NOT NULL,
		section TEXT NOT NULL,
		assemblies INTEGER NOT NULL,
		heat REAL NOT NULL,
		removed INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, day, section)
	);
	CREATE INDEX IF NOT EXISTS idx_day_sections_section ON day_sections(run_id, section);
	`

	// Records that did not load.
	failuresTable := `
	CREATE TABLE IF NOT EXISTS decode_failures (
		run_id TEXT NOT NULL REFERENCES runs(id),
		record_index INTEGER NOT NULL,
		status TEXT NOT NULL,
		assembly_id TEXT DEFAULT '',
		error TEXT NOT NULL,
		PRIMARY KEY (run_id, record_index)
	);
	`

	for _, table := range []string{runsTable, daysTable, sectionsTable, failuresTable} {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *LocalStore) Close() error {
	return s.db.Close()
}

// Run is one stored simulation run.
type Run struct {
	ID            string
	InventoryPath string
	Begin, End    string // dd.mm.yyyy
	Status        string
	Error         string
	StartedAt     time.Time
	FinishedAt    sql.NullTime
}

// BeginRun registers a new run and returns it with a fresh id.
func (s *LocalStore) BeginRun(ctx context.Context, inventoryPath, begin, end string) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := &Run{
		ID:            uuid.NewString(),
		InventoryPath: inventoryPath,
		Begin:         begin,
		End:           end,
		Status:        StatusRunning,
		StartedAt:     time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, inventory_path, begin_date, end_date, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.InventoryPath, run.Begin, run.End, run.Status, run.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}
	s.log.Debug("Run registered", zap.String("run", run.ID))
	return run, nil
}

// FinishRun marks a run complete, or failed when runErr is non-nil.
func (s *LocalStore) FinishRun(ctx context.Context, runID string, runErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, msg := StatusComplete, ""
	if runErr != nil {
		status, msg = StatusFailed, runErr.Error()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, finished_at = ? WHERE id = ?`,
		status, msg, time.Now().UTC(), runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// GetRun loads a run by id.
func (s *LocalStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run := &Run{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, inventory_path, begin_date, end_date, status, error, started_at, finished_at FROM runs WHERE id = ?`,
		runID).Scan(&run.ID, &run.InventoryPath, &run.Begin, &run.End, &run.Status, &run.Error, &run.StartedAt, &run.FinishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	return run, nil
}

// GetStats returns row counts per table.
func (s *LocalStore) GetStats() (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]int64)
	tables := []string{"runs", "run_days", "day_sections", "decode_failures"}

	for _, table := range tables {
		var count int64
		err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		stats[table] = count
	}

	return stats, nil
}
