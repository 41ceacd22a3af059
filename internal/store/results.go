package store

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"poolsim/internal/fuel"
	"poolsim/internal/inventory"
	"poolsim/internal/simulation"
)

// SaveReport stores the records of a decode report that did not load.
func (s *LocalStore) SaveReport(ctx context.Context, runID string, report *inventory.Report) error {
	problems := report.Problems()
	if len(problems) == 0 {
		return nil
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO decode_failures (run_id, record_index, status, assembly_id, error) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare decode failure insert: %w", err)
		}
		defer stmt.Close()

		for _, o := range problems {
			msg := ""
			if o.Err != nil {
				msg = o.Err.Error()
			}
			if _, err := stmt.ExecContext(ctx, runID, o.Index, o.Status.String(), o.AssemblyID, msg); err != nil {
				return fmt.Errorf("failed to insert decode failure %d: %w", o.Index, err)
			}
		}
		s.log.Debug("Decode report stored", zap.String("run", runID), zap.Int("failures", len(problems)))
		return nil
	})
}

// SaveDays stores day summaries. Every section is written for every day, empty ones as zero rows.
func (s *LocalStore) SaveDays(ctx context.Context, runID string, days []simulation.DaySummary) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		dayStmt, err := tx.PrepareContext(ctx,
			`INSERT INTO run_days (run_id, day, moves, diagnostics, heat_diagnostics) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare day insert: %w", err)
		}
		defer dayStmt.Close()

		secStmt, err := tx.PrepareContext(ctx,
			`INSERT INTO day_sections (run_id, day, section, assemblies, heat, removed) VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare section insert: %w", err)
		}
		defer secStmt.Close()

		for _, d := range days {
			day := d.Date.Format(fuel.DateLayout)
			if _, err := dayStmt.ExecContext(ctx, runID, day, d.Moves, len(d.Diagnostics), d.HeatDiagnostics); err != nil {
				return fmt.Errorf("failed to insert day %s: %w", day, err)
			}
			for _, sec := range fuel.Sections {
				st := d.Sections[sec]
				if _, err := secStmt.ExecContext(ctx, runID, day, sec.String(), st.Count, st.Heat, d.Removed[sec]); err != nil {
					return fmt.Errorf("failed to insert %s on %s: %w", sec, day, err)
				}
			}
		}
		s.log.Debug("Day summaries stored", zap.String("run", runID), zap.Int("days", len(days)))
		return nil
	})
}

// SectionRow is one stored (day, section) result.
type SectionRow struct {
	Day        string
	Section    string
	Assemblies int
	Heat       float64
	Removed    int
}

// LoadSections returns a run's section rows for one section name, or all sections when section is empty,
// in insertion order.
func (s *LocalStore) LoadSections(ctx context.Context, runID, section string) ([]SectionRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := `SELECT day, section, assemblies, heat, removed FROM day_sections WHERE run_id = ?`
	args := []any{runID}
	if section != "" {
		q += ` AND section = ?`
		args = append(args, section)
	}
	q += ` ORDER BY rowid`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sections: %w", err)
	}
	defer rows.Close()

	var out []SectionRow
	for rows.Next() {
		var r SectionRow
		if err := rows.Scan(&r.Day, &r.Section, &r.Assemblies, &r.Heat, &r.Removed); err != nil {
			return nil, fmt.Errorf("failed to scan section row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// FailureRow is one stored decode failure.
type FailureRow struct {
	Index      int
	Status     string
	AssemblyID string
	Error      string
}

// LoadFailures returns a run's decode failures by record index.
func (s *LocalStore) LoadFailures(ctx context.Context, runID string) ([]FailureRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT record_index, status, assembly_id, error FROM decode_failures WHERE run_id = ? ORDER BY record_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query decode failures: %w", err)
	}
	defer rows.Close()

	var out []FailureRow
	for rows.Next() {
		var r FailureRow
		if err := rows.Scan(&r.Index, &r.Status, &r.AssemblyID, &r.Error); err != nil {
			return nil, fmt.Errorf("failed to scan decode failure: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *LocalStore) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
