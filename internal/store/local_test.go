package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poolsim/internal/fault"
	"poolsim/internal/fuel"
	"poolsim/internal/inventory"
	"poolsim/internal/simulation"
)

func newStore(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewLocalStore(t *testing.T) {
	s := newStore(t)
	stats, err := s.GetStats()
	require.NoError(t, err)
	for _, table := range []string{"runs", "run_days", "day_sections", "decode_failures"} {
		assert.Contains(t, stats, table)
		assert.Zero(t, stats[table], table)
	}
}

func TestNewLocalStore_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "poolsim.db")
	s, err := NewLocalStore(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.FileExists(t, path)
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	run, err := s.BeginRun(ctx, "input/initial_state", "01.01.2026", "31.01.2026")
	require.NoError(t, err)
	require.Len(t, run.ID, 36)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, got.Status)
	assert.False(t, got.FinishedAt.Valid)

	require.NoError(t, s.FinishRun(ctx, run.ID, fault.New(fault.KindLookup, "X9", "assembly not in inventory")))
	got, err = s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Contains(t, got.Error, "X9")
	assert.True(t, got.FinishedAt.Valid)

	other, err := s.BeginRun(ctx, "input/initial_state", "01.01.2026", "31.01.2026")
	require.NoError(t, err)
	assert.NotEqual(t, run.ID, other.ID)
	require.NoError(t, s.FinishRun(ctx, other.ID, nil))
	got, err = s.GetRun(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, got.Status)
	assert.Empty(t, got.Error)

	_, err = s.GetRun(ctx, "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.ErrorIs(t, s.FinishRun(ctx, "nope", nil), ErrRunNotFound)
}

func TestSaveDays(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	run, err := s.BeginRun(ctx, "inv", "01.01.2026", "02.01.2026")
	require.NoError(t, err)

	days := []simulation.DaySummary{
		{
			Date: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			Sections: map[fuel.Section]simulation.SectionStat{
				fuel.SectionA: {Count: 2, Heat: 1.5},
				fuel.SectionC: {Count: 1, Heat: 0.25},
			},
		},
		{
			Date:        time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
			Sections:    map[fuel.Section]simulation.SectionStat{fuel.SectionA: {Count: 1, Heat: 0.7}},
			Removed:     map[fuel.Section]int{fuel.SectionA: 1},
			Moves:       1,
			Diagnostics: []error{errors.New("informational")},
		},
	}
	require.NoError(t, s.SaveDays(ctx, run.ID, days))

	stats, err := s.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats["run_days"])
	assert.Equal(t, int64(2*len(fuel.Sections)), stats["day_sections"])

	rows, err := s.LoadSections(ctx, run.ID, "section-A")
	require.NoError(t, err)
	assert.Equal(t, []SectionRow{
		{Day: "01.01.2026", Section: "section-A", Assemblies: 2, Heat: 1.5},
		{Day: "02.01.2026", Section: "section-A", Assemblies: 1, Heat: 0.7, Removed: 1},
	}, rows)

	all, err := s.LoadSections(ctx, run.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2*len(fuel.Sections))
	assert.Equal(t, "core", all[0].Section)

	// Saving the same days twice violates the primary key and rolls back.
	assert.Error(t, s.SaveDays(ctx, run.ID, days[:1]))
	stats, err = s.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats["run_days"])
}

func TestSaveReport(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	run, err := s.BeginRun(ctx, "inv", "01.01.2026", "02.01.2026")
	require.NoError(t, err)

	report := &inventory.Report{Outcomes: []inventory.Outcome{
		{Index: 0, Status: inventory.OutcomeLoaded, AssemblyID: "A1"},
		{Index: 1, Status: inventory.OutcomeFailed, Err: fault.New(fault.KindFormat, "mark", "length 200")},
		{Index: 2, Status: inventory.OutcomeDuplicate, AssemblyID: "A1", Err: errors.New("already loaded")},
	}}
	require.NoError(t, s.SaveReport(ctx, run.ID, report))

	rows, err := s.LoadFailures(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, FailureRow{Index: 1, Status: "failed", Error: "format error: mark: length 200"}, rows[0])
	assert.Equal(t, "duplicate", rows[1].Status)
	assert.Equal(t, "A1", rows[1].AssemblyID)

	require.NoError(t, s.SaveReport(ctx, run.ID, &inventory.Report{}))
}
