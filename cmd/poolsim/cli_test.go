package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"poolsim/internal/config"
	"poolsim/internal/fixedtext"
	"poolsim/internal/record"
	"poolsim/internal/schedule"
)

func curve(start float64) [record.ActivityPoints]float64 {
	var c [record.ActivityPoints]float64
	for i := range c {
		c[i] = start - float64(i)
	}
	return c
}

// setup writes a three-assembly inventory and points the globals at it.
func setup(t *testing.T) string {
	t.Helper()
	logger = zap.NewNop()
	dir := t.TempDir()

	cp := fixedtext.MustCodePage(fixedtext.DefaultCodePage)
	var data []byte
	for i, tpl := range []record.Template{
		{Family: "A", Serial: "1", Bridge: 61, Cart: 1, Heat: curve(50)},
		{Family: "A", Serial: "2", Bridge: 62, Cart: 4, Heat: curve(80)},
		{Family: "B", Serial: "1", Bridge: 5, Cart: 9, Heat: curve(20)},
	} {
		tpl.Campaigns = []record.TemplateCampaign{{Number: 1, Begin: "01.01.2024", End: "01.01.2025"}}
		c, err := tpl.Build(cp)
		require.NoError(t, err, "template %d", i)
		data = append(data, c...)
	}
	path := filepath.Join(dir, "initial_state")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg = config.DefaultConfig()
	cfg.Inventory.Path = path
	cfg.Output.Database = filepath.Join(dir, "poolsim.db")
	t.Cleanup(func() { cfg = nil })
	return dir
}

func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	return cmd, &out
}

func TestInspectCmd(t *testing.T) {
	setup(t)
	cmd, out := newTestCmd()

	require.NoError(t, runInspect(cmd, nil))
	assert.Contains(t, out.String(), "3 records, 3 loaded, 0 failed, 0 duplicates")
	assert.Contains(t, out.String(), "section-A")
}

func TestSimulateCmd(t *testing.T) {
	dir := setup(t)
	cfg.Simulation.Begin = "01.02.2025"
	cfg.Simulation.End = "03.02.2025"
	cfg.Output.StateFile = filepath.Join(dir, "final_state")
	cmd, out := newTestCmd()

	require.NoError(t, runSimulate(cmd, nil))
	assert.Contains(t, out.String(), "01.02.2025")
	assert.Contains(t, out.String(), "03.02.2025")

	state, err := os.ReadFile(cfg.Output.StateFile)
	require.NoError(t, err)
	assert.Len(t, state, 3*record.Size)
	_, err = os.Stat(cfg.Output.Database)
	assert.NoError(t, err)
}

func TestSimulateCmd_NoRange(t *testing.T) {
	setup(t)
	cmd, _ := newTestCmd()
	assert.Error(t, runSimulate(cmd, nil))
}

func TestPackCmd(t *testing.T) {
	dir := setup(t)
	cfg.Output.Instructions = filepath.Join(dir, "shipment.txt")
	packDate, packIDs, packNumber, packWrite = "01.02.2025", []string{"A1", "A2"}, 3, true
	t.Cleanup(func() { packDate, packIDs, packNumber, packWrite = "", nil, 1, false })
	cmd, out := newTestCmd()

	require.NoError(t, runPack(cmd, nil))
	assert.Contains(t, out.String(), "Container 3: 2 assemblies")

	f, err := os.Open(cfg.Output.Instructions)
	require.NoError(t, err)
	defer f.Close()
	ins, err := schedule.ParseInstructions(f, cfg.Output.Instructions, "")
	require.NoError(t, err)
	require.Len(t, ins, 2)

	// The hotter assembly takes the first cell of the standard order.
	assert.Equal(t, "A2", ins[0].AssemblyID)
	assert.Equal(t, 1003, ins[1].Destination.Bridge)
	got := []int{ins[0].Destination.Cart, ins[1].Destination.Cart}
	assert.ElementsMatch(t, []int{7, 10}, got)
}

func TestPackCmd_UnknownID(t *testing.T) {
	setup(t)
	packDate, packIDs = "01.02.2025", []string{"Z9"}
	t.Cleanup(func() { packDate, packIDs = "", nil })
	cmd, _ := newTestCmd()

	err := runPack(cmd, nil)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "Z9"))
}
