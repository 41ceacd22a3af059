package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poolsim/internal/fault"
	"poolsim/internal/fuel"
	"poolsim/internal/schedule"
)

func candidates(heats ...float64) []Candidate {
	out := make([]Candidate, len(heats))
	for i, h := range heats {
		out[i] = Candidate{
			Assembly: &fuel.Assembly{ID: string(rune('a' + i)), Coordinate: fuel.Coordinate{Bridge: 61, Cart: i + 1}},
			Heat:     h,
		}
	}
	return out
}

func TestPack_HottestFirst(t *testing.T) {
	c, err := Pack(3, candidates(5, 1, 9), OrderStandard)
	require.NoError(t, err)

	assert.Equal(t, "c", c.Cell(7).Assembly.ID)
	assert.Equal(t, 9.0, c.Cell(7).Heat)
	assert.Equal(t, "a", c.Cell(10).Assembly.ID)
	assert.Equal(t, "b", c.Cell(12).Assembly.ID)
	for _, n := range []int{1, 2, 3, 4, 5, 6, 8, 9, 11} {
		assert.True(t, c.Cell(n).Empty(), "cell %d", n)
	}
	assert.Equal(t, 3, c.Count())
	assert.Equal(t, 15.0, c.Heat())
}

func TestPack_TiesStable(t *testing.T) {
	c, err := Pack(1, candidates(2, 2, 2), OrderStandard)
	require.NoError(t, err)
	// Ascending stable sort keeps a,b,c; popping from the end fills 7, 10, 12 with c, b, a.
	assert.Equal(t, "c", c.Cell(7).Assembly.ID)
	assert.Equal(t, "b", c.Cell(10).Assembly.ID)
	assert.Equal(t, "a", c.Cell(12).Assembly.ID)
}

func TestPack_Full(t *testing.T) {
	heats := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	c, err := Pack(2, candidates(heats...), OrderEdgeReserved)
	require.NoError(t, err)
	assert.Equal(t, 12, c.Count())
	assert.Equal(t, 12.0, c.Cell(7).Heat)
	assert.Equal(t, 2.0, c.Cell(1).Heat)
	assert.Equal(t, 1.0, c.Cell(5).Heat)
}

func TestPack_TooManyCandidates(t *testing.T) {
	_, err := Pack(1, candidates(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13), OrderStandard)
	assert.ErrorIs(t, err, fault.ErrConfig)
}

func TestPack_BadOrder(t *testing.T) {
	_, err := Pack(1, candidates(1), CellOrder{1, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11})
	assert.ErrorIs(t, err, fault.ErrConfig)
}

func TestOrderByName(t *testing.T) {
	o, err := OrderByName("edge_reserved")
	require.NoError(t, err)
	assert.Equal(t, OrderEdgeReserved, o)
	o, err = OrderByName("")
	require.NoError(t, err)
	assert.Equal(t, OrderStandard, o)
	_, err = OrderByName("diagonal")
	assert.ErrorIs(t, err, fault.ErrConfig)
}

func TestRemovedBySection(t *testing.T) {
	cands := candidates(3, 2, 1)
	cands[1].Assembly.Coordinate.Bridge = 80
	cands[2].Assembly.Coordinate.Bridge = 0
	c, err := Pack(1, cands, OrderStandard)
	require.NoError(t, err)

	removed, diags := c.RemovedBySection()
	assert.Equal(t, map[fuel.Section]int{fuel.SectionA: 1, fuel.SectionB: 1}, removed)
	require.Len(t, diags, 1)
	assert.ErrorIs(t, diags[0], fault.ErrUnclassifiedSection)
	assert.False(t, fault.IsFatal(diags[0]))
}

func TestRelocations(t *testing.T) {
	cands := candidates(5, 9)
	cands[1].Assembly.ControlProgram = "ПС-7"
	c, err := Pack(4, cands, OrderStandard)
	require.NoError(t, err)

	got := c.Relocations()
	want := []schedule.Instruction{
		{Code: "606", AssemblyID: "b", From: fuel.Coordinate{Bridge: 61, Cart: 2}, Destination: fuel.Coordinate{Bridge: 1004, Cart: 7}},
		{Code: "600", AssemblyID: "a", From: fuel.Coordinate{Bridge: 61, Cart: 1}, Destination: fuel.Coordinate{Bridge: 1004, Cart: 10}},
	}
	assert.Equal(t, want, got)
}
