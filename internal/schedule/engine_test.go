package schedule

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poolsim/internal/fault"
	"poolsim/internal/fuel"
)

type pool map[string]*fuel.Assembly

func (p pool) Get(id string) (*fuel.Assembly, bool) {
	a, ok := p[id]
	return a, ok
}

func newPool(coords map[string]fuel.Coordinate) pool {
	p := make(pool, len(coords))
	for id, c := range coords {
		p[id] = &fuel.Assembly{ID: id, Coordinate: c}
	}
	return p
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := fuel.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestEngine_StagesRunInOrder(t *testing.T) {
	inv := newPool(map[string]fuel.Coordinate{"X": {Bridge: 5, Cart: 20}})
	window := func(s Stage) Window {
		return Window{Stage: s, Begin: ts(t, "02.01.2026 00:00"), End: ts(t, "02.01.2026 12:00")}
	}
	unload, err := NewPlan(window(StageUnload), []Instruction{{AssemblyID: "X", Destination: fuel.Coordinate{Bridge: 61, Cart: 4}}})
	require.NoError(t, err)
	ship, err := NewPlan(window(StageShipment), []Instruction{{AssemblyID: "X", Destination: fuel.Coordinate{Bridge: 1007, Cart: 7}}})
	require.NoError(t, err)

	// Plans given out of order; the engine still unloads before shipping.
	e, err := NewEngine(inv, []*Plan{ship, unload}, nil)
	require.NoError(t, err)

	res, err := e.Step(day(t, "02.01.2026"))
	require.NoError(t, err)
	require.Len(t, res.Moves, 2)
	assert.Equal(t, StageUnload, res.Moves[0].Stage)
	assert.Equal(t, fuel.Coordinate{Bridge: 5, Cart: 20}, res.Moves[0].From)
	assert.Equal(t, StageShipment, res.Moves[1].Stage)
	assert.Equal(t, fuel.Coordinate{Bridge: 61, Cart: 4}, res.Moves[1].From)
	assert.Equal(t, map[fuel.Section]int{fuel.SectionA: 1}, res.Removed)
	assert.Equal(t, fuel.Coordinate{Bridge: 1007, Cart: 7}, inv["X"].Coordinate)
	assert.Empty(t, res.Diagnostics)
	assert.Equal(t, map[fuel.Section]int{fuel.SectionA: 1}, e.Removed())
}

func TestEngine_LookupErrorIsFatal(t *testing.T) {
	inv := newPool(map[string]fuel.Coordinate{"a": {Bridge: 5}})
	w := Window{Stage: StageUnload, Begin: ts(t, "02.01.2026 00:00"), End: ts(t, "02.01.2026 03:00")}
	p, err := NewPlan(w, []Instruction{
		{AssemblyID: "a", Destination: fuel.Coordinate{Bridge: 61}},
		{AssemblyID: "ghost", Destination: fuel.Coordinate{Bridge: 62}, Source: "unload.txt", Line: 2},
		{AssemblyID: "a", Destination: fuel.Coordinate{Bridge: 63}},
	})
	require.NoError(t, err)
	e, err := NewEngine(inv, []*Plan{p}, nil)
	require.NoError(t, err)

	res, err := e.Step(day(t, "02.01.2026"))
	assert.ErrorIs(t, err, fault.ErrLookup)
	assert.True(t, fault.IsFatal(err))
	assert.Contains(t, err.Error(), "unload.txt:2")
	require.Len(t, res.Moves, 1, "no rollback of earlier moves")
	assert.Equal(t, 61, inv["a"].Coordinate.Bridge)
}

func TestEngine_UnclassifiedShipment(t *testing.T) {
	w := Window{Stage: StageShipment, Begin: ts(t, "02.01.2026 00:00"), End: ts(t, "02.01.2026 02:00")}
	mkPlan := func() *Plan {
		p, err := NewPlan(w, []Instruction{
			{AssemblyID: "gone", Destination: fuel.Coordinate{Bridge: 1001, Cart: 1}},
			{AssemblyID: "pooled", Destination: fuel.Coordinate{Bridge: 1001, Cart: 2}},
		})
		require.NoError(t, err)
		return p
	}

	t.Run("informational", func(t *testing.T) {
		inv := newPool(map[string]fuel.Coordinate{"gone": {Bridge: 200}, "pooled": {Bridge: 50}})
		e, err := NewEngine(inv, []*Plan{mkPlan()}, nil)
		require.NoError(t, err)

		res, err := e.Step(day(t, "02.01.2026"))
		require.NoError(t, err)
		require.Len(t, res.Diagnostics, 1)
		assert.ErrorIs(t, res.Diagnostics[0], fault.ErrUnclassifiedSection)
		assert.Equal(t, map[fuel.Section]int{fuel.SectionC: 1}, res.Removed)
		assert.Len(t, res.Moves, 2)
	})

	t.Run("strict", func(t *testing.T) {
		inv := newPool(map[string]fuel.Coordinate{"gone": {Bridge: 200}, "pooled": {Bridge: 50}})
		e, err := NewEngine(inv, []*Plan{mkPlan()}, nil)
		require.NoError(t, err)
		e.StrictShipment = true

		_, err = e.Step(day(t, "02.01.2026"))
		assert.ErrorIs(t, err, fault.ErrUnclassifiedSection)
		assert.Equal(t, 200, inv["gone"].Coordinate.Bridge)
	})
}

func TestEngine_DuplicateStage(t *testing.T) {
	w := Window{Stage: StageReload, Begin: ts(t, "02.01.2026 00:00"), End: ts(t, "02.01.2026 02:00")}
	p1, err := NewPlan(w, instructions(1))
	require.NoError(t, err)
	p2, err := NewPlan(w, instructions(1))
	require.NoError(t, err)
	_, err = NewEngine(pool{}, []*Plan{p1, p2}, nil)
	assert.ErrorIs(t, err, fault.ErrConfig)
}

// Over any run, each stage consumes at most its list, each instruction once, in list order.
func TestEngine_Conservation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	start := day(t, "01.03.2026")

	for trial := 0; trial < 50; trial++ {
		inv := make(pool)
		var plans []*Plan
		lists := make(map[Stage][]Instruction)
		for _, s := range Stages {
			n := 1 + rng.Intn(60)
			list := make([]Instruction, n)
			for i := range list {
				id := s.String() + string(rune('A'+i%26)) + string(rune('a'+i/26))
				inv[id] = &fuel.Assembly{ID: id, Coordinate: fuel.Coordinate{Bridge: 61}}
				list[i] = Instruction{AssemblyID: id, Destination: fuel.Coordinate{Bridge: 44, Cart: i}, Line: i + 1}
			}
			begin := start.Add(time.Duration(rng.Intn(5*24*60)) * time.Minute)
			end := begin.Add(time.Duration(1+rng.Intn(10*24*60)) * time.Minute)
			p, err := NewPlan(Window{Stage: s, Begin: begin, End: end}, list)
			require.NoError(t, err)
			plans = append(plans, p)
			lists[s] = list
		}
		e, err := NewEngine(inv, plans, nil)
		require.NoError(t, err)

		applied := make(map[Stage][]Instruction)
		for d := start.AddDate(0, 0, -1); d.Before(start.AddDate(0, 0, 20)); d = d.AddDate(0, 0, 1) {
			res, err := e.Step(d)
			require.NoError(t, err)
			for _, m := range res.Moves {
				applied[m.Stage] = append(applied[m.Stage], m.Instruction)
			}
		}
		for _, s := range Stages {
			list := lists[s]
			got := applied[s]
			require.LessOrEqual(t, len(got), len(list))
			assert.Equal(t, list[:len(got)], got, "stage %s applies a prefix in order", s)
			assert.Equal(t, len(got), e.Consumed(s))
			assert.Equal(t, len(list)-len(got), e.Pending(s))
		}
	}
}
