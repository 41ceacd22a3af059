package schedule

import (
	"fmt"
	"maps"
	"time"

	"go.uber.org/zap"

	"poolsim/internal/fault"
	"poolsim/internal/fuel"
)

// Resolver finds assemblies by id. *inventory.Inventory satisfies it.
type Resolver interface {
	Get(id string) (*fuel.Assembly, bool)
}

// Move records one applied instruction.
type Move struct {
	Stage       Stage
	Instruction Instruction
	From        fuel.Coordinate
}

// StepResult is what one simulated day did.
type StepResult struct {
	Day         time.Time
	Moves       []Move
	Removed     map[fuel.Section]int // shipment removals by source section
	Diagnostics []error              // informational errors, e.g. unclassified shipment targets
}

// Engine applies stage plans to an inventory, one day at a time.
type Engine struct {
	// StrictShipment makes shipping an assembly that is in no section a fatal error.
	StrictShipment bool

	inv     Resolver
	plans   map[Stage]*Plan
	cursors map[Stage]*Cursor
	removed map[fuel.Section]int
	log     *zap.Logger
}

// NewEngine creates an engine over the given plans. At most one plan per stage.
func NewEngine(inv Resolver, plans []*Plan, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{
		inv:     inv,
		plans:   make(map[Stage]*Plan, len(plans)),
		cursors: make(map[Stage]*Cursor, len(plans)),
		removed: make(map[fuel.Section]int),
		log:     log,
	}
	for _, p := range plans {
		s := p.Window.Stage
		if _, dup := e.plans[s]; dup {
			return nil, fault.New(fault.KindConfig, s.String(), "stage planned twice")
		}
		e.plans[s] = p
		e.cursors[s] = NewCursor(p.Instructions)
	}
	return e, nil
}

// Step runs every stage in order for one day. A LookupError, or an UnclassifiedSectionError under
// StrictShipment, aborts the step; moves already applied stay applied.
func (e *Engine) Step(day time.Time) (*StepResult, error) {
	res := &StepResult{Day: fuel.Midnight(day), Removed: make(map[fuel.Section]int)}

	for _, stage := range Stages {
		plan, ok := e.plans[stage]
		if !ok {
			continue
		}
		cur := e.cursors[stage]
		ops := plan.OpsForDay(day)
		for k := 0; k < ops; k++ {
			ins, ok := cur.Next()
			if !ok {
				break
			}
			if err := e.apply(stage, ins, res); err != nil {
				return res, err
			}
		}
		if ops > 0 {
			e.log.Debug("Stage stepped",
				zap.Time("day", res.Day),
				zap.Stringer("stage", stage),
				zap.Int("ops", ops),
				zap.Int("consumed", cur.Consumed()),
				zap.Int("remaining", cur.Remaining()))
		}
	}
	return res, nil
}

func (e *Engine) apply(stage Stage, ins Instruction, res *StepResult) error {
	a, ok := e.inv.Get(ins.AssemblyID)
	if !ok {
		return fault.Wrap(fault.KindLookup, ins.AssemblyID,
			fmt.Errorf("%s:%d: assembly not in inventory", ins.Source, ins.Line))
	}

	if stage == StageShipment {
		sec := a.Section()
		if sec == fuel.SectionUnclassified {
			err := fault.New(fault.KindUnclassifiedSection, a.ID, "shipped from %d-%d, outside every section",
				a.Coordinate.Bridge, a.Coordinate.Cart)
			if e.StrictShipment {
				return err
			}
			e.log.Warn("Shipment target outside every section", zap.String("assembly", a.ID), zap.Error(err))
			res.Diagnostics = append(res.Diagnostics, err)
		} else {
			res.Removed[sec]++
			e.removed[sec]++
		}
	}

	res.Moves = append(res.Moves, Move{Stage: stage, Instruction: ins, From: a.Coordinate})
	a.Coordinate = ins.Destination
	return nil
}

// Consumed returns how many of the stage's instructions have been applied.
func (e *Engine) Consumed(stage Stage) int {
	if c, ok := e.cursors[stage]; ok {
		return c.Consumed()
	}
	return 0
}

// Pending returns how many of the stage's instructions remain.
func (e *Engine) Pending(stage Stage) int {
	if c, ok := e.cursors[stage]; ok {
		return c.Remaining()
	}
	return 0
}

// Removed returns the cumulative shipment removals by source section.
func (e *Engine) Removed() map[fuel.Section]int {
	return maps.Clone(e.removed)
}
