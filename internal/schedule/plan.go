// Package schedule amortizes relocation instruction lists over per-stage time windows and applies them to the
// inventory one simulated day at a time.
package schedule

import (
	"time"

	"poolsim/internal/fault"
	"poolsim/internal/fuel"
)

const secondsPerDay = 24 * 60 * 60

// Stage is a relocation stage. Stages run in declaration order every simulated day.
type Stage int

const (
	StageUnload   Stage = iota // core to pool
	StageReload                // pool to core
	StageShipment              // pool to transport container
)

// Stages lists the stages in execution order.
var Stages = []Stage{StageUnload, StageReload, StageShipment}

func (s Stage) String() string {
	switch s {
	case StageUnload:
		return "unload"
	case StageReload:
		return "reload"
	case StageShipment:
		return "shipment"
	default:
		return "unknown"
	}
}

// Instruction moves one assembly to a new coordinate. Op, Code and From are carried through from the
// instruction file for re-export; the engine only reads AssemblyID and Destination.
type Instruction struct {
	Op          int
	Code        string
	AssemblyID  string
	From        fuel.Coordinate
	Destination fuel.Coordinate
	Source      string
	Line        int
}

// Window is a stage's time window.
type Window struct {
	Stage Stage
	Begin time.Time
	End   time.Time
}

// Plan is a stage window with its ordered instruction list and the per-operation duration derived from them.
type Plan struct {
	Window       Window
	Instructions []Instruction
	PerOp        int64 // seconds, ceil(window / len(Instructions))
}

// NewPlan computes the per-operation duration once. An empty instruction list or a non-positive window is a
// ConfigError.
func NewPlan(w Window, instructions []Instruction) (*Plan, error) {
	if len(instructions) == 0 {
		return nil, fault.New(fault.KindConfig, w.Stage.String(), "no pending instructions")
	}
	total := int64(w.End.Sub(w.Begin) / time.Second)
	if total <= 0 {
		return nil, fault.New(fault.KindConfig, w.Stage.String(), "window %s - %s is empty",
			w.Begin.Format(fuel.TimestampLayout), w.End.Format(fuel.TimestampLayout))
	}
	return &Plan{
		Window:       w,
		Instructions: instructions,
		PerOp:        ceilDiv(total, int64(len(instructions))),
	}, nil
}

// OpsForDay returns how many operations the stage performs on the given day.
//
// On the window's first day only whole operations that fit before midnight (or the window end) count.
// Full days inside the window and the window's last day round up.
func (p *Plan) OpsForDay(day time.Time) int {
	d := fuel.Midnight(day)
	next := d.AddDate(0, 0, 1)
	beginDay := fuel.Midnight(p.Window.Begin)
	endDay := fuel.Midnight(p.Window.End)

	switch {
	case d.Equal(beginDay):
		until := p.Window.End
		if next.Before(until) {
			until = next
		}
		avail := int64(until.Sub(p.Window.Begin) / time.Second)
		if avail <= 0 {
			return 0
		}
		return int(avail / p.PerOp)
	case d.After(beginDay) && d.Before(endDay):
		return int(ceilDiv(secondsPerDay, p.PerOp))
	case d.Equal(endDay):
		avail := int64(p.Window.End.Sub(d) / time.Second)
		if avail <= 0 {
			return 0
		}
		return int(ceilDiv(avail, p.PerOp))
	default:
		return 0
	}
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}

// Cursor walks an instruction list once. It never rewinds; an exhausted cursor yields nothing.
type Cursor struct {
	list []Instruction
	next int
}

// NewCursor starts a cursor at the head of list.
func NewCursor(list []Instruction) *Cursor {
	return &Cursor{list: list}
}

// Next pops the next instruction.
func (c *Cursor) Next() (Instruction, bool) {
	if c.next >= len(c.list) {
		return Instruction{}, false
	}
	ins := c.list[c.next]
	c.next++
	return ins, true
}

// Consumed returns how many instructions have been popped.
func (c *Cursor) Consumed() int { return c.next }

// Remaining returns how many instructions are left.
func (c *Cursor) Remaining() int { return len(c.list) - c.next }
