package simulation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"poolsim/internal/container"
	"poolsim/internal/fault"
	"poolsim/internal/fuel"
	"poolsim/internal/inventory"
	"poolsim/internal/logging"
	"poolsim/internal/schedule"
)

// SectionStat is the population of one section on one day.
type SectionStat struct {
	Count int
	Heat  float64
}

// DaySummary is the state after all stages of one simulated day.
type DaySummary struct {
	Date     time.Time
	Sections map[fuel.Section]SectionStat
	Removed  map[fuel.Section]int
	Moves    int
	// Diagnostics are informational errors from the day's stages.
	Diagnostics []error
	// HeatDiagnostics counts assemblies whose heat could not be modeled and was taken as zero.
	HeatDiagnostics int
}

// Runner steps an inventory through a closed day range.
type Runner struct {
	Env            *Env
	Plans          []*schedule.Plan
	StrictShipment bool
}

// Run simulates every day from begin to end inclusive. A fatal error stops the run; the summaries of the
// days completed before it are returned with the error.
func (r *Runner) Run(ctx context.Context, inv *inventory.Inventory, begin, end time.Time) ([]DaySummary, error) {
	log := logging.For(r.Env.Log, logging.CategorySchedule)
	engine, err := schedule.NewEngine(inv, r.Plans, log)
	if err != nil {
		return nil, err
	}
	engine.StrictShipment = r.StrictShipment

	var out []DaySummary
	for day := fuel.Midnight(begin); !day.After(end); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		res, err := engine.Step(day)
		if err != nil {
			return out, fmt.Errorf("simulation stopped on %s: %w", day.Format(fuel.DateLayout), err)
		}
		s := r.Env.Summarize(inv, day)
		s.Removed = res.Removed
		s.Moves = len(res.Moves)
		s.Diagnostics = res.Diagnostics
		out = append(out, s)
	}

	for _, st := range schedule.Stages {
		log.Info("Stage totals",
			zap.Stringer("stage", st),
			zap.Int("consumed", engine.Consumed(st)),
			zap.Int("pending", engine.Pending(st)))
	}
	return out, nil
}

// Summarize counts assemblies and sums their heat per section at the given date.
func (e *Env) Summarize(inv *inventory.Inventory, day time.Time) DaySummary {
	log := logging.For(e.Log, logging.CategoryHeat)
	s := DaySummary{Date: fuel.Midnight(day), Sections: make(map[fuel.Section]SectionStat)}
	for _, a := range inv.Assemblies() {
		sec := a.Section()
		st := s.Sections[sec]
		st.Count++
		h, err := e.Heat.Heat(a, day)
		if err != nil {
			s.HeatDiagnostics++
			log.Debug("Heat not modeled", zap.String("assembly", a.ID), zap.Error(err))
		}
		st.Heat += h
		s.Sections[sec] = st
	}
	return s
}

// PackShipment computes each selected assembly's heat at the given date and packs them into a container.
// Unknown ids are LookupErrors. Heat diagnostics are returned alongside the container.
func (e *Env) PackShipment(inv *inventory.Inventory, ids []string, at time.Time, number int, order container.CellOrder) (*container.Container, []error, error) {
	log := logging.For(e.Log, logging.CategoryContainer)
	var diags []error
	cands := make([]container.Candidate, 0, len(ids))
	for _, id := range ids {
		a, ok := inv.Get(id)
		if !ok {
			return nil, nil, fault.New(fault.KindLookup, id, "assembly not in inventory")
		}
		h, err := e.Heat.Heat(a, at)
		if err != nil {
			diags = append(diags, err)
		}
		cands = append(cands, container.Candidate{Assembly: a, Heat: h})
	}

	c, err := container.Pack(number, cands, order)
	if err != nil {
		return nil, diags, err
	}
	_, sectionDiags := c.RemovedBySection()
	diags = append(diags, sectionDiags...)
	log.Info("Container packed",
		zap.Int("container", number),
		zap.Int("assemblies", c.Count()),
		zap.Float64("heat", c.Heat()),
		zap.Int("diagnostics", len(diags)))
	return c, diags, nil
}
