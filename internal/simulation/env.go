// Package simulation wires the inventory, schedule engine, heat model and container packer into runs.
//
// Everything a run needs travels in an explicit Env; the package keeps no global state, so several
// independent runs can share a process.
package simulation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"poolsim/internal/config"
	"poolsim/internal/fixedtext"
	"poolsim/internal/heat"
	"poolsim/internal/inventory"
	"poolsim/internal/logging"
	"poolsim/internal/schedule"
)

// Env is the context object passed to every component call of a run.
type Env struct {
	CodePage   fixedtext.CodePage
	Heat       *heat.Model
	Log        *zap.Logger
	RecordSize int
	Workers    int
}

// NewEnv builds an Env from validated configuration.
func NewEnv(cfg *config.Config, log *zap.Logger) (*Env, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cp, err := fixedtext.LookupCodePage(cfg.Inventory.CodePage)
	if err != nil {
		return nil, err
	}
	model := heat.NewModel()
	if err := model.Validate(); err != nil {
		return nil, err
	}
	return &Env{
		CodePage:   cp,
		Heat:       model,
		Log:        log,
		RecordSize: cfg.Inventory.RecordSize,
		Workers:    cfg.Inventory.Workers,
	}, nil
}

// LoadInventory reads and decodes an inventory file.
func (e *Env) LoadInventory(ctx context.Context, path string) (*inventory.Inventory, *inventory.Report, error) {
	log := logging.For(e.Log, logging.CategoryInventory)

	chunks, tail, err := inventory.ReadFile(path, e.RecordSize)
	if err != nil {
		return nil, nil, err
	}
	if len(tail) > 0 {
		log.Warn("Inventory file has a partial trailing record",
			zap.String("path", path),
			zap.Int("records", len(chunks)),
			zap.Int("tail_bytes", len(tail)),
			zap.Binary("tail", tail))
	}

	b := inventory.NewBuilder(e.CodePage, e.RecordSize, e.Workers, logging.For(e.Log, logging.CategoryCodec))
	inv, report, err := b.Build(ctx, chunks)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build inventory from %s: %w", path, err)
	}
	report.TailBytes = len(tail)
	return inv, report, nil
}

// LoadPlans reads the configured stage instruction files and computes their plans. Stages without an
// instruction file are skipped.
func LoadPlans(sim config.SimulationConfig) ([]*schedule.Plan, error) {
	stages := []struct {
		stage schedule.Stage
		cfg   config.StageConfig
	}{
		{schedule.StageUnload, sim.Stages.Unload},
		{schedule.StageReload, sim.Stages.Reload},
		{schedule.StageShipment, sim.Stages.Shipment},
	}

	var plans []*schedule.Plan
	for _, s := range stages {
		if !s.cfg.Enabled() {
			continue
		}
		begin, end, err := s.cfg.Window()
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", s.stage, err)
		}
		list, err := schedule.LoadStage(schedule.Files{
			Instructions: s.cfg.Instructions,
			Backup:       s.cfg.Backup,
			Override:     s.cfg.Override,
		}, sim.SimulatorMarker)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", s.stage, err)
		}
		plan, err := schedule.NewPlan(schedule.Window{Stage: s.stage, Begin: begin, End: end}, list)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}
