package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolsim/internal/logging"
	"poolsim/internal/simulation"
	"poolsim/internal/store"
)

var simulateNoStore bool

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Replay the relocation plans over the configured date range",
	RunE:  runSimulate,
}

func runSimulate(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := signalContext()
	defer cancel()
	log := logging.For(logger, logging.CategoryCLI)

	begin, end, err := cfg.DateRange()
	if err != nil {
		return err
	}
	env, err := newEnv()
	if err != nil {
		return err
	}
	plans, err := simulation.LoadPlans(cfg.Simulation)
	if err != nil {
		return err
	}
	inv, report, err := env.LoadInventory(ctx, cfg.Inventory.Path)
	if err != nil {
		return err
	}

	var results *store.LocalStore
	var runID string
	if !simulateNoStore {
		results, err = store.NewLocalStore(cfg.Output.Database, logging.For(logger, logging.CategoryStore))
		if err != nil {
			return err
		}
		defer results.Close()

		run, berr := results.BeginRun(ctx, cfg.Inventory.Path, cfg.Simulation.Begin, cfg.Simulation.End)
		if berr != nil {
			return berr
		}
		runID = run.ID
		defer func() {
			// Record the outcome even when the run context was cancelled.
			if ferr := results.FinishRun(context.WithoutCancel(ctx), runID, err); ferr != nil {
				err = errors.Join(err, ferr)
			}
		}()
		if err = results.SaveReport(ctx, runID, report); err != nil {
			return err
		}
	}

	runner := &simulation.Runner{Env: env, Plans: plans, StrictShipment: cfg.Simulation.StrictShipment}
	days, runErr := runner.Run(ctx, inv, begin, end)

	if results != nil {
		if err := results.SaveDays(ctx, runID, days); err != nil {
			return errors.Join(runErr, err)
		}
		log.Info("Results stored", zap.String("run", runID), zap.String("database", cfg.Output.Database))
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderDays(days))
	if runErr != nil {
		return runErr
	}

	if cfg.Output.StateFile != "" {
		if err := writeState(cfg.Output.StateFile, inv.WriteState); err != nil {
			return err
		}
		log.Info("State file written", zap.String("path", cfg.Output.StateFile))
	}
	return nil
}

func writeState(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create state file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
