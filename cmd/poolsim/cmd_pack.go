package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolsim/internal/container"
	"poolsim/internal/fuel"
	"poolsim/internal/logging"
	"poolsim/internal/schedule"
)

var (
	packDate   string
	packIDs    []string
	packNumber int
	packWrite  bool
)

var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Pack selected assemblies into a transport container by heat",
	Long: `Computes each assembly's residual heat at the shipment date and loads the
hottest assemblies into the container cells in the configured priority order.`,
	Example: `  poolsim pack --date 01.07.2025 --ids A1,A2,A3 --number 4`,
	RunE:    runPack,
}

func runPack(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()
	log := logging.For(logger, logging.CategoryCLI)

	at, err := fuel.ParseDate(packDate)
	if err != nil {
		return err
	}
	order, err := container.OrderByName(cfg.Container.CellOrder)
	if err != nil {
		return err
	}
	env, err := newEnv()
	if err != nil {
		return err
	}
	inv, _, err := env.LoadInventory(ctx, cfg.Inventory.Path)
	if err != nil {
		return err
	}

	c, diags, err := env.PackShipment(inv, packIDs, at, packNumber, order)
	if err != nil {
		return err
	}
	for _, d := range diags {
		log.Warn("Packing diagnostic", zap.Error(d))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderContainer(c))

	if !packWrite {
		return nil
	}
	if cfg.Output.Instructions == "" {
		return fmt.Errorf("--write needs output.instructions in the config")
	}
	f, err := os.OpenFile(cfg.Output.Instructions, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open instruction file: %w", err)
	}
	defer f.Close()
	next, err := schedule.WriteInstructions(f, c.Relocations(), 1)
	if err != nil {
		return err
	}
	log.Info("Relocations written",
		zap.String("path", cfg.Output.Instructions),
		zap.Int("instructions", next-1))
	return nil
}
