package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolsim/internal/config"
	"poolsim/internal/logging"
	"poolsim/internal/simulation"
)

var (
	// Global flags
	configPath string
	verbose    bool

	// Set in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "poolsim",
	Short: "poolsim - spent-fuel pool inventory and relocation simulator",
	Long: `poolsim decodes the plant inventory database, replays the planned
assembly relocations day by day and reports assembly counts and residual
decay heat per storage section.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}

		logger, err = logging.New(cfg.Logging)
		if err != nil {
			return err
		}
		logging.For(logger, logging.CategoryBoot).Debug("Configuration loaded",
			zap.String("path", configPath),
			zap.String("inventory", cfg.Inventory.Path),
			zap.String("codepage", cfg.Inventory.CodePage))
		return cfg.Validate()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "poolsim.yaml", "Config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	packCmd.Flags().StringVar(&packDate, "date", "", "Shipment date, dd.mm.yyyy (required)")
	packCmd.Flags().StringSliceVar(&packIDs, "ids", nil, "Assembly ids to load, at most 12 (required)")
	packCmd.Flags().IntVar(&packNumber, "number", 1, "Container number")
	packCmd.Flags().BoolVar(&packWrite, "write", false, "Append the container's relocation lines to output.instructions")
	packCmd.MarkFlagRequired("date")
	packCmd.MarkFlagRequired("ids")

	simulateCmd.Flags().BoolVar(&simulateNoStore, "no-store", false, "Do not persist results")

	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(packCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func newEnv() (*simulation.Env, error) {
	return simulation.NewEnv(cfg, logger)
}
