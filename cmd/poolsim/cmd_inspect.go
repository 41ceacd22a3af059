package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"poolsim/internal/fuel"
	"poolsim/internal/inventory"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Decode the inventory and print the load report and section counts",
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	env, err := newEnv()
	if err != nil {
		return err
	}
	inv, report, err := env.LoadInventory(ctx, cfg.Inventory.Path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d records, %d loaded, %d failed, %d duplicates, %d trailing bytes\n",
		cfg.Inventory.Path, len(report.Outcomes),
		report.Count(inventory.OutcomeLoaded), report.Count(inventory.OutcomeFailed),
		report.Count(inventory.OutcomeDuplicate), report.TailBytes)
	if problems := report.Problems(); len(problems) > 0 {
		fmt.Fprintln(out, renderProblems(problems))
	}

	groups := inv.BySection()
	rows := make([][]string, 0, len(fuel.Sections))
	for _, s := range fuel.Sections {
		rows = append(rows, []string{s.String(), fmt.Sprint(len(groups[s]))})
	}
	fmt.Fprintln(out, renderTable([]string{"Section", "Assemblies"}, rows))
	return nil
}
