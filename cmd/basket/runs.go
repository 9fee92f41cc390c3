package main

import (
	"fmt"

	"github.com/Veraticus/market-basket/internal/cli"
	"github.com/spf13/cobra"
)

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List, show and delete saved mining runs",
		Args:  cobra.NoArgs,
		RunE:  runListRuns,
	}

	cmd.Flags().Int("limit", 20, "number of runs to list")

	cmd.AddCommand(&cobra.Command{
		Use:   "show [run-id]",
		Short: "Show a run's itemsets and rules (newest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runShowRun,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeleteRun,
	})

	return cmd
}

func runListRuns(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderRuns(runs))
	return nil
}

func runShowRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	result, err := loadRun(ctx, store, runIDArg(args))
	if err != nil {
		return err
	}

	printResult(cmd.OutOrStdout(), result, 0)
	return nil
}

func runDeleteRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	if err := store.DeleteRun(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to delete run %s: %w", args[0], err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted run "+args[0]))
	return nil
}
