package main

import (
	"fmt"

	"github.com/Veraticus/market-basket/internal/tui"
	"github.com/spf13/cobra"
)

func browseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse [run-id]",
		Short: "Browse a run's rules interactively",
		Long: `Open an interactive table of a run's rules, newest run by default.

Keys: s cycles the sort between confidence, lift and support; enter shows
what a rule means in basket terms; / filters by item; q quits.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runBrowse,
	}

	cmd.Flags().String("theme", "default", "color theme (default, catppuccin-mocha)")

	return cmd
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	theme, _ := cmd.Flags().GetString("theme")

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	result, err := loadRun(ctx, store, runIDArg(args))
	if err != nil {
		return err
	}

	return tui.Run(ctx, result, tui.Config{Theme: theme})
}
