package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/market-basket/internal/cli"
	"github.com/Veraticus/market-basket/internal/model"
	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarise stored line items",
		Long: `Chart stored line items by item or by calendar period.

Examples:
  # Best sellers
  basket stats --by item --limit 10

  # Busiest hours of the day
  basket stats --by hour`,
		Args: cobra.NoArgs,
		RunE: runStats,
	}

	cmd.Flags().String("by", "item", "group by item, month, weekday or hour")
	cmd.Flags().Int("limit", 15, "number of items to chart when grouping by item")

	return cmd
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	by, _ := cmd.Flags().GetString("by")
	limit, _ := cmd.Flags().GetInt("limit")
	by = strings.ToLower(by)

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	transactions, err := store.CountTransactions(ctx)
	if err != nil {
		return fmt.Errorf("failed to count transactions: %w", err)
	}
	fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("%d transactions", transactions)))

	if by == "item" {
		items, err := store.TopItems(ctx, limit)
		if err != nil {
			return fmt.Errorf("failed to count items: %w", err)
		}
		fmt.Fprintln(out, cli.RenderCounts("Item", cli.ItemCounts(items)))
		return nil
	}

	dimension := model.Dimension(by)
	if !dimension.IsValid() {
		return fmt.Errorf("invalid --by %q: want item, month, weekday or hour", by)
	}

	periods, err := store.CountByPeriod(ctx, dimension)
	if err != nil {
		return fmt.Errorf("failed to count by %s: %w", by, err)
	}
	fmt.Fprintln(out, cli.RenderCounts(strings.ToUpper(by[:1])+by[1:], cli.PeriodCounts(periods)))
	return nil
}
