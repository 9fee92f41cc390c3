package main

import (
	"fmt"

	"github.com/Veraticus/market-basket/internal/cli"
	"github.com/Veraticus/market-basket/internal/export"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [run-id]",
		Short: "Export a run's itemsets and rules to a file",
		Long: `Export a saved run, newest by default, as CSV, JSON or YAML.

Examples:
  basket export -o rules.csv
  basket export 3f2c... -o run.json
  basket export --format yaml    # to stdout`,
		Args: cobra.MaximumNArgs(1),
		RunE: runExport,
	}

	cmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringP("format", "f", "", "csv, json or yaml (default: from the output extension, else csv)")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	output, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	result, err := loadRun(ctx, store, runIDArg(args))
	if err != nil {
		return err
	}

	if output == "" {
		if format == "" {
			format = string(export.FormatCSV)
		}
		f, err := export.ParseFormat(format)
		if err != nil {
			return err
		}
		return export.Write(cmd.OutOrStdout(), f, result)
	}

	if err := exportToFile(output, format, result); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %d itemsets and %d rules to %s",
		len(result.Itemsets), len(result.Rules), output)))
	return nil
}
