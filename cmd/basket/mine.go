package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Veraticus/market-basket/internal/apriori"
	"github.com/Veraticus/market-basket/internal/cli"
	"github.com/Veraticus/market-basket/internal/common"
	"github.com/Veraticus/market-basket/internal/config"
	"github.com/Veraticus/market-basket/internal/engine"
	"github.com/Veraticus/market-basket/internal/export"
	"github.com/Veraticus/market-basket/internal/model"
	"github.com/Veraticus/market-basket/internal/service"
	"github.com/Veraticus/market-basket/internal/sheets"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func mineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mine",
		Short: "Mine frequent itemsets and association rules",
		Long: `Group stored line items into baskets, find every itemset bought in at
least --min-support of them and derive rules with at least --min-confidence.

The run is saved so it can be listed, browsed and exported later.

Examples:
  # Mine everything with the configured thresholds
  basket mine

  # What sells together at weekends?
  basket mine --weekday sat,sun --min-support 0.01

  # Pairs only, published to Google Sheets
  basket mine --max-length 2 --sheets`,
		Args: cobra.NoArgs,
		RunE: runMine,
	}

	addMiningFlags(cmd)
	addFilterFlags(cmd)
	cmd.Flags().Int("limit", 20, "rows of itemsets and rules to print (0 = all)")
	cmd.Flags().Bool("dry-run", false, "mine without saving the run")
	cmd.Flags().Bool("no-progress", false, "hide per-level progress bars")
	cmd.Flags().Bool("sheets", false, "publish the run to Google Sheets")
	cmd.Flags().StringP("output", "o", "", "also export the run to this file (.csv, .json, .yaml)")

	return cmd
}

func runMine(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	bindMiningFlags(cmd)

	filter, err := parseFilter(cmd)
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	publish, _ := cmd.Flags().GetBool("sheets")
	output, _ := cmd.Flags().GetString("output")

	handler := cli.NewInterruptHandler(out, "Mining").
		WithHint("Raise --min-support or set --max-length for a faster run")
	ctx, stop := handler.HandleInterrupts(cmd.Context())
	defer stop()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	var observer apriori.Observer
	if !noProgress {
		observer = cli.NewLevelProgress(cmd.ErrOrStderr())
	}
	opts, err := miningOptions(filter, observer)
	if err != nil {
		return err
	}
	opts.DryRun = dryRun
	if publish {
		reporter, reporterErr := newSheetsWriter(ctx)
		if reporterErr != nil {
			return reporterErr
		}
		opts.Reporter = reporter
	}

	result, runErr := engine.New(store, slog.Default()).Run(ctx, opts)
	if runErr != nil {
		if handler.WasInterrupted() {
			return nil
		}
		if result == nil {
			return runErr
		}
		// Mined and saved but not published: show the result, then fail.
		common.LogError(runErr, "failed to publish run", common.Fields{"run_id": result.Run.ID})
	}

	printResult(out, result, limit)

	if output != "" {
		if err := exportToFile(output, "", result); err != nil {
			return err
		}
		fmt.Fprintln(out, cli.FormatSuccess("Exported run to "+output))
	}
	if !dryRun {
		fmt.Fprintln(out, cli.FormatInfo("Browse the rules with: basket browse "+result.Run.ID))
	}
	return runErr
}

func printResult(w io.Writer, result *model.RunResult, limit int) {
	fmt.Fprintln(w, cli.RenderRun(result.Run))
	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.FormatTitle("Frequent itemsets"))
	fmt.Fprintln(w, cli.RenderItemsets(result.Itemsets, limit))
	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.FormatTitle("Association rules"))
	fmt.Fprintln(w, cli.RenderRules(result.Rules, limit))
}

func newSheetsWriter(ctx context.Context) (service.ReportWriter, error) {
	cfg, err := config.LoadSheetsConfig(viper.GetViper())
	if err != nil {
		if errors.Is(err, sheets.ErrNoAuth) {
			return nil, fmt.Errorf("google Sheets is not configured; run 'basket sheets auth' first: %w", err)
		}
		return nil, fmt.Errorf("invalid sheets configuration: %w", err)
	}

	writer, err := sheets.NewWriter(ctx, *cfg, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets writer: %w", err)
	}
	return writer, nil
}

// exportToFile writes result to path; format defaults to the path's extension.
func exportToFile(path, format string, result *model.RunResult) error {
	var (
		f   export.Format
		err error
	)
	if format != "" {
		f, err = export.ParseFormat(format)
	} else {
		f, err = export.FormatFromPath(path)
	}
	if err != nil {
		return err
	}

	file, err := os.Create(path) // #nosec G304 -- user-supplied output path
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := export.Write(file, f, result); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// miningOptions builds engine options from the mining configuration, filter
// and observer.
func miningOptions(filter service.BasketFilter, observer apriori.Observer) (engine.RunOptions, error) {
	mining, err := config.LoadMining(viper.GetViper())
	if err != nil {
		return engine.RunOptions{}, err
	}
	return engine.RunOptions{
		Observer:      observer,
		Filter:        filter,
		MinSupport:    mining.MinSupport,
		MinConfidence: mining.MinConfidence,
		MaxLength:     mining.MaxLength,
		Workers:       mining.Workers,
	}, nil
}
