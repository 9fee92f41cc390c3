package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/Veraticus/market-basket/internal/cli"
	"github.com/Veraticus/market-basket/internal/engine"
	"github.com/Veraticus/market-basket/internal/service"
	"github.com/Veraticus/market-basket/internal/watch"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-import and re-mine a log whenever it changes",
		Long: `Import a transaction log, mine it, then repeat both every time the file
is saved. Each pass replaces the line items the file imported before and mines
from scratch.

Runs are not saved unless --save is given.`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	addMiningFlags(cmd)
	cmd.Flags().String("format", "", "input format (csv, ofx); detected from the extension by default")
	cmd.Flags().String("timezone", "UTC", "time zone of timestamps without an offset")
	cmd.Flags().StringSlice("layout", nil, "date_time layouts in Go reference form (overrides import.time_layouts)")
	cmd.Flags().Duration("debounce", 0, "quiet period before re-mining (default: watch.debounce)")
	cmd.Flags().Int("limit", 10, "rules to print after each pass")
	cmd.Flags().Bool("save", false, "save every run")

	return cmd
}

// watchPass imports the watched file and mines it once.
type watchPass struct {
	store   service.Storage
	engine  *engine.Engine
	out     io.Writer
	path    string
	options importOptions
	limit   int
	save    bool
}

func runWatch(cmd *cobra.Command, args []string) error {
	bindMiningFlags(cmd)

	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", args[0], err)
	}

	opts, err := importOptionsFromFlags(cmd)
	if err != nil {
		return err
	}
	opts.replace = true

	debounce, _ := cmd.Flags().GetDuration("debounce")
	if debounce <= 0 {
		debounce = viper.GetDuration("watch.debounce")
	}
	limit, _ := cmd.Flags().GetInt("limit")
	save, _ := cmd.Flags().GetBool("save")

	handler := cli.NewInterruptHandler(cmd.OutOrStdout(), "Watching")
	ctx, stop := handler.HandleInterrupts(cmd.Context())
	defer stop()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	pass := &watchPass{
		store:   store,
		engine:  engine.New(store, slog.Default()),
		out:     cmd.OutOrStdout(),
		path:    path,
		options: opts,
		limit:   limit,
		save:    save,
	}

	if err := pass.run(ctx); err != nil {
		fmt.Fprintln(pass.out, cli.FormatError(err.Error()))
	}

	w, err := watch.New([]string{path}, debounce, func(ctx context.Context, _ []string) error {
		return pass.run(ctx)
	}, slog.Default())
	if err != nil {
		return err
	}

	fmt.Fprintln(pass.out, cli.FormatInfo(fmt.Sprintf("Watching %s (Ctrl+C to stop)", path)))
	return w.Run(ctx)
}

func (p *watchPass) run(ctx context.Context) error {
	summary, err := importFile(ctx, p.store, p.path, p.options)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	printImportSummary(p.out, summary, false)

	opts, err := miningOptions(service.BasketFilter{Source: summary.source}, nil)
	if err != nil {
		return err
	}
	opts.DryRun = !p.save

	result, err := p.engine.Run(ctx, opts)
	if err != nil {
		return err
	}

	fmt.Fprintln(p.out, cli.FormatSuccess(fmt.Sprintf("%d transactions: %d itemsets, %d rules",
		result.Run.TransactionCount, len(result.Itemsets), len(result.Rules))))
	fmt.Fprintln(p.out, cli.RenderRules(result.Rules, p.limit))
	return nil
}
