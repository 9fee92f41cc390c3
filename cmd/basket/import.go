package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/market-basket/internal/cli"
	"github.com/Veraticus/market-basket/internal/common"
	"github.com/Veraticus/market-basket/internal/ingest"
	"github.com/Veraticus/market-basket/internal/service"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import retail transaction logs or OFX statements",
		Long: `Import line items from retail CSV logs (Transaction, Item, date_time
columns) or OFX/QFX bank statements.

Item labels are cleaned and placeholder rows dropped; re-importing the same
file never duplicates line items.

Examples:
  # Import a bakery log
  basket import ~/Downloads/BreadBasket_DMS.csv

  # Re-import a log after editing it, replacing what it imported before
  basket import --replace bakery.csv

  # Treat each day's card payments as one basket
  basket import ~/Downloads/statements/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().String("format", "", "input format (csv, ofx); detected from the extension by default")
	cmd.Flags().String("source", "", "source label recorded on line items (default: file name)")
	cmd.Flags().StringSlice("layout", nil, "date_time layouts in Go reference form (overrides import.time_layouts)")
	cmd.Flags().String("timezone", "UTC", "time zone of timestamps without an offset")
	cmd.Flags().Bool("replace", false, "delete line items previously imported from the same source first")
	cmd.Flags().BoolP("dry-run", "d", false, "parse and report without saving")

	return cmd
}

// importOptions configures importFile.
type importOptions struct {
	location *time.Location
	logger   *slog.Logger
	format   string
	source   string
	layouts  []string
	replace  bool
	dryRun   bool
}

// importSummary reports one imported file.
type importSummary struct {
	source   string
	report   ingest.Report
	inserted int
	replaced int
	baskets  int
}

func importOptionsFromFlags(cmd *cobra.Command) (importOptions, error) {
	opts := importOptions{logger: slog.Default()}
	opts.format, _ = cmd.Flags().GetString("format")
	opts.source, _ = cmd.Flags().GetString("source")
	opts.replace, _ = cmd.Flags().GetBool("replace")
	opts.dryRun, _ = cmd.Flags().GetBool("dry-run")

	opts.layouts, _ = cmd.Flags().GetStringSlice("layout")
	if len(opts.layouts) == 0 {
		opts.layouts = viper.GetStringSlice("import.time_layouts")
	}

	tz, _ := cmd.Flags().GetString("timezone")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return opts, fmt.Errorf("invalid --timezone: %w", err)
	}
	opts.location = loc

	return opts, nil
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	opts, err := importOptionsFromFlags(cmd)
	if err != nil {
		return err
	}

	files, err := expandFiles(args)
	if err != nil {
		return err
	}
	if opts.source != "" && len(files) > 1 && opts.replace {
		return fmt.Errorf("--replace with --source would let each file delete the previous one's items; import them separately")
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Importing %d file(s)", len(files))))

	var bar *progressbar.ProgressBar
	if len(files) > 1 {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("[cyan][bold]Importing...[reset]"),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(cmd.ErrOrStderr())
			}),
		)
	}

	var summaries []importSummary
	for _, path := range files {
		summary, importErr := importFile(ctx, store, path, opts)
		if bar != nil {
			_ = bar.Add(1)
		}
		if importErr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			common.LogError(importErr, "failed to import file", common.Fields{"file": path})
			fmt.Fprintln(out, cli.FormatError(fmt.Sprintf("%s: %v", filepath.Base(path), importErr)))
			continue
		}
		summaries = append(summaries, summary)
	}

	if len(summaries) == 0 {
		return fmt.Errorf("no files were imported")
	}

	for _, s := range summaries {
		printImportSummary(out, s, opts.dryRun)
	}

	total, err := store.CountTransactions(ctx)
	if err != nil {
		return fmt.Errorf("failed to count transactions: %w", err)
	}
	fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("%d transactions stored. Next: basket mine", total)))
	return nil
}

// importFile parses one file and stores its line items.
func importFile(ctx context.Context, store service.Storage, path string, opts importOptions) (importSummary, error) {
	format, err := detectFormat(path, opts.format)
	if err != nil {
		return importSummary{}, err
	}

	source := opts.source
	if source == "" {
		source = filepath.Base(path)
	}
	summary := importSummary{source: source}

	f, err := os.Open(path) // #nosec G304 -- user-supplied import path
	if err != nil {
		return summary, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var result *ingest.Result
	switch format {
	case inputOFX:
		result, err = ingest.NewOFXParser(opts.logger).Parse(ctx, f, source)
	default:
		result, err = ingest.ReadCSV(ctx, f, ingest.Options{
			Location:    opts.location,
			Logger:      opts.logger,
			Source:      source,
			TimeLayouts: opts.layouts,
		})
	}
	if err != nil {
		return summary, err
	}

	summary.report = result.Report
	summary.baskets = len(ingest.GroupBaskets(result.Items))

	if opts.dryRun || len(result.Items) == 0 {
		return summary, nil
	}

	if opts.replace {
		summary.replaced, err = store.DeleteLineItems(ctx, source)
		if err != nil {
			return summary, fmt.Errorf("failed to replace previous import: %w", err)
		}
	}

	summary.inserted, err = store.SaveLineItems(ctx, result.Items)
	if err != nil {
		return summary, fmt.Errorf("failed to save line items: %w", err)
	}

	common.LogInfo("imported file", common.Fields{
		"source":   source,
		"rows":     result.Report.Rows,
		"kept":     result.Report.Kept,
		"inserted": summary.inserted,
		"baskets":  summary.baskets,
	})
	return summary, nil
}

func printImportSummary(w io.Writer, s importSummary, dryRun bool) {
	r := s.report
	line := fmt.Sprintf("%s: %d rows, %d line items in %d baskets", s.source, r.Rows, r.Kept, s.baskets)
	if dryRun {
		fmt.Fprintln(w, cli.FormatInfo(line+" (dry run, nothing saved)"))
	} else {
		fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("%s, %d new", line, s.inserted)))
	}

	details := []struct {
		what  string
		count int
	}{
		{"malformed rows", r.Malformed},
		{"placeholder items", r.Placeholders},
		{"unparseable timestamps", r.BadTimestamps},
		{"duplicate items", r.Duplicates},
		{"items replaced", s.replaced},
	}
	for _, d := range details {
		if d.count > 0 {
			fmt.Fprintln(w, "  "+cli.SubtleStyle.Render(fmt.Sprintf("%d %s", d.count, d.what)))
		}
	}
}
