package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/market-basket/internal/common"
	"github.com/Veraticus/market-basket/internal/config"
	"github.com/Veraticus/market-basket/internal/model"
	"github.com/Veraticus/market-basket/internal/service"
	"github.com/Veraticus/market-basket/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := config.DatabasePath(viper.GetViper())

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func closeStorage(store service.Storage) {
	if err := store.Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}

// loadRun returns the run with the given id, or the newest run when id is empty.
func loadRun(ctx context.Context, store service.Storage, id string) (*model.RunResult, error) {
	if id == "" {
		runs, err := store.ListRuns(ctx, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to list runs: %w", err)
		}
		if len(runs) == 0 {
			return nil, common.NewUserError("No mining runs saved yet; run 'basket mine' first", common.ErrNotFound)
		}
		id = runs[0].ID
	}

	result, err := store.GetRunResult(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}
	return result, nil
}

func runIDArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// addFilterFlags registers the basket filter flags shared by mine and watch.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "only transactions on or after this date (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "only transactions on or before this date (YYYY-MM-DD)")
	cmd.Flags().StringSlice("weekday", nil, "only transactions on these weekdays (e.g. sat,sun)")
	cmd.Flags().StringSlice("month", nil, "only transactions in these months (e.g. nov,dec)")
	cmd.Flags().String("source", "", "only line items imported from this source")
}

func parseFilter(cmd *cobra.Command) (service.BasketFilter, error) {
	var filter service.BasketFilter

	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	filter.Weekdays, _ = cmd.Flags().GetStringSlice("weekday")
	filter.Months, _ = cmd.Flags().GetStringSlice("month")
	filter.Source, _ = cmd.Flags().GetString("source")

	if from != "" {
		parsed, err := time.Parse(time.DateOnly, from)
		if err != nil {
			return filter, fmt.Errorf("invalid --from date: %w", err)
		}
		filter.StartDate = &parsed
	}
	if to != "" {
		parsed, err := time.Parse(time.DateOnly, to)
		if err != nil {
			return filter, fmt.Errorf("invalid --to date: %w", err)
		}
		filter.EndDate = &parsed
	}

	return filter, nil
}

// addMiningFlags registers the threshold flags and binds them to the
// mining.* configuration keys.
func addMiningFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("min-support", config.DefaultMinSupport, "minimum fraction of baskets an itemset must appear in")
	cmd.Flags().Float64("min-confidence", config.DefaultMinConfidence, "minimum confidence of a rule")
	cmd.Flags().Int("max-length", 0, "largest itemset size to mine (0 = unbounded)")
	cmd.Flags().Int("workers", 0, "support-counting workers (0 = one per CPU)")
}

// bindMiningFlags binds this command's threshold flags. It runs when the
// command executes so sibling commands do not overwrite each other's bindings.
func bindMiningFlags(cmd *cobra.Command) {
	_ = viper.BindPFlag("mining.min_support", cmd.Flags().Lookup("min-support"))
	_ = viper.BindPFlag("mining.min_confidence", cmd.Flags().Lookup("min-confidence"))
	_ = viper.BindPFlag("mining.max_length", cmd.Flags().Lookup("max-length"))
	_ = viper.BindPFlag("mining.workers", cmd.Flags().Lookup("workers"))
}

// expandFiles resolves glob patterns; a pattern with no match that names an
// existing file is kept as is.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(config.ExpandPath(pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
			continue
		}
		slog.Warn("No files found matching pattern", "pattern", pattern)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}

// inputFormat is the kind of file an import reads.
type inputFormat string

const (
	inputCSV inputFormat = "csv"
	inputOFX inputFormat = "ofx"
)

func detectFormat(path, override string) (inputFormat, error) {
	name := strings.ToLower(override)
	if name == "" {
		name = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}

	switch name {
	case "csv", "txt":
		return inputCSV, nil
	case "ofx", "qfx":
		return inputOFX, nil
	default:
		return "", fmt.Errorf("%w: cannot import %s (use --format csv or ofx)", common.ErrUnsupportedFormat, path)
	}
}
