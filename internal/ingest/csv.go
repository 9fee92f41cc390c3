package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/market-basket/internal/common"
	"github.com/Veraticus/market-basket/internal/model"
)

// Required CSV columns, matched case-insensitively.
const (
	ColumnTransaction = "transaction"
	ColumnItem        = "item"
	ColumnDateTime    = "date_time"
)

const ctxCheckInterval = 1000

// Options configures ReadCSV.
type Options struct {
	Location    *time.Location
	Logger      *slog.Logger
	Source      string
	TimeLayouts []string
}

// Report counts what happened to the input records.
type Report struct {
	Rows          int // data rows read, excluding the header
	Kept          int
	Malformed     int // rows without a transaction id
	Placeholders  int
	BadTimestamps int
	Duplicates    int
}

// Result is the output of one import.
type Result struct {
	Items  []model.LineItem
	Report Report
}

// ReadCSV reads a retail log with Transaction, Item and date_time columns.
func ReadCSV(ctx context.Context, r io.Reader, opts Options) (*Result, error) {
	if len(opts.TimeLayouts) == 0 {
		return nil, fmt.Errorf("%w: no time layouts configured", common.ErrInvalidConfig)
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", common.ErrMissingColumn)
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	cols, err := locateColumns(header)
	if err != nil {
		return nil, err
	}

	clean := newCleaner()
	seen := make(deduper)
	result := &Result{}
	rep := &result.Report

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", rep.Rows+2, err)
		}
		rep.Rows++
		if rep.Rows%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		if len(record) <= cols.max() {
			rep.Malformed++
			continue
		}
		txID := strings.TrimSpace(record[cols.transaction])
		if txID == "" {
			rep.Malformed++
			continue
		}

		item, ok := clean.item(record[cols.item])
		if !ok {
			rep.Placeholders++
			continue
		}

		at, ok := parseTime(strings.TrimSpace(record[cols.dateTime]), opts.TimeLayouts, opts.Location)
		if !ok {
			rep.BadTimestamps++
			continue
		}

		li := newLineItem(txID, item, at, opts.Source)
		if !seen.first(&li) {
			rep.Duplicates++
			continue
		}
		result.Items = append(result.Items, li)
	}
	rep.Kept = len(result.Items)

	opts.Logger.Info("Read CSV log",
		"source", opts.Source,
		"rows", rep.Rows,
		"kept", rep.Kept,
		"placeholders", rep.Placeholders,
		"bad_timestamps", rep.BadTimestamps,
		"duplicates", rep.Duplicates,
		"malformed", rep.Malformed)

	return result, nil
}

type columns struct {
	transaction, item, dateTime int
}

func (c columns) max() int {
	return max(c.transaction, c.item, c.dateTime)
}

func locateColumns(header []string) (columns, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	var missing []string
	lookup := func(name string) int {
		i, ok := index[name]
		if !ok {
			missing = append(missing, name)
		}
		return i
	}
	cols := columns{
		transaction: lookup(ColumnTransaction),
		item:        lookup(ColumnItem),
		dateTime:    lookup(ColumnDateTime),
	}
	if len(missing) > 0 {
		return columns{}, fmt.Errorf("%w: %s", common.ErrMissingColumn, strings.Join(missing, ", "))
	}
	return cols, nil
}

func parseTime(value string, layouts []string, loc *time.Location) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
