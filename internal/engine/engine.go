// Package engine runs a complete mining pass: load baskets, encode, mine
// frequent itemsets, derive rules, persist and publish the result.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/market-basket/internal/apriori"
	"github.com/Veraticus/market-basket/internal/common"
	"github.com/Veraticus/market-basket/internal/model"
	"github.com/Veraticus/market-basket/internal/service"
	"github.com/google/uuid"
)

// Engine orchestrates mining runs against a Storage.
type Engine struct {
	storage service.Storage
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

// New creates an engine. A nil logger means slog.Default().
func New(storage service.Storage, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		storage: storage,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

// RunOptions configures one mining run.
type RunOptions struct {
	Observer apriori.Observer
	Reporter service.ReportWriter // optional; receives the result after it is saved
	Filter   service.BasketFilter
	Source   string // overrides the filter description recorded on the run
	// Baskets, when non-nil, are mined instead of loading from storage.
	Baskets       []model.Basket
	MinSupport    float64
	MinConfidence float64
	MaxLength     int
	Workers       int // zero means GOMAXPROCS
	DryRun        bool
}

// Run mines the selected baskets and returns the result. Unless DryRun is
// set the result is saved before it is handed to the Reporter.
func (e *Engine) Run(ctx context.Context, opts RunOptions) (*model.RunResult, error) {
	if err := apriori.ValidateThreshold("min_support", opts.MinSupport); err != nil {
		return nil, err
	}
	if err := apriori.ValidateThreshold("min_confidence", opts.MinConfidence); err != nil {
		return nil, err
	}

	start := e.now()

	baskets := opts.Baskets
	if baskets == nil {
		if e.storage == nil {
			return nil, fmt.Errorf("engine has no storage and no baskets were given")
		}
		loaded, err := e.storage.GetBaskets(ctx, opts.Filter)
		if err != nil {
			return nil, fmt.Errorf("failed to load baskets: %w", err)
		}
		baskets = loaded
	}

	source := opts.Source
	if source == "" {
		source = DescribeFilter(opts.Filter)
	}

	db, err := apriori.Encode(transactions(baskets))
	if errors.Is(err, apriori.ErrEmptyInput) {
		return nil, common.NewUserError(
			fmt.Sprintf("No transactions match %s; import a log first or widen the filter", source),
			common.ErrNoTransactions)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode baskets: %w", err)
	}

	e.logger.Info("Mining frequent itemsets",
		"transactions", db.Len(),
		"items", len(db.Universe()),
		"min_support", opts.MinSupport,
		"source", source)

	mineOpts := []apriori.Option{
		apriori.WithLogger(e.logger),
		apriori.WithMaxLength(opts.MaxLength),
		apriori.WithObserver(opts.Observer),
	}
	if opts.Workers > 0 {
		mineOpts = append(mineOpts, apriori.WithWorkers(opts.Workers))
	}

	itemsets, err := apriori.Mine(ctx, db, opts.MinSupport, mineOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to mine itemsets: %w", err)
	}

	rules, err := apriori.GenerateRules(itemsets, opts.MinConfidence)
	if err != nil {
		return nil, fmt.Errorf("failed to generate rules: %w", err)
	}

	result := &model.RunResult{
		Run: model.MiningRun{
			ID:               e.newID(),
			CreatedAt:        start,
			Source:           source,
			MinSupport:       opts.MinSupport,
			MinConfidence:    opts.MinConfidence,
			MaxLength:        opts.MaxLength,
			TransactionCount: db.Len(),
			ItemCount:        len(db.Universe()),
			ItemsetCount:     len(itemsets),
			RuleCount:        len(rules),
			Duration:         e.now().Sub(start),
		},
		Itemsets: itemsets,
		Rules:    rules,
	}

	if !opts.DryRun {
		if e.storage == nil {
			return nil, fmt.Errorf("cannot save run without storage; use a dry run")
		}
		if err := e.storage.SaveRun(ctx, result); err != nil {
			return nil, fmt.Errorf("failed to save run: %w", err)
		}
	}

	if opts.Reporter != nil {
		if err := opts.Reporter.WriteRun(ctx, result); err != nil {
			return result, fmt.Errorf("failed to publish run %s: %w", result.Run.ID, err)
		}
	}

	e.logger.Info("Mining run complete",
		"run_id", result.Run.ID,
		"itemsets", len(itemsets),
		"rules", len(rules),
		"saved", !opts.DryRun,
		"duration", result.Run.Duration)

	return result, nil
}

func transactions(baskets []model.Basket) []apriori.Transaction {
	txns := make([]apriori.Transaction, len(baskets))
	for i, b := range baskets {
		txns[i] = apriori.Transaction{ID: b.TransactionID, Items: b.Items}
	}
	return txns
}

// DescribeFilter renders a filter for run records and messages.
func DescribeFilter(f service.BasketFilter) string {
	var parts []string
	if f.StartDate != nil {
		parts = append(parts, "from="+f.StartDate.Format(time.DateOnly))
	}
	if f.EndDate != nil {
		parts = append(parts, "to="+f.EndDate.Format(time.DateOnly))
	}
	if len(f.Weekdays) > 0 {
		parts = append(parts, "weekday="+strings.Join(f.Weekdays, ","))
	}
	if len(f.Months) > 0 {
		parts = append(parts, "month="+strings.Join(f.Months, ","))
	}
	if f.Source != "" {
		parts = append(parts, "source="+f.Source)
	}
	if len(parts) == 0 {
		return "all transactions"
	}
	return strings.Join(parts, " ")
}
