// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/market-basket/internal/model"
)

// BasketFilter narrows which line items are grouped into baskets.
type BasketFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Weekdays  []string
	Months    []string
	Source    string
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Line item operations
	SaveLineItems(ctx context.Context, items []model.LineItem) (int, error)
	GetBaskets(ctx context.Context, filter BasketFilter) ([]model.Basket, error)
	CountTransactions(ctx context.Context) (int, error)
	TopItems(ctx context.Context, limit int) ([]model.ItemCount, error)
	CountByPeriod(ctx context.Context, dimension model.Dimension) ([]model.PeriodCount, error)
	DeleteLineItems(ctx context.Context, source string) (int, error)

	// Mining run operations
	SaveRun(ctx context.Context, result *model.RunResult) error
	GetRun(ctx context.Context, id string) (*model.MiningRun, error)
	GetRunResult(ctx context.Context, id string) (*model.RunResult, error)
	ListRuns(ctx context.Context, limit int) ([]model.MiningRun, error)
	DeleteRun(ctx context.Context, id string) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// ReportWriter publishes a finished mining run somewhere outside the database.
type ReportWriter interface {
	WriteRun(ctx context.Context, result *model.RunResult) error
}
