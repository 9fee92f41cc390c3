// Package storage provides the SQLite persistence layer for line items and mining runs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/market-basket/internal/model"
	"github.com/Veraticus/market-basket/internal/service"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrEmptySlice       = errors.New("slice cannot be empty")
	ErrInvalidDateRange = errors.New("start date must be before end date")
	ErrInvalidLineItem  = errors.New("invalid line item")
	ErrInvalidRun       = errors.New("invalid mining run")
	ErrInvalidDimension = errors.New("invalid dimension")
	ErrInvalidFilter    = errors.New("invalid basket filter")
	ErrInvalidLimit     = errors.New("limit must be positive")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateLimit(limit int) error {
	if limit <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
	}
	return nil
}

func validateLineItems(items []model.LineItem) error {
	if items == nil {
		return fmt.Errorf("%w: items", ErrNilParameter)
	}
	if len(items) == 0 {
		return fmt.Errorf("%w: items", ErrEmptySlice)
	}

	for i := range items {
		if err := validateLineItem(&items[i]); err != nil {
			return fmt.Errorf("line item at index %d: %w", i, err)
		}
	}
	return nil
}

func validateLineItem(li *model.LineItem) error {
	if strings.TrimSpace(li.TransactionID) == "" {
		return fmt.Errorf("%w: missing transaction ID", ErrInvalidLineItem)
	}
	if strings.TrimSpace(li.Item) == "" {
		return fmt.Errorf("%w: missing item", ErrInvalidLineItem)
	}
	if li.OccurredAt.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidLineItem)
	}
	if li.Date == "" || li.Month == "" || li.Weekday == "" || li.HourBucket == "" {
		return fmt.Errorf("%w: calendar fields not derived", ErrInvalidLineItem)
	}
	return nil
}

func validateRunResult(result *model.RunResult) error {
	if result == nil {
		return fmt.Errorf("%w: run result", ErrNilParameter)
	}
	run := result.Run
	if strings.TrimSpace(run.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidRun)
	}
	if run.CreatedAt.IsZero() {
		return fmt.Errorf("%w: missing creation time", ErrInvalidRun)
	}
	if run.MinSupport <= 0 || run.MinSupport > 1 {
		return fmt.Errorf("%w: min support %v out of range", ErrInvalidRun, run.MinSupport)
	}
	if run.MinConfidence <= 0 || run.MinConfidence > 1 {
		return fmt.Errorf("%w: min confidence %v out of range", ErrInvalidRun, run.MinConfidence)
	}
	if run.ItemsetCount != len(result.Itemsets) || run.RuleCount != len(result.Rules) {
		return fmt.Errorf("%w: counts do not match results", ErrInvalidRun)
	}
	return nil
}

// normalizeFilter validates f and canonicalises weekday and month names.
func normalizeFilter(f service.BasketFilter) (service.BasketFilter, error) {
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return f, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, *f.EndDate, *f.StartDate)
	}

	out := f
	out.Weekdays = make([]string, 0, len(f.Weekdays))
	for _, w := range f.Weekdays {
		name, ok := canonicalWeekday(w)
		if !ok {
			return f, fmt.Errorf("%w: unknown weekday %q", ErrInvalidFilter, w)
		}
		out.Weekdays = append(out.Weekdays, name)
	}

	out.Months = make([]string, 0, len(f.Months))
	for _, m := range f.Months {
		name, ok := canonicalMonth(m)
		if !ok {
			return f, fmt.Errorf("%w: unknown month %q", ErrInvalidFilter, m)
		}
		out.Months = append(out.Months, name)
	}
	return out, nil
}

func canonicalWeekday(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := d.String()
		if strings.EqualFold(s, name) || strings.EqualFold(s, name[:3]) {
			return name, true
		}
	}
	return "", false
}

func canonicalMonth(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for m := time.January; m <= time.December; m++ {
		name := m.String()
		if strings.EqualFold(s, name) || strings.EqualFold(s, name[:3]) {
			return name, true
		}
	}
	return "", false
}
