package storage

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/market-basket/internal/model"
)

// TopItems returns the limit most frequent item labels, ties broken by label.
func (s *SQLiteStorage) TopItems(ctx context.Context, limit int) ([]model.ItemCount, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT item, COUNT(*) AS n
		FROM line_items
		GROUP BY item
		ORDER BY n DESC, item ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var counts []model.ItemCount
	for rows.Next() {
		var c model.ItemCount
		if err := rows.Scan(&c.Item, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan item count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

var dimensionColumns = map[model.Dimension]string{
	model.DimensionMonth:   "month",
	model.DimensionWeekday: "weekday",
	model.DimensionHour:    "hour_bucket",
}

// CountByPeriod counts line items per calendar period, in calendar order.
// Weeks start on Monday.
func (s *SQLiteStorage) CountByPeriod(ctx context.Context, dimension model.Dimension) ([]model.PeriodCount, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	column, ok := dimensionColumns[dimension]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDimension, dimension)
	}

	// column comes from dimensionColumns, never from the caller.
	rows, err := s.db.QueryContext(ctx, `SELECT `+column+`, COUNT(*) FROM line_items GROUP BY `+column) // #nosec G202
	if err != nil {
		return nil, fmt.Errorf("failed to query %s counts: %w", dimension, err)
	}
	defer func() { _ = rows.Close() }()

	var counts []model.PeriodCount
	for rows.Next() {
		var c model.PeriodCount
		if err := rows.Scan(&c.Period, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan period count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return periodOrder(dimension, counts[i].Period) < periodOrder(dimension, counts[j].Period)
	})
	return counts, nil
}

func periodOrder(dimension model.Dimension, period string) int {
	switch dimension {
	case model.DimensionMonth:
		for m := time.January; m <= time.December; m++ {
			if m.String() == period {
				return int(m)
			}
		}
	case model.DimensionWeekday:
		for d := time.Sunday; d <= time.Saturday; d++ {
			if d.String() == period {
				return (int(d) + 6) % 7
			}
		}
	case model.DimensionHour:
		start, _, _ := strings.Cut(period, "-")
		if h, err := strconv.Atoi(start); err == nil {
			return h
		}
	}
	return 1 << 20
}
