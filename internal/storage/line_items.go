package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/market-basket/internal/ingest"
	"github.com/Veraticus/market-basket/internal/model"
	"github.com/Veraticus/market-basket/internal/service"
)

// SaveLineItems inserts items, skipping any whose (source, transaction, item,
// date) is already stored, and returns how many rows were inserted.
func (s *SQLiteStorage) SaveLineItems(ctx context.Context, items []model.LineItem) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateLineItems(items); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO line_items (
			transaction_id, item, occurred_at, date, month, weekday, hour_bucket, source
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	inserted := 0
	for _, li := range items {
		res, execErr := stmt.ExecContext(ctx,
			li.TransactionID,
			li.Item,
			li.OccurredAt,
			li.Date,
			li.Month,
			li.Weekday,
			li.HourBucket,
			li.Source,
		)
		if execErr != nil {
			return 0, fmt.Errorf("failed to insert line item %s/%s: %w", li.TransactionID, li.Item, execErr)
		}
		n, _ := res.RowsAffected()
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit line items: %w", err)
	}
	return inserted, nil
}

// GetBaskets loads the line items matching filter and groups them into
// baskets in insertion order. Transaction ids are scoped to their source.
func (s *SQLiteStorage) GetBaskets(ctx context.Context, filter service.BasketFilter) ([]model.Basket, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	filter, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	where, args := filterClause(filter)
	query := `SELECT source, transaction_id, item, occurred_at FROM line_items` + where + ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query line items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.LineItem
	for rows.Next() {
		var li model.LineItem
		if err := rows.Scan(&li.Source, &li.TransactionID, &li.Item, &li.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		items = append(items, li)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line items: %w", err)
	}

	return ingest.GroupBaskets(items), nil
}

func filterClause(f service.BasketFilter) (string, []any) {
	var conds []string
	var args []any

	if f.StartDate != nil {
		conds = append(conds, "date >= ?")
		args = append(args, f.StartDate.Format(time.DateOnly))
	}
	if f.EndDate != nil {
		conds = append(conds, "date <= ?")
		args = append(args, f.EndDate.Format(time.DateOnly))
	}
	if len(f.Weekdays) > 0 {
		conds = append(conds, "weekday IN ("+placeholders(len(f.Weekdays))+")")
		for _, w := range f.Weekdays {
			args = append(args, w)
		}
	}
	if len(f.Months) > 0 {
		conds = append(conds, "month IN ("+placeholders(len(f.Months))+")")
		for _, m := range f.Months {
			args = append(args, m)
		}
	}
	if f.Source != "" {
		conds = append(conds, "source = ?")
		args = append(args, f.Source)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// CountTransactions returns the number of distinct (source, transaction id)
// pairs stored.
func (s *SQLiteStorage) CountTransactions(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM (SELECT DISTINCT source, transaction_id FROM line_items)`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// DeleteLineItems removes every line item imported from source and returns
// how many were deleted.
func (s *SQLiteStorage) DeleteLineItems(ctx context.Context, source string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(source, "source"); err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM line_items WHERE source = ?`, source)
	if err != nil {
		return 0, fmt.Errorf("failed to delete line items: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}
