package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/market-basket/internal/apriori"
	"github.com/Veraticus/market-basket/internal/common"
	"github.com/Veraticus/market-basket/internal/model"
	json "github.com/goccy/go-json"
)

const runColumns = `id, created_at, source, min_support, min_confidence, max_length,
	transaction_count, item_count, itemset_count, rule_count, duration_ns`

// SaveRun stores a run with all its itemsets and rules in one transaction.
func (s *SQLiteStorage) SaveRun(ctx context.Context, result *model.RunResult) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRunResult(result); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	run := result.Run
	_, err = tx.ExecContext(ctx, `INSERT INTO mining_runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.CreatedAt,
		run.Source,
		run.MinSupport,
		run.MinConfidence,
		run.MaxLength,
		run.TransactionCount,
		run.ItemCount,
		run.ItemsetCount,
		run.RuleCount,
		int64(run.Duration),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}

	if err := saveItemsets(ctx, tx, run.ID, result.Itemsets); err != nil {
		return err
	}
	if err := saveRules(ctx, tx, run.ID, result.Rules); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", run.ID, err)
	}
	return nil
}

func saveItemsets(ctx context.Context, tx *sql.Tx, runID string, itemsets []apriori.Itemset) error {
	if len(itemsets) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_itemsets (run_id, position, items, size, support, count)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare itemset statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, set := range itemsets {
		items, err := json.Marshal(set.Items)
		if err != nil {
			return fmt.Errorf("failed to encode itemset %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, runID, i, string(items), set.Len(), set.Support, set.Count); err != nil {
			return fmt.Errorf("failed to insert itemset %d: %w", i, err)
		}
	}
	return nil
}

func saveRules(ctx context.Context, tx *sql.Tx, runID string, rules []apriori.Rule) error {
	if len(rules) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_rules (
			run_id, position, antecedent, consequent,
			support, confidence, lift, antecedent_support, consequent_support
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare rule statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range rules {
		ante, err := json.Marshal(r.Antecedent)
		if err != nil {
			return fmt.Errorf("failed to encode rule %d: %w", i, err)
		}
		cons, err := json.Marshal(r.Consequent)
		if err != nil {
			return fmt.Errorf("failed to encode rule %d: %w", i, err)
		}
		_, err = stmt.ExecContext(ctx, runID, i, string(ante), string(cons),
			r.Support, r.Confidence, r.Lift, r.AntecedentSupport, r.ConsequentSupport)
		if err != nil {
			return fmt.Errorf("failed to insert rule %d: %w", i, err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (model.MiningRun, error) {
	var run model.MiningRun
	var durationNS int64
	err := row.Scan(
		&run.ID,
		&run.CreatedAt,
		&run.Source,
		&run.MinSupport,
		&run.MinConfidence,
		&run.MaxLength,
		&run.TransactionCount,
		&run.ItemCount,
		&run.ItemsetCount,
		&run.RuleCount,
		&durationNS,
	)
	run.Duration = time.Duration(durationNS)
	return run, err
}

// GetRun returns the summary of one run.
func (s *SQLiteStorage) GetRun(ctx context.Context, id string) (*model.MiningRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	run, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM mining_runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	return &run, nil
}

// ListRuns returns the most recent runs first.
func (s *SQLiteStorage) ListRuns(ctx context.Context, limit int) ([]model.MiningRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM mining_runs ORDER BY created_at DESC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.MiningRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRunResult loads a run with its itemsets and rules in their saved order.
func (s *SQLiteStorage) GetRunResult(ctx context.Context, id string) (*model.RunResult, error) {
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}

	itemsets, err := s.loadItemsets(ctx, id)
	if err != nil {
		return nil, err
	}
	rules, err := s.loadRules(ctx, id)
	if err != nil {
		return nil, err
	}

	return &model.RunResult{Run: *run, Itemsets: itemsets, Rules: rules}, nil
}

func (s *SQLiteStorage) loadItemsets(ctx context.Context, runID string) ([]apriori.Itemset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT items, support, count FROM run_itemsets WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query itemsets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var itemsets []apriori.Itemset
	for rows.Next() {
		var raw string
		var set apriori.Itemset
		if err := rows.Scan(&raw, &set.Support, &set.Count); err != nil {
			return nil, fmt.Errorf("failed to scan itemset: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &set.Items); err != nil {
			return nil, fmt.Errorf("%w: itemset items: %v", common.ErrDatabaseCorrupted, err)
		}
		itemsets = append(itemsets, set)
	}
	return itemsets, rows.Err()
}

func (s *SQLiteStorage) loadRules(ctx context.Context, runID string) ([]apriori.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT antecedent, consequent, support, confidence, lift, antecedent_support, consequent_support
		FROM run_rules WHERE run_id = ? ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []apriori.Rule
	for rows.Next() {
		var ante, cons string
		var r apriori.Rule
		if err := rows.Scan(&ante, &cons, &r.Support, &r.Confidence, &r.Lift, &r.AntecedentSupport, &r.ConsequentSupport); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		if err := json.Unmarshal([]byte(ante), &r.Antecedent); err != nil {
			return nil, fmt.Errorf("%w: rule antecedent: %v", common.ErrDatabaseCorrupted, err)
		}
		if err := json.Unmarshal([]byte(cons), &r.Consequent); err != nil {
			return nil, fmt.Errorf("%w: rule consequent: %v", common.ErrDatabaseCorrupted, err)
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// DeleteRun removes a run and everything it produced.
func (s *SQLiteStorage) DeleteRun(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, query := range []string{
		`DELETE FROM run_rules WHERE run_id = ?`,
		`DELETE FROM run_itemsets WHERE run_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, query, id); err != nil {
			return fmt.Errorf("failed to delete run %s: %w", id, err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM mining_runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: run %s", common.ErrNotFound, id)
	}

	return tx.Commit()
}
