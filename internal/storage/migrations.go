package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 4

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

func execAll(tx *sql.Tx, queries []string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}
	return nil
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Line items",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS line_items (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					transaction_id TEXT NOT NULL,
					item TEXT NOT NULL,
					occurred_at DATETIME NOT NULL,
					date TEXT NOT NULL,
					month TEXT NOT NULL,
					weekday TEXT NOT NULL,
					hour_bucket TEXT NOT NULL,
					source TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE(transaction_id, item, date)
				)`,
				`CREATE INDEX IF NOT EXISTS idx_line_items_transaction ON line_items(transaction_id)`,
				`CREATE INDEX IF NOT EXISTS idx_line_items_date ON line_items(date)`,
				`CREATE INDEX IF NOT EXISTS idx_line_items_source ON line_items(source)`,
			})
		},
	},
	{
		Version:     2,
		Description: "Mining runs with their itemsets and rules",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS mining_runs (
					id TEXT PRIMARY KEY,
					created_at DATETIME NOT NULL,
					source TEXT NOT NULL DEFAULT '',
					min_support REAL NOT NULL,
					min_confidence REAL NOT NULL,
					max_length INTEGER NOT NULL DEFAULT 0,
					transaction_count INTEGER NOT NULL,
					item_count INTEGER NOT NULL,
					itemset_count INTEGER NOT NULL,
					rule_count INTEGER NOT NULL,
					duration_ns INTEGER NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_mining_runs_created ON mining_runs(created_at)`,
				`CREATE TABLE IF NOT EXISTS run_itemsets (
					run_id TEXT NOT NULL REFERENCES mining_runs(id) ON DELETE CASCADE,
					position INTEGER NOT NULL,
					items TEXT NOT NULL,
					size INTEGER NOT NULL,
					support REAL NOT NULL,
					count INTEGER NOT NULL,
					PRIMARY KEY (run_id, position)
				)`,
				`CREATE TABLE IF NOT EXISTS run_rules (
					run_id TEXT NOT NULL REFERENCES mining_runs(id) ON DELETE CASCADE,
					position INTEGER NOT NULL,
					antecedent TEXT NOT NULL,
					consequent TEXT NOT NULL,
					support REAL NOT NULL,
					confidence REAL NOT NULL,
					lift REAL NOT NULL,
					antecedent_support REAL NOT NULL,
					consequent_support REAL NOT NULL,
					PRIMARY KEY (run_id, position)
				)`,
			})
		},
	},
	{
		Version:     3,
		Description: "Calendar indexes for filtered basket loads",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE INDEX IF NOT EXISTS idx_line_items_weekday ON line_items(weekday)`,
				`CREATE INDEX IF NOT EXISTS idx_line_items_month ON line_items(month)`,
			})
		},
	},
	{
		Version:     4,
		Description: "Scope line item identity to its source",
		Up: func(tx *sql.Tx) error {
			// SQLite cannot alter a UNIQUE constraint in place.
			return execAll(tx, []string{
				`CREATE TABLE line_items_new (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					transaction_id TEXT NOT NULL,
					item TEXT NOT NULL,
					occurred_at DATETIME NOT NULL,
					date TEXT NOT NULL,
					month TEXT NOT NULL,
					weekday TEXT NOT NULL,
					hour_bucket TEXT NOT NULL,
					source TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE(source, transaction_id, item, date)
				)`,
				`INSERT INTO line_items_new (
					id, transaction_id, item, occurred_at, date, month, weekday, hour_bucket, source, created_at
				) SELECT id, transaction_id, item, occurred_at, date, month, weekday, hour_bucket, source, created_at
				FROM line_items`,
				`DROP TABLE line_items`,
				`ALTER TABLE line_items_new RENAME TO line_items`,
				`CREATE INDEX IF NOT EXISTS idx_line_items_transaction ON line_items(source, transaction_id)`,
				`CREATE INDEX IF NOT EXISTS idx_line_items_date ON line_items(date)`,
				`CREATE INDEX IF NOT EXISTS idx_line_items_source ON line_items(source)`,
				`CREATE INDEX IF NOT EXISTS idx_line_items_weekday ON line_items(weekday)`,
				`CREATE INDEX IF NOT EXISTS idx_line_items_month ON line_items(month)`,
			})
		},
	},
}

// SchemaVersion returns the database's current user_version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if currentVersion > ExpectedSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than this binary supports (%d)", currentVersion, ExpectedSchemaVersion)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
