package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/market-basket/internal/model"
)

// createTestStorage creates a migrated storage instance in a temp directory.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

// lineItem builds a line item with calendar fields derived from at.
func lineItem(txID, item string, at time.Time, source string) model.LineItem {
	return model.LineItem{
		TransactionID: txID,
		Item:          item,
		OccurredAt:    at,
		Date:          at.Format(time.DateOnly),
		Month:         at.Month().String(),
		Weekday:       at.Weekday().String(),
		HourBucket:    fmt.Sprintf("%d-%d", at.Hour(), at.Hour()+1),
		Source:        source,
	}
}

// seedBakery stores four transactions over two days:
//
//	t1 Sun 2016-10-30 09:00  bread, milk
//	t2 Sun 2016-10-30 10:00  bread, eggs
//	t3 Mon 2016-10-31 14:00  bread, eggs, milk
//	t4 Mon 2016-10-31 15:00  coffee       (source other.csv)
func seedBakery(t *testing.T, store *SQLiteStorage) {
	t.Helper()
	sun := time.Date(2016, 10, 30, 9, 0, 0, 0, time.UTC)
	mon := time.Date(2016, 10, 31, 14, 0, 0, 0, time.UTC)

	items := []model.LineItem{
		lineItem("t1", "milk", sun, "bakery.csv"),
		lineItem("t1", "bread", sun, "bakery.csv"),
		lineItem("t2", "bread", sun.Add(time.Hour), "bakery.csv"),
		lineItem("t2", "eggs", sun.Add(time.Hour), "bakery.csv"),
		lineItem("t3", "bread", mon, "bakery.csv"),
		lineItem("t3", "eggs", mon, "bakery.csv"),
		lineItem("t3", "milk", mon, "bakery.csv"),
		lineItem("t4", "coffee", mon.Add(time.Hour), "other.csv"),
	}

	n, err := store.SaveLineItems(context.Background(), items)
	if err != nil {
		t.Fatalf("Failed to seed line items: %v", err)
	}
	if n != len(items) {
		t.Fatalf("Seeded %d line items, want %d", n, len(items))
	}
}

func TestNewSQLiteStorage(t *testing.T) {
	t.Run("creates missing directories", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "nested", "dir", "basket.db")
		store, err := NewSQLiteStorage(dbPath)
		if err != nil {
			t.Fatalf("NewSQLiteStorage() error = %v", err)
		}
		defer func() { _ = store.Close() }()

		if store.Path() != dbPath {
			t.Errorf("Path() = %q, want %q", store.Path(), dbPath)
		}
	})

	t.Run("rejects empty path", func(t *testing.T) {
		_, err := NewSQLiteStorage("  ")
		if !errors.Is(err, ErrEmptyString) {
			t.Errorf("NewSQLiteStorage() error = %v, want ErrEmptyString", err)
		}
	})
}

func TestSQLiteStorage_NilContext(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	//nolint:staticcheck // exercising nil context validation
	if _, err := store.CountTransactions(nil); !errors.Is(err, ErrNilContext) {
		t.Errorf("CountTransactions(nil) error = %v, want ErrNilContext", err)
	}
	//nolint:staticcheck // exercising nil context validation
	if err := store.Migrate(nil); !errors.Is(err, ErrNilContext) {
		t.Errorf("Migrate(nil) error = %v, want ErrNilContext", err)
	}
}
