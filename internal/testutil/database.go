// Package testutil provides test helpers for packages that need a migrated
// database full of baskets.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/market-basket/internal/model"
	"github.com/Veraticus/market-basket/internal/storage"
)

// BaseTime is the timestamp of the first seeded basket. Later baskets are
// one hour apart.
var BaseTime = time.Date(2016, 10, 30, 9, 0, 0, 0, time.UTC)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a migrated in-memory database that is closed when the
// test ends.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Storage: store, t: t}
}

// SeedBaskets stores one transaction per basket with ids t1, t2, ... and
// returns the line items written.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	db.SeedBaskets("bakery.csv", testutil.Groceries()...)
func (db *TestDB) SeedBaskets(source string, baskets ...[]string) []model.LineItem {
	db.t.Helper()

	items := LineItems(source, baskets...)
	if len(items) == 0 {
		return nil
	}
	if _, err := db.Storage.SaveLineItems(context.Background(), items); err != nil {
		db.t.Fatalf("failed to seed baskets: %v", err)
	}
	return items
}

// LineItems builds line items for baskets without storing them.
func LineItems(source string, baskets ...[]string) []model.LineItem {
	var items []model.LineItem
	for i, basket := range baskets {
		at := BaseTime.Add(time.Duration(i) * time.Hour)
		for _, item := range basket {
			items = append(items, model.LineItem{
				TransactionID: fmt.Sprintf("t%d", i+1),
				Item:          item,
				OccurredAt:    at,
				Date:          at.Format(time.DateOnly),
				Month:         at.Month().String(),
				Weekday:       at.Weekday().String(),
				HourBucket:    fmt.Sprintf("%d-%d", at.Hour(), at.Hour()+1),
				Source:        source,
			})
		}
	}
	return items
}

// Groceries is the four-basket milk/bread/eggs fixture. At minimum support
// 0.5 it yields three singletons and three pairs, each at support 0.5.
func Groceries() [][]string {
	return [][]string{
		{"milk", "bread"},
		{"milk", "bread", "eggs"},
		{"bread", "eggs"},
		{"milk", "eggs"},
	}
}
