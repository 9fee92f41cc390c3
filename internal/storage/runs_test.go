package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/Veraticus/market-basket/internal/apriori"
	"github.com/Veraticus/market-basket/internal/common"
	"github.com/Veraticus/market-basket/internal/model"
)

func testRunResult(id string, createdAt time.Time) *model.RunResult {
	itemsets := []apriori.Itemset{
		{Items: []string{"bread"}, Support: 0.75, Count: 3},
		{Items: []string{"eggs"}, Support: 0.5, Count: 2},
		{Items: []string{"bread", "eggs"}, Support: 0.5, Count: 2},
	}
	rules := []apriori.Rule{
		{
			Antecedent:        []string{"eggs"},
			Consequent:        []string{"bread"},
			Support:           0.5,
			Confidence:        1,
			Lift:              4.0 / 3.0,
			AntecedentSupport: 0.5,
			ConsequentSupport: 0.75,
		},
	}
	return &model.RunResult{
		Run: model.MiningRun{
			ID:               id,
			CreatedAt:        createdAt,
			Source:           "weekday=Monday",
			MinSupport:       0.5,
			MinConfidence:    0.6,
			MaxLength:        3,
			TransactionCount: 4,
			ItemCount:        4,
			ItemsetCount:     len(itemsets),
			RuleCount:        len(rules),
			Duration:         1234 * time.Microsecond,
		},
		Itemsets: itemsets,
		Rules:    rules,
	}
}

func TestSQLiteStorage_RunRoundTrip(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	created := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	want := testRunResult("run-a", created)
	if err := store.SaveRun(ctx, want); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}

	got, err := store.GetRunResult(ctx, "run-a")
	if err != nil {
		t.Fatalf("GetRunResult() error = %v", err)
	}

	if !got.Run.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.Run.CreatedAt, created)
	}
	got.Run.CreatedAt = created
	if !reflect.DeepEqual(got.Run, want.Run) {
		t.Errorf("Run = %+v, want %+v", got.Run, want.Run)
	}
	if !reflect.DeepEqual(got.Itemsets, want.Itemsets) {
		t.Errorf("Itemsets = %v, want %v", got.Itemsets, want.Itemsets)
	}
	if !reflect.DeepEqual(got.Rules, want.Rules) {
		t.Errorf("Rules = %v, want %v", got.Rules, want.Rules)
	}
}

func TestSQLiteStorage_SaveRunValidation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	result := testRunResult("run-a", time.Now().UTC())
	result.Run.RuleCount = 7
	if err := store.SaveRun(ctx, result); !errors.Is(err, ErrInvalidRun) {
		t.Errorf("SaveRun() error = %v, want ErrInvalidRun", err)
	}

	if err := store.SaveRun(ctx, nil); !errors.Is(err, ErrNilParameter) {
		t.Errorf("SaveRun(nil) error = %v, want ErrNilParameter", err)
	}

	valid := testRunResult("run-b", time.Now().UTC())
	if err := store.SaveRun(ctx, valid); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	if err := store.SaveRun(ctx, valid); err == nil {
		t.Error("SaveRun() with duplicate ID succeeded, want error")
	}
}

func TestSQLiteStorage_ListRuns(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"oldest", "middle", "newest"} {
		if err := store.SaveRun(ctx, testRunResult(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("SaveRun(%s) error = %v", id, err)
		}
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "newest" || runs[1].ID != "middle" {
		t.Errorf("ListRuns() = %v, want newest then middle", runs)
	}

	if _, err := store.ListRuns(ctx, -1); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("ListRuns(-1) error = %v, want ErrInvalidLimit", err)
	}
}

func TestSQLiteStorage_DeleteRun(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.SaveRun(ctx, testRunResult("run-a", time.Now().UTC())); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}

	if err := store.DeleteRun(ctx, "run-a"); err != nil {
		t.Fatalf("DeleteRun() error = %v", err)
	}
	if _, err := store.GetRun(ctx, "run-a"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetRun() after delete error = %v, want ErrNotFound", err)
	}

	var orphans int
	if err := store.db.QueryRow(`SELECT COUNT(*) FROM run_itemsets WHERE run_id = 'run-a'`).Scan(&orphans); err != nil {
		t.Fatalf("Failed to count itemsets: %v", err)
	}
	if orphans != 0 {
		t.Errorf("%d itemsets left after delete", orphans)
	}

	if err := store.DeleteRun(ctx, "run-a"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("DeleteRun() twice error = %v, want ErrNotFound", err)
	}
}
