package apriori

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mineGroceries(t *testing.T, minSupport float64, opts ...Option) []Itemset {
	t.Helper()
	db, err := Encode(groceryTransactions())
	require.NoError(t, err)

	itemsets, err := Mine(context.Background(), db, minSupport, opts...)
	require.NoError(t, err)
	return itemsets
}

func TestMine_Groceries(t *testing.T) {
	itemsets := mineGroceries(t, 0.5)

	want := []Itemset{
		{Items: []string{"bread"}, Support: 0.75, Count: 3},
		{Items: []string{"eggs"}, Support: 0.75, Count: 3},
		{Items: []string{"milk"}, Support: 0.75, Count: 3},
		{Items: []string{"bread", "eggs"}, Support: 0.5, Count: 2},
		{Items: []string{"bread", "milk"}, Support: 0.5, Count: 2},
		{Items: []string{"eggs", "milk"}, Support: 0.5, Count: 2},
	}
	assert.Equal(t, want, itemsets)
}

func TestMine_IncludesTripleAtLowSupport(t *testing.T) {
	itemsets := mineGroceries(t, 0.25)

	require.Len(t, itemsets, 7)
	last := itemsets[len(itemsets)-1]
	assert.Equal(t, []string{"bread", "eggs", "milk"}, last.Items)
	assert.Equal(t, 0.25, last.Support)
}

func TestMine_SupportOfOne(t *testing.T) {
	itemsets := mineGroceries(t, 1.0)
	assert.Empty(t, itemsets, "no item appears in every grocery transaction")

	db, err := Encode([]Transaction{
		{ID: "1", Items: []string{"bag", "milk"}},
		{ID: "2", Items: []string{"bag", "eggs"}},
	})
	require.NoError(t, err)

	itemsets, err = Mine(context.Background(), db, 1.0)
	require.NoError(t, err)
	require.Len(t, itemsets, 1)
	assert.Equal(t, []string{"bag"}, itemsets[0].Items)
	assert.Equal(t, 1.0, itemsets[0].Support)
}

func TestMine_InvalidParameters(t *testing.T) {
	db, err := Encode(groceryTransactions())
	require.NoError(t, err)

	for _, minSupport := range []float64{0, -0.5, 1.0000001, 2} {
		_, err := Mine(context.Background(), db, minSupport)
		assert.ErrorIs(t, err, ErrInvalidParameter, "min_support=%v", minSupport)
	}

	_, err = Mine(context.Background(), nil, 0.5)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestMine_EmptyUniverse(t *testing.T) {
	db, err := Encode([]Transaction{{ID: "1"}, {ID: "2"}})
	require.NoError(t, err)

	itemsets, err := Mine(context.Background(), db, 0.1)
	require.NoError(t, err)
	assert.Empty(t, itemsets)
}

func TestMine_MaxLength(t *testing.T) {
	itemsets := mineGroceries(t, 0.25, WithMaxLength(1))
	require.Len(t, itemsets, 3)
	for _, s := range itemsets {
		assert.Equal(t, 1, s.Len())
	}

	itemsets = mineGroceries(t, 0.25, WithMaxLength(2))
	assert.Len(t, itemsets, 6)
}

func TestMine_Idempotent(t *testing.T) {
	db, err := Encode(randomTransactions(7, 40, 10))
	require.NoError(t, err)

	first, err := Mine(context.Background(), db, 0.1)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	for _, workers := range []int{1, 2, 3, 8, 64} {
		again, err := Mine(context.Background(), db, 0.1, WithWorkers(workers))
		require.NoError(t, err)
		assert.Equal(t, first, again, "workers=%d", workers)
	}
}

func TestMine_ContextCanceled(t *testing.T) {
	db, err := Encode(groceryTransactions())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = Mine(ctx, db, 0.25)
	assert.ErrorIs(t, err, context.Canceled)
}

type recordingObserver struct {
	counted  map[int]int
	started  []int
	finished []LevelStats
	mu       sync.Mutex
}

func (r *recordingObserver) LevelStarted(k, _ int) {
	r.started = append(r.started, k)
}

func (r *recordingObserver) CandidatesCounted(k, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counted == nil {
		r.counted = make(map[int]int)
	}
	r.counted[k] += n
}

func (r *recordingObserver) LevelFinished(stats LevelStats) {
	r.finished = append(r.finished, stats)
}

func TestMine_Observer(t *testing.T) {
	obs := &recordingObserver{}
	mineGroceries(t, 0.5, WithObserver(obs), WithWorkers(2))

	assert.Equal(t, []int{1, 2, 3}, obs.started)
	require.Len(t, obs.finished, 3)

	assert.Equal(t, LevelStats{K: 1, Candidates: 3, Frequent: 3}, withoutDuration(obs.finished[0]))
	assert.Equal(t, LevelStats{K: 2, Candidates: 3, Frequent: 3}, withoutDuration(obs.finished[1]))
	// {bread, eggs, milk} is joined and counted, then found infrequent.
	assert.Equal(t, LevelStats{K: 3, Candidates: 1, Frequent: 0}, withoutDuration(obs.finished[2]))

	assert.Equal(t, map[int]int{1: 3, 2: 3, 3: 1}, obs.counted)
}

func TestMine_PrunesCandidatesWithInfrequentSubsets(t *testing.T) {
	// {a,b} and {a,c} are frequent but {b,c} is not, so {a,b,c} must be
	// pruned without being counted.
	db, err := Encode([]Transaction{
		{ID: "1", Items: []string{"a", "b"}},
		{ID: "2", Items: []string{"a", "b"}},
		{ID: "3", Items: []string{"a", "c"}},
		{ID: "4", Items: []string{"a", "c"}},
		{ID: "5", Items: []string{"b", "c"}},
	})
	require.NoError(t, err)

	obs := &recordingObserver{}
	itemsets, err := Mine(context.Background(), db, 0.4, WithObserver(obs))
	require.NoError(t, err)

	require.Len(t, obs.finished, 3)
	assert.Equal(t, 1, obs.finished[2].Pruned)
	assert.Equal(t, 0, obs.counted[3])

	for _, s := range itemsets {
		assert.NotEqual(t, []string{"b", "c"}, s.Items)
		assert.Less(t, s.Len(), 3)
	}
}

func withoutDuration(s LevelStats) LevelStats {
	s.Duration = 0
	return s
}
