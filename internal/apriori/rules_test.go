package apriori

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRules_Groceries(t *testing.T) {
	itemsets := mineGroceries(t, 0.5)

	rules, err := GenerateRules(itemsets, 0.6)
	require.NoError(t, err)
	require.Len(t, rules, 6)

	var milkBread *Rule
	for i := range rules {
		if rules[i].String() == "milk → bread" {
			milkBread = &rules[i]
		}
	}
	require.NotNil(t, milkBread, "milk → bread must be retained")
	assert.InDelta(t, 0.5, milkBread.Support, 1e-12)
	assert.InDelta(t, 0.5/0.75, milkBread.Confidence, 1e-12)
	assert.InDelta(t, (0.5/0.75)/0.75, milkBread.Lift, 1e-12)
	assert.InDelta(t, 0.75, milkBread.AntecedentSupport, 1e-12)
	assert.InDelta(t, 0.75, milkBread.ConsequentSupport, 1e-12)

	// Equal confidence and lift everywhere, so ordering falls back to items.
	want := []string{
		"bread → eggs", "bread → milk",
		"eggs → bread", "eggs → milk",
		"milk → bread", "milk → eggs",
	}
	got := make([]string, len(rules))
	for i, r := range rules {
		got[i] = r.String()
	}
	assert.Equal(t, want, got)
}

func TestGenerateRules_ThresholdFiltersEverything(t *testing.T) {
	itemsets := mineGroceries(t, 0.5)

	rules, err := GenerateRules(itemsets, 0.7)
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestGenerateRules_ExactThresholdIsKept(t *testing.T) {
	itemsets := mineGroceries(t, 0.5)

	rules, err := GenerateRules(itemsets, 2.0/3.0)
	require.NoError(t, err)
	assert.Len(t, rules, 6)
}

func TestGenerateRules_SingletonsProduceNothing(t *testing.T) {
	rules, err := GenerateRules([]Itemset{
		{Items: []string{"milk"}, Support: 0.75},
		{Items: []string{"bread"}, Support: 0.75},
	}, 0.1)
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestGenerateRules_InvalidConfidence(t *testing.T) {
	for _, c := range []float64{0, -1, 1.5, math.NaN()} {
		_, err := GenerateRules(nil, c)
		assert.ErrorIs(t, err, ErrInvalidParameter, "min_confidence=%v", c)
	}

	rules, err := GenerateRules(nil, 1.0)
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestGenerateRules_MissingSubsetSupport(t *testing.T) {
	_, err := GenerateRules([]Itemset{
		{Items: []string{"bread", "milk"}, Support: 0.5},
		{Items: []string{"milk"}, Support: 0.75},
	}, 0.1)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "bread")
}

func TestGenerateRules_ZeroSupportIsExcluded(t *testing.T) {
	rules, err := GenerateRules([]Itemset{
		{Items: []string{"a", "b"}, Support: 0.5},
		{Items: []string{"a"}, Support: 0},
		{Items: []string{"b"}, Support: 0.5},
	}, 0.1)
	require.NoError(t, err)

	// a → b has an undefined confidence; b → a has an undefined lift.
	assert.Empty(t, rules)
}

func TestGenerateRules_ConsequentGrowth(t *testing.T) {
	// In every transaction with "a", "b" and "c" also appear, so {a} → {b, c}
	// holds with confidence 1 and is only reachable by growing consequents.
	db, err := Encode([]Transaction{
		{ID: "1", Items: []string{"a", "b", "c"}},
		{ID: "2", Items: []string{"a", "b", "c"}},
		{ID: "3", Items: []string{"b", "c"}},
		{ID: "4", Items: []string{"b"}},
	})
	require.NoError(t, err)
	itemsets, err := Mine(context.Background(), db, 0.5)
	require.NoError(t, err)

	rules, err := GenerateRules(itemsets, 1.0)
	require.NoError(t, err)

	got := ruleKeys(rules)
	assert.True(t, got["a → b, c"])
	assert.True(t, got["a, b → c"])
	assert.True(t, got["a, c → b"])
	assert.True(t, got["c → b"])
	assert.False(t, got["b → a, c"])

	for _, r := range rules {
		assert.Equal(t, 1.0, r.Confidence, r.String())
	}
}

func TestSortRules(t *testing.T) {
	rules := []Rule{
		{Antecedent: []string{"b"}, Consequent: []string{"a"}, Confidence: 0.5, Lift: 1.2},
		{Antecedent: []string{"a"}, Consequent: []string{"c"}, Confidence: 0.9, Lift: 1.0},
		{Antecedent: []string{"a"}, Consequent: []string{"b"}, Confidence: 0.5, Lift: 1.2},
		{Antecedent: []string{"c"}, Consequent: []string{"a"}, Confidence: 0.9, Lift: 1.5},
	}
	SortRules(rules)

	got := make([]string, len(rules))
	for i, r := range rules {
		got[i] = r.String()
	}
	assert.Equal(t, []string{"c → a", "a → c", "a → b", "b → a"}, got)
}
