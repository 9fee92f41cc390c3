package apriori

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateThreshold(t *testing.T) {
	tests := []struct {
		name    string
		value   float64
		wantErr bool
	}{
		{name: "one is allowed", value: 1.0},
		{name: "small positive", value: 0.0001},
		{name: "half", value: 0.5},
		{name: "zero", value: 0, wantErr: true},
		{name: "negative", value: -0.1, wantErr: true},
		{name: "just above one", value: math.Nextafter(1, 2), wantErr: true},
		{name: "NaN", value: math.NaN(), wantErr: true},
		{name: "infinity", value: math.Inf(1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateThreshold("min_support", tt.value)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidParameter)
				assert.Contains(t, err.Error(), "min_support")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSupportOf(t *testing.T) {
	db, err := Encode(groceryTransactions())
	require.NoError(t, err)

	tests := []struct {
		name  string
		items []string
		want  float64
	}{
		{name: "singleton", items: []string{"milk"}, want: 0.75},
		{name: "pair", items: []string{"milk", "bread"}, want: 0.5},
		{name: "order irrelevant", items: []string{"eggs", "bread"}, want: 0.5},
		{name: "triple", items: []string{"bread", "eggs", "milk"}, want: 0.25},
		{name: "unknown item", items: []string{"milk", "caviar"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SupportOf(tt.items, db)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestSupportOf_InvalidArguments(t *testing.T) {
	db, err := Encode(groceryTransactions())
	require.NoError(t, err)

	_, err = SupportOf(nil, db)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = SupportOf([]string{"milk"}, nil)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestConfidenceAndLift(t *testing.T) {
	conf, ok := Confidence(0.5, 0.75)
	require.True(t, ok)
	assert.InDelta(t, 2.0/3.0, conf, 1e-12)

	lift, ok := Lift(conf, 0.75)
	require.True(t, ok)
	assert.InDelta(t, 8.0/9.0, lift, 1e-12)

	_, ok = Confidence(0.5, 0)
	assert.False(t, ok, "zero antecedent support leaves confidence undefined")

	_, ok = Lift(0.5, 0)
	assert.False(t, ok, "zero consequent support leaves lift undefined")
}

func TestSupportIndex_Lookup(t *testing.T) {
	idx := NewSupportIndex([]Itemset{
		{Items: []string{"bread"}, Support: 0.75},
		{Items: []string{"bread", "milk"}, Support: 0.5},
	})
	assert.Equal(t, 2, idx.Len())

	got, err := idx.Lookup([]string{"milk", "bread"})
	require.NoError(t, err)
	assert.Equal(t, 0.5, got)

	_, err = idx.Lookup([]string{"eggs"})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "eggs")
}

func TestMeetsToleratesRounding(t *testing.T) {
	assert.True(t, meets(0.5/0.75, 2.0/3.0))
	assert.True(t, meets(0.6-tolerance/2, 0.6))
	assert.False(t, meets(0.6-1e-9, 0.6))
}
