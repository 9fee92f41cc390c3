package apriori

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func groceryTransactions() []Transaction {
	return []Transaction{
		{ID: "1", Items: []string{"milk", "bread"}},
		{ID: "2", Items: []string{"milk", "bread", "eggs"}},
		{ID: "3", Items: []string{"bread", "eggs"}},
		{ID: "4", Items: []string{"milk", "eggs"}},
	}
}

func TestEncode(t *testing.T) {
	db, err := Encode(groceryTransactions())
	require.NoError(t, err)

	assert.Equal(t, 4, db.Len())
	assert.Equal(t, []string{"bread", "eggs", "milk"}, db.Universe())
	assert.Equal(t, "2", db.TransactionID(1))
	assert.Equal(t, []string{"bread", "eggs", "milk"}, db.Items(1))
	assert.Equal(t, []string{"eggs", "milk"}, db.Items(3))

	assert.True(t, db.Contains(0, "milk"))
	assert.False(t, db.Contains(0, "eggs"))
	assert.False(t, db.Contains(0, "butter"), "items outside the universe are never contained")
}

func TestEncode_UniverseIsACopy(t *testing.T) {
	db, err := Encode(groceryTransactions())
	require.NoError(t, err)

	u := db.Universe()
	u[0] = "changed"
	assert.Equal(t, "bread", db.Universe()[0])
}

func TestEncode_DuplicateItemsCollapse(t *testing.T) {
	db, err := Encode([]Transaction{
		{ID: "a", Items: []string{"tea", "tea", "cake"}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"cake", "tea"}, db.Items(0))
	support, err := SupportOf([]string{"tea"}, db)
	require.NoError(t, err)
	assert.Equal(t, 1.0, support)
}

func TestEncode_EmptyInput(t *testing.T) {
	_, err := Encode(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = Encode([]Transaction{})
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestEncode_AllTransactionsEmpty(t *testing.T) {
	db, err := Encode([]Transaction{{ID: "a"}, {ID: "b"}})
	require.NoError(t, err)

	assert.Equal(t, 2, db.Len())
	assert.Empty(t, db.Universe())
	assert.Empty(t, db.Items(0))
}
