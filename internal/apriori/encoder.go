package apriori

import (
	"fmt"
	"sort"

	"github.com/bits-and-blooms/bitset"
)

// Transaction is one input record: an identifier and the set of items it holds.
// Item order is irrelevant and repeated labels collapse.
type Transaction struct {
	ID    string
	Items []string
}

// Database is the encoded, read-only membership matrix a mining run operates on.
type Database struct {
	index    map[string]int
	universe []string
	ids      []string
	rows     []*bitset.BitSet // one bit per universe item
	tidsets  []*bitset.BitSet // one bit per transaction
}

// Encode builds a Database from transactions. The item universe is the sorted
// set of distinct labels across all transactions.
func Encode(txns []Transaction) (*Database, error) {
	if len(txns) == 0 {
		return nil, ErrEmptyInput
	}

	seen := make(map[string]struct{})
	for _, txn := range txns {
		for _, item := range txn.Items {
			seen[item] = struct{}{}
		}
	}

	universe := make([]string, 0, len(seen))
	for item := range seen {
		universe = append(universe, item)
	}
	sort.Strings(universe)

	index := make(map[string]int, len(universe))
	for i, item := range universe {
		index[item] = i
	}

	db := &Database{
		index:    index,
		universe: universe,
		ids:      make([]string, len(txns)),
		rows:     make([]*bitset.BitSet, len(txns)),
		tidsets:  make([]*bitset.BitSet, len(universe)),
	}
	for i := range db.tidsets {
		db.tidsets[i] = bitset.New(uint(len(txns)))
	}

	for row, txn := range txns {
		db.ids[row] = txn.ID
		bits := bitset.New(uint(len(universe)))
		for _, item := range txn.Items {
			col := index[item]
			bits.Set(uint(col))
			db.tidsets[col].Set(uint(row))
		}
		db.rows[row] = bits
	}

	return db, nil
}

// Len returns the number of transactions.
func (db *Database) Len() int {
	return len(db.rows)
}

// Universe returns a copy of the sorted item universe.
func (db *Database) Universe() []string {
	out := make([]string, len(db.universe))
	copy(out, db.universe)
	return out
}

// TransactionID returns the identifier of the transaction at row.
func (db *Database) TransactionID(row int) string {
	return db.ids[row]
}

// Contains reports whether the transaction at row holds item.
func (db *Database) Contains(row int, item string) bool {
	col, ok := db.index[item]
	if !ok {
		return false
	}
	return db.rows[row].Test(uint(col))
}

// Items returns the sorted items of the transaction at row.
func (db *Database) Items(row int) []string {
	bits := db.rows[row]
	items := make([]string, 0, bits.Count())
	for col, ok := bits.NextSet(0); ok; col, ok = bits.NextSet(col + 1) {
		items = append(items, db.universe[col])
	}
	return items
}

// columns maps items to universe indices. ok is false when any item is unknown.
func (db *Database) columns(items []string) (cols []int, ok bool) {
	cols = make([]int, len(items))
	for i, item := range items {
		col, found := db.index[item]
		if !found {
			return nil, false
		}
		cols[i] = col
	}
	return cols, true
}

func (db *Database) String() string {
	return fmt.Sprintf("apriori.Database{transactions: %d, items: %d}", len(db.rows), len(db.universe))
}
