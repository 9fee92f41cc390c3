package apriori

import (
	"slices"
	"sort"
	"strings"
)

// Itemset is a non-empty, sorted set of items with its support in a Database.
type Itemset struct {
	Items   []string
	Support float64
	Count   int
}

// Len returns the itemset cardinality.
func (s Itemset) Len() int {
	return len(s.Items)
}

func (s Itemset) String() string {
	return "{" + strings.Join(s.Items, ", ") + "}"
}

// keySep never appears in cleaned item labels.
const keySep = "\x1f"

// itemsKey is the map key of a canonical (sorted) item sequence.
func itemsKey(items []string) string {
	return strings.Join(items, keySep)
}

// canonical returns a sorted, de-duplicated copy of items.
func canonical(items []string) []string {
	out := make([]string, len(items))
	copy(out, items)
	sort.Strings(out)
	return slices.Compact(out)
}

// SortItemsets orders itemsets by support descending, then cardinality
// ascending, then lexicographic item order.
func SortItemsets(itemsets []Itemset) {
	sort.SliceStable(itemsets, func(i, j int) bool {
		a, b := itemsets[i], itemsets[j]
		if a.Support != b.Support {
			return a.Support > b.Support
		}
		if len(a.Items) != len(b.Items) {
			return len(a.Items) < len(b.Items)
		}
		return slices.Compare(a.Items, b.Items) < 0
	})
}
