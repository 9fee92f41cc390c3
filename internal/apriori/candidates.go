package apriori

import (
	"slices"
	"strconv"

	"github.com/bits-and-blooms/bitset"
)

// node is an itemset under evaluation, held as ascending universe columns.
type node struct {
	tids  *bitset.BitSet
	left  *node // join parents; nil at level 1
	right *node
	cols  []int
	count int
}

// colsKey encodes a column sequence for set membership tests.
func colsKey(cols []int) string {
	buf := make([]byte, 0, len(cols)*4)
	for i, c := range cols {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendInt(buf, int64(c), 10)
	}
	return string(buf)
}

// generateCandidates joins the frequent (k-1)-itemsets in prev (sorted by
// cols) that share their first k-2 columns and drops every candidate with an
// infrequent (k-1)-subset. It returns the survivors and the pruned count.
func generateCandidates(prev []*node) (candidates []*node, pruned int) {
	if len(prev) < 2 {
		return nil, 0
	}

	known := make(map[string]struct{}, len(prev))
	for _, n := range prev {
		known[colsKey(n.cols)] = struct{}{}
	}

	size := len(prev[0].cols) + 1
	prefix := size - 2
	subset := make([]int, size-1)

	for i := 0; i < len(prev); i++ {
		a := prev[i]
		for j := i + 1; j < len(prev); j++ {
			b := prev[j]
			// prev is sorted, so shared prefixes form one contiguous block.
			if !slices.Equal(a.cols[:prefix], b.cols[:prefix]) {
				break
			}

			cols := make([]int, size)
			copy(cols, a.cols)
			cols[size-1] = b.cols[prefix]

			if !allSubsetsKnown(cols, subset, known) {
				pruned++
				continue
			}
			candidates = append(candidates, &node{cols: cols, left: a, right: b})
		}
	}

	return candidates, pruned
}

// allSubsetsKnown checks every (k-1)-subset of cols obtained by dropping one
// of the first k-2 positions. Dropping either of the last two yields a join
// parent, which is frequent by construction.
func allSubsetsKnown(cols, scratch []int, known map[string]struct{}) bool {
	for drop := 0; drop < len(cols)-2; drop++ {
		scratch = scratch[:0]
		scratch = append(scratch, cols[:drop]...)
		scratch = append(scratch, cols[drop+1:]...)
		if _, ok := known[colsKey(scratch)]; !ok {
			return false
		}
	}
	return true
}
