package apriori

import (
	"fmt"
	"math"
)

// tolerance absorbs float rounding when comparing a metric to its threshold,
// so 0.5/0.75 meets a 2.0/3 threshold.
const tolerance = 1e-12

func meets(value, threshold float64) bool {
	return value >= threshold-tolerance
}

// ValidateThreshold checks that v lies in (0, 1].
func ValidateThreshold(name string, v float64) error {
	if math.IsNaN(v) || v <= 0 || v > 1 {
		return fmt.Errorf("%w: %s must be in (0, 1], got %v", ErrInvalidParameter, name, v)
	}
	return nil
}

// SupportOf computes the support of items by scanning db. Items missing from
// the universe make the support zero.
func SupportOf(items []string, db *Database) (float64, error) {
	if db == nil {
		return 0, fmt.Errorf("%w: nil database", ErrInvalidParameter)
	}
	if len(items) == 0 {
		return 0, fmt.Errorf("%w: empty itemset", ErrInvalidParameter)
	}

	cols, ok := db.columns(items)
	if !ok {
		return 0, nil
	}

	count := 0
	for _, row := range db.rows {
		contained := true
		for _, col := range cols {
			if !row.Test(uint(col)) {
				contained = false
				break
			}
		}
		if contained {
			count++
		}
	}

	return float64(count) / float64(len(db.rows)), nil
}

// Confidence returns supportUnion/supportAntecedent. ok is false when the
// antecedent support is zero.
func Confidence(supportUnion, supportAntecedent float64) (float64, bool) {
	if supportAntecedent <= 0 {
		return 0, false
	}
	return supportUnion / supportAntecedent, true
}

// Lift returns confidence/supportConsequent. ok is false when the consequent
// support is zero.
func Lift(confidence, supportConsequent float64) (float64, bool) {
	if supportConsequent <= 0 {
		return 0, false
	}
	return confidence / supportConsequent, true
}

// SupportIndex answers support lookups for previously mined itemsets.
type SupportIndex struct {
	supports map[string]float64
}

// NewSupportIndex indexes itemsets by their canonical item sequence.
func NewSupportIndex(itemsets []Itemset) *SupportIndex {
	idx := &SupportIndex{supports: make(map[string]float64, len(itemsets))}
	for _, s := range itemsets {
		idx.supports[itemsKey(canonical(s.Items))] = s.Support
	}
	return idx
}

// Len returns the number of indexed itemsets.
func (idx *SupportIndex) Len() int {
	return len(idx.supports)
}

// Lookup returns the support recorded for items. A miss wraps ErrNotFound.
func (idx *SupportIndex) Lookup(items []string) (float64, error) {
	support, ok := idx.supports[itemsKey(canonical(items))]
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrNotFound, items)
	}
	return support, nil
}
