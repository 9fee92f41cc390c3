package apriori

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Rule is the association Antecedent → Consequent derived from one frequent
// itemset. The two sides are disjoint and their union is that itemset.
type Rule struct {
	Antecedent        []string
	Consequent        []string
	Support           float64 // support of Antecedent ∪ Consequent
	Confidence        float64
	Lift              float64
	AntecedentSupport float64
	ConsequentSupport float64
}

func (r Rule) String() string {
	return strings.Join(r.Antecedent, ", ") + " → " + strings.Join(r.Consequent, ", ")
}

// GenerateRules derives every rule with confidence at least minConfidence from
// itemsets, which must be closed under subsets (as Mine's output is). Rules
// are sorted by confidence descending, then lift descending.
//
// The confidence comparison allows 1e-12 of float rounding, so a rule whose
// confidence falls below minConfidence by at most that much is still kept.
func GenerateRules(itemsets []Itemset, minConfidence float64) ([]Rule, error) {
	if err := ValidateThreshold("min_confidence", minConfidence); err != nil {
		return nil, err
	}

	idx := NewSupportIndex(itemsets)

	var rules []Rule
	for _, f := range itemsets {
		if len(f.Items) < 2 {
			continue
		}
		derived, err := rulesFrom(canonical(f.Items), f.Support, idx, minConfidence)
		if err != nil {
			return nil, err
		}
		rules = append(rules, derived...)
	}

	SortRules(rules)
	return rules, nil
}

// rulesFrom grows consequents one item at a time. Moving an item from the
// antecedent to the consequent can only shrink the antecedent and raise its
// support, so confidence never increases; a consequent is tried only when all
// of its one-smaller subsets produced passing rules.
func rulesFrom(items []string, support float64, idx *SupportIndex, minConfidence float64) ([]Rule, error) {
	n := len(items)

	var rules []Rule
	consequents := make([][]int, n)
	for i := range items {
		consequents[i] = []int{i}
	}

	for size := 1; size < n && len(consequents) > 0; size++ {
		passing := consequents[:0:0]
		for _, cons := range consequents {
			rule, ok, err := evaluate(items, cons, support, idx, minConfidence)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			rules = append(rules, rule)
			passing = append(passing, cons)
		}
		consequents = growConsequents(passing)
	}

	return rules, nil
}

// evaluate scores the rule (items \ cons) → cons. Positions in cons index items.
func evaluate(items []string, cons []int, support float64, idx *SupportIndex, minConfidence float64) (Rule, bool, error) {
	antecedent, consequent := split(items, cons)

	anteSupport, err := idx.Lookup(antecedent)
	if err != nil {
		return Rule{}, false, fmt.Errorf("antecedent of %v: %w", items, err)
	}
	consSupport, err := idx.Lookup(consequent)
	if err != nil {
		return Rule{}, false, fmt.Errorf("consequent of %v: %w", items, err)
	}

	confidence, ok := Confidence(support, anteSupport)
	if !ok || !meets(confidence, minConfidence) {
		return Rule{}, false, nil
	}
	lift, ok := Lift(confidence, consSupport)
	if !ok {
		return Rule{}, false, nil
	}

	return Rule{
		Antecedent:        antecedent,
		Consequent:        consequent,
		Support:           support,
		Confidence:        confidence,
		Lift:              lift,
		AntecedentSupport: anteSupport,
		ConsequentSupport: consSupport,
	}, true, nil
}

// split partitions items into the positions outside and inside cons. Both
// results stay sorted because items is.
func split(items []string, cons []int) (antecedent, consequent []string) {
	antecedent = make([]string, 0, len(items)-len(cons))
	consequent = make([]string, 0, len(cons))
	j := 0
	for i, item := range items {
		if j < len(cons) && cons[j] == i {
			consequent = append(consequent, item)
			j++
			continue
		}
		antecedent = append(antecedent, item)
	}
	return antecedent, consequent
}

// growConsequents is the Apriori join-and-prune step over consequent
// positions: passing consequents of size m sharing their first m-1 positions
// combine into size m+1, kept only if every m-subset passed.
func growConsequents(passing [][]int) [][]int {
	if len(passing) < 2 {
		return nil
	}

	known := make(map[string]struct{}, len(passing))
	for _, c := range passing {
		known[colsKey(c)] = struct{}{}
	}

	size := len(passing[0]) + 1
	prefix := size - 2
	scratch := make([]int, size-1)

	var next [][]int
	for i := 0; i < len(passing); i++ {
		for j := i + 1; j < len(passing); j++ {
			a, b := passing[i], passing[j]
			if !slices.Equal(a[:prefix], b[:prefix]) {
				break
			}
			cand := make([]int, size)
			copy(cand, a)
			cand[size-1] = b[prefix]
			if allSubsetsKnown(cand, scratch, known) {
				next = append(next, cand)
			}
		}
	}
	return next
}

// SortRules orders rules by confidence descending, lift descending, then
// antecedent and consequent item order.
func SortRules(rules []Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		a, b := rules[i], rules[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Lift != b.Lift {
			return a.Lift > b.Lift
		}
		if c := slices.Compare(a.Antecedent, b.Antecedent); c != 0 {
			return c < 0
		}
		return slices.Compare(a.Consequent, b.Consequent) < 0
	})
}
