// Package apriori mines frequent itemsets from a transaction database and
// derives association rules from them.
//
// Overview:
//
//   - Encode turns transactions (sets of item labels) into a Database: a sorted
//     item universe, one membership bitset per transaction and one transaction
//     bitset (tidset) per item.
//   - Mine runs the level-wise Apriori algorithm. Level k candidates are built
//     by joining frequent (k-1)-itemsets that share their first k-2 items, then
//     pruned when any (k-1)-subset is not frequent. Survivors are counted by
//     intersecting their parents' tidsets, once per level, on a bounded worker
//     pool.
//   - GenerateRules splits every frequent itemset F into antecedent A and
//     consequent F\A, keeping rules whose confidence meets the threshold.
//     Consequents grow level-wise: if F\C -> C fails, every rule with a larger
//     consequent drawn from the same F fails too.
//
// Metrics:
//
//	support(X)      = |{t : X ⊆ t}| / |T|
//	confidence(A→C) = support(A ∪ C) / support(A)
//	lift(A→C)       = confidence(A→C) / support(C)
//
// Thresholds are call parameters. A Database is immutable once encoded, so
// independent runs with different thresholds may share one concurrently.
//
// Error handling (sentinel errors):
//
//   - ErrEmptyInput: Encode was given no transactions.
//   - ErrInvalidParameter: a threshold is outside (0, 1], or an argument is nil/empty.
//   - ErrNotFound: a subset support needed by the rule generator is missing from
//     the supplied itemsets. With itemsets produced by Mine this indicates a bug.
package apriori
