package sheets

import (
	"fmt"
	"strings"

	"github.com/Veraticus/market-basket/internal/apriori"
	"github.com/Veraticus/market-basket/internal/model"
)

// Tab titles written for every run.
const (
	SummaryTab  = "Summary"
	ItemsetsTab = "Itemsets"
	RulesTab    = "Rules"
)

// tab is one worksheet's worth of values. Row 0 is the header.
type tab struct {
	title   string
	values  [][]any
	metrics []int // zero-based columns holding support/confidence/lift values
}

func tabsFor(result *model.RunResult) []tab {
	return []tab{
		{title: SummaryTab, values: summaryValues(result.Run)},
		{title: ItemsetsTab, values: itemsetValues(result.Itemsets), metrics: []int{2}},
		{title: RulesTab, values: ruleValues(result.Rules), metrics: []int{2, 3, 4, 5, 6}},
	}
}

func summaryValues(run model.MiningRun) [][]any {
	maxLength := "unbounded"
	if run.MaxLength > 0 {
		maxLength = fmt.Sprint(run.MaxLength)
	}

	return [][]any{
		{"Basket Analysis", run.CreatedAt.Format("Jan 2, 2006 15:04")},
		{"Run ID", run.ID},
		{"Source", run.Source},
		{"Transactions", run.TransactionCount},
		{"Distinct Items", run.ItemCount},
		{"Min Support", run.MinSupport},
		{"Min Confidence", run.MinConfidence},
		{"Max Length", maxLength},
		{"Frequent Itemsets", run.ItemsetCount},
		{"Rules", run.RuleCount},
		{"Duration", run.Duration.String()},
	}
}

func itemsetValues(itemsets []apriori.Itemset) [][]any {
	values := make([][]any, 0, len(itemsets)+1)
	values = append(values, []any{"Items", "Size", "Support", "Count"})
	for _, s := range itemsets {
		values = append(values, []any{
			strings.Join(s.Items, ", "),
			s.Len(),
			s.Support,
			s.Count,
		})
	}
	return values
}

func ruleValues(rules []apriori.Rule) [][]any {
	values := make([][]any, 0, len(rules)+1)
	values = append(values, []any{
		"Antecedent",
		"Consequent",
		"Support",
		"Confidence",
		"Lift",
		"Antecedent Support",
		"Consequent Support",
	})
	for _, r := range rules {
		values = append(values, []any{
			strings.Join(r.Antecedent, ", "),
			strings.Join(r.Consequent, ", "),
			r.Support,
			r.Confidence,
			r.Lift,
			r.AntecedentSupport,
			r.ConsequentSupport,
		})
	}
	return values
}

// batches splits values into consecutive slices of at most size rows,
// each paired with its one-based starting row.
func batches(values [][]any, size int) []batch {
	var out []batch
	for i := 0; i < len(values); i += size {
		out = append(out, batch{startRow: i + 1, values: values[i:min(i+size, len(values))]})
	}
	return out
}

type batch struct {
	values   [][]any
	startRow int
}

func (b batch) rangeFor(title string) string {
	return fmt.Sprintf("'%s'!A%d", title, b.startRow)
}
