package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/market-basket/internal/apriori"
	"github.com/Veraticus/market-basket/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const barWidth = 30

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(SubtleStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})
}

func metric(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// truncated returns the first limit entries (all when limit <= 0) and a
// footer describing what was left out.
func truncated[T any](rows []T, limit int) ([]T, string) {
	if limit <= 0 || len(rows) <= limit {
		return rows, ""
	}
	return rows[:limit], SubtleStyle.Render(fmt.Sprintf("… %d more not shown", len(rows)-limit))
}

// RenderItemsets renders frequent itemsets as a table, at most limit rows.
func RenderItemsets(itemsets []apriori.Itemset, limit int) string {
	if len(itemsets) == 0 {
		return FormatWarning("No frequent itemsets at this support threshold")
	}

	shown, footer := truncated(itemsets, limit)
	t := newTable("#", "Itemset", "Size", "Support", "Count")
	for i, s := range shown {
		t.Row(strconv.Itoa(i+1), strings.Join(s.Items, ", "), strconv.Itoa(s.Len()), metric(s.Support), strconv.Itoa(s.Count))
	}
	return joinFooter(t.String(), footer)
}

// RenderRules renders association rules as a table, at most limit rows.
func RenderRules(rules []apriori.Rule, limit int) string {
	if len(rules) == 0 {
		return FormatWarning("No rules at this confidence threshold")
	}

	shown, footer := truncated(rules, limit)
	t := newTable("#", "Antecedent", "Consequent", "Support", "Confidence", "Lift")
	for i, r := range shown {
		t.Row(
			strconv.Itoa(i+1),
			strings.Join(r.Antecedent, ", "),
			strings.Join(r.Consequent, ", "),
			metric(r.Support),
			metric(r.Confidence),
			metric(r.Lift),
		)
	}
	return joinFooter(t.String(), footer)
}

// Count is one labelled bar of a count chart.
type Count struct {
	Label string
	Value int
}

// ItemCounts adapts storage item counts for RenderCounts.
func ItemCounts(counts []model.ItemCount) []Count {
	out := make([]Count, len(counts))
	for i, c := range counts {
		out[i] = Count{Label: c.Item, Value: c.Count}
	}
	return out
}

// PeriodCounts adapts storage period counts for RenderCounts.
func PeriodCounts(counts []model.PeriodCount) []Count {
	out := make([]Count, len(counts))
	for i, c := range counts {
		out[i] = Count{Label: c.Period, Value: c.Count}
	}
	return out
}

// RenderCounts renders a horizontal bar chart scaled to the largest count.
func RenderCounts(label string, counts []Count) string {
	if len(counts) == 0 {
		return FormatWarning("No line items stored")
	}

	peak := 0
	for _, c := range counts {
		peak = max(peak, c.Value)
	}

	t := newTable(label, "Count", "")
	for _, c := range counts {
		t.Row(c.Label, strconv.Itoa(c.Value), BarStyle.Render(bar(c.Value, peak)))
	}
	return t.String()
}

func bar(value, peak int) string {
	if peak <= 0 || value <= 0 {
		return ""
	}
	return strings.Repeat("█", max(1, value*barWidth/peak))
}

// RenderRun renders the summary box of a mining run.
func RenderRun(run model.MiningRun) string {
	maxLength := "unbounded"
	if run.MaxLength > 0 {
		maxLength = strconv.Itoa(run.MaxLength)
	}

	lines := []string{
		fmt.Sprintf("%s %s", BoldStyle.Render("Run:"), run.ID),
		fmt.Sprintf("%s %s", BoldStyle.Render("Created:"), run.CreatedAt.Format("2006-01-02 15:04:05")),
		fmt.Sprintf("%s %s", BoldStyle.Render("Baskets:"), run.Source),
		fmt.Sprintf("%s %d transactions, %d items", BoldStyle.Render("Data:"), run.TransactionCount, run.ItemCount),
		fmt.Sprintf("%s support ≥ %s, confidence ≥ %s, max length %s", BoldStyle.Render("Thresholds:"),
			metric(run.MinSupport), metric(run.MinConfidence), maxLength),
		fmt.Sprintf("%s %d itemsets, %d rules in %s", BoldStyle.Render("Found:"),
			run.ItemsetCount, run.RuleCount, run.Duration.Round(time.Millisecond)),
	}
	return RenderBox(ChartIcon+" Mining run", strings.Join(lines, "\n"))
}

// RenderRuns renders a list of runs, newest first.
func RenderRuns(runs []model.MiningRun) string {
	if len(runs) == 0 {
		return FormatInfo("No mining runs saved yet")
	}

	t := newTable("ID", "Created", "Baskets", "Support", "Confidence", "Itemsets", "Rules")
	for _, r := range runs {
		t.Row(
			r.ID,
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.Source,
			metric(r.MinSupport),
			metric(r.MinConfidence),
			strconv.Itoa(r.ItemsetCount),
			strconv.Itoa(r.RuleCount),
		)
	}
	return t.String()
}

func joinFooter(body, footer string) string {
	if footer == "" {
		return body
	}
	return body + "\n" + footer
}
