package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/market-basket/internal/apriori"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

func rowsFor(rules []apriori.Rule) []table.Row {
	rows := make([]table.Row, len(rules))
	for i, r := range rules {
		rows[i] = table.Row{
			strconv.Itoa(i + 1),
			strings.Join(r.Antecedent, ", "),
			strings.Join(r.Consequent, ", "),
			metric(r.Support),
			metric(r.Confidence),
			metric(r.Lift),
		}
	}
	return rows
}

func metric(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{m.renderHeader()}
	if m.filtering || m.filter.Value() != "" {
		sections = append(sections, m.filter.View())
	}

	if len(m.visible) == 0 {
		sections = append(sections, m.theme.StatusInfo.Render("No rules match"))
	} else {
		sections = append(sections, m.table.View())
	}

	if m.showDetail {
		if r, ok := m.Selected(); ok {
			sections = append(sections, m.renderDetail(r))
		}
	}

	sections = append(sections, m.help.View(m.keymap))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render(fmt.Sprintf("🧺 %d rules", len(m.rules)))
	if len(m.visible) != len(m.rules) {
		title += m.theme.Subtitle.Render(fmt.Sprintf(" (%d shown)", len(m.visible)))
	}

	sub := fmt.Sprintf("%s · support ≥ %s · confidence ≥ %s · sorted by %s",
		m.run.Source, metric(m.run.MinSupport), metric(m.run.MinConfidence), m.sort)
	return lipgloss.JoinVertical(lipgloss.Left, title, m.theme.Subtitle.Render(sub))
}

// renderDetail explains the selected rule's metrics in basket terms.
func (m Model) renderDetail(r apriori.Rule) string {
	ante := strings.Join(r.Antecedent, ", ")
	cons := strings.Join(r.Consequent, ", ")

	lines := []string{
		m.theme.Bold.Render(r.String()),
		fmt.Sprintf("%s of baskets contain {%s}", percent(r.AntecedentSupport), ante),
		fmt.Sprintf("%s of baskets contain {%s}", percent(r.ConsequentSupport), cons),
		fmt.Sprintf("%s of baskets contain both; %s of {%s} baskets also hold {%s}",
			percent(r.Support), percent(r.Confidence), ante, cons),
		fmt.Sprintf("lift %s: %s", metric(r.Lift), liftReading(r.Lift)),
	}
	return m.theme.RoundedBox.Render(strings.Join(lines, "\n"))
}

func percent(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 1, 64) + "%"
}

func liftReading(lift float64) string {
	switch {
	case lift > 1:
		return "bought together more often than chance"
	case lift < 1:
		return "bought together less often than chance"
	default:
		return "independent"
	}
}
