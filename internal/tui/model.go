// Package tui implements an interactive browser for association rules.
package tui

import (
	"sort"
	"strings"

	"github.com/Veraticus/market-basket/internal/apriori"
	"github.com/Veraticus/market-basket/internal/model"
	"github.com/Veraticus/market-basket/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// SortField is the metric rules are ordered by.
type SortField int

// Sort orders, cycled with the sort key.
const (
	SortConfidence SortField = iota
	SortLift
	SortSupport
)

func (s SortField) String() string {
	switch s {
	case SortLift:
		return "lift"
	case SortSupport:
		return "support"
	default:
		return "confidence"
	}
}

func (s SortField) next() SortField {
	return (s + 1) % 3
}

func (s SortField) value(r apriori.Rule) float64 {
	switch s {
	case SortLift:
		return r.Lift
	case SortSupport:
		return r.Support
	default:
		return r.Confidence
	}
}

// Model holds the browser state.
type Model struct {
	theme      themes.Theme
	keymap     KeyMap
	help       help.Model
	table      table.Model
	filter     textinput.Model
	run        model.MiningRun
	rules      []apriori.Rule
	visible    []apriori.Rule
	sort       SortField
	width      int
	height     int
	showDetail bool
	filtering  bool
	quitting   bool
}

// NewModel creates a browser over the rules of result.
func NewModel(result *model.RunResult, theme themes.Theme) Model {
	keys := DefaultKeyMap()
	t := table.New(
		table.WithColumns(columnsFor(80)),
		table.WithFocused(true),
		table.WithHeight(20),
		table.WithKeyMap(keys.Table),
	)

	s := table.DefaultStyles()
	s.Header = theme.Header
	s.Selected = theme.Selected
	t.SetStyles(s)

	filter := textinput.New()
	filter.Placeholder = "item name..."
	filter.CharLimit = 50
	filter.Prompt = "/ "

	m := Model{
		theme:  theme,
		keymap: keys,
		help:   help.New(),
		table:  t,
		filter: filter,
		run:    result.Run,
		rules:  result.Rules,
		width:  80,
		height: 24,
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.ForceQuit) {
			m.quitting = true
			return m, tea.Quit
		}
		if m.filtering {
			return m.updateFilter(msg)
		}
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// handleKey processes browser keys; unhandled keys fall through to the table.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return tea.Quit, true
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return nil, true
	case key.Matches(msg, m.keymap.Sort):
		m.sort = m.sort.next()
		m.refresh()
		return nil, true
	case key.Matches(msg, m.keymap.Detail):
		m.showDetail = !m.showDetail
		m.resize()
		return nil, true
	case key.Matches(msg, m.keymap.Filter):
		m.filtering = true
		m.table.Blur()
		return m.filter.Focus(), true
	case key.Matches(msg, m.keymap.Clear):
		if m.filter.Value() == "" {
			return nil, true
		}
		m.filter.SetValue("")
		m.refresh()
		return nil, true
	}
	return nil, false
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.endFilter()
		return m, nil
	case tea.KeyEsc:
		m.filter.SetValue("")
		m.endFilter()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.refresh()
	return m, cmd
}

func (m *Model) endFilter() {
	m.filtering = false
	m.filter.Blur()
	m.table.Focus()
	m.refresh()
}

// refresh recomputes the visible rules from the filter and sort order.
func (m *Model) refresh() {
	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))

	visible := make([]apriori.Rule, 0, len(m.rules))
	for _, r := range m.rules {
		if query == "" || mentions(r, query) {
			visible = append(visible, r)
		}
	}
	m.visible = visible

	// Rules arrive in confidence-then-lift order, which a stable sort keeps
	// for ties.
	field := m.sort
	sort.SliceStable(m.visible, func(i, j int) bool {
		return field.value(m.visible[i]) > field.value(m.visible[j])
	})

	m.table.SetRows(rowsFor(m.visible))
	if m.table.Cursor() >= len(m.visible) {
		m.table.SetCursor(max(0, len(m.visible)-1))
	}
}

func mentions(r apriori.Rule, query string) bool {
	for _, side := range [][]string{r.Antecedent, r.Consequent} {
		for _, item := range side {
			if strings.Contains(item, query) {
				return true
			}
		}
	}
	return false
}

// Selected returns the rule under the cursor.
func (m Model) Selected() (apriori.Rule, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.visible) {
		return apriori.Rule{}, false
	}
	return m.visible[i], true
}

// Visible returns the rules currently listed, in display order.
func (m Model) Visible() []apriori.Rule {
	return m.visible
}

// Sort returns the active sort field.
func (m Model) Sort() SortField {
	return m.sort
}

func (m *Model) resize() {
	// Title, subtitle, blank line and help take four lines; the detail box
	// takes seven more when shown.
	chrome := 4
	if m.help.ShowAll {
		chrome += 4
	}
	if m.showDetail {
		chrome += 7
	}
	if m.filtering || m.filter.Value() != "" {
		chrome++
	}
	m.table.SetHeight(max(3, m.height-chrome))
	m.table.SetColumns(columnsFor(m.width))
	m.help.Width = m.width
}

func columnsFor(width int) []table.Column {
	available := max(60, width-4)
	metric := 10
	side := (available - 4 - 3*metric) / 2
	return []table.Column{
		{Title: "#", Width: 4},
		{Title: "Antecedent", Width: side},
		{Title: "Consequent", Width: side},
		{Title: "Support", Width: metric},
		{Title: "Confidence", Width: metric},
		{Title: "Lift", Width: metric},
	}
}
