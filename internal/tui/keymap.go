package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
)

// KeyMap holds the browser's bindings. Row movement is delegated to the
// embedded table bindings.
type KeyMap struct {
	Table table.KeyMap

	Detail    key.Binding
	Sort      key.Binding
	Filter    key.Binding
	Clear     key.Binding
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

// DefaultKeyMap returns vim-style navigation plus the rule actions.
func DefaultKeyMap() KeyMap {
	nav := table.DefaultKeyMap()
	nav.LineUp.SetHelp("↑/k", "up")
	nav.LineDown.SetHelp("↓/j", "down")
	nav.GotoTop.SetHelp("g", "first rule")
	nav.GotoBottom.SetHelp("G", "last rule")

	return KeyMap{
		Table:     nav,
		Detail:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "rule detail")),
		Sort:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "confidence/lift/support")),
		Filter:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "rules mentioning item")),
		Clear:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear filter")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Detail, k.Sort, k.Filter, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Table.LineUp, k.Table.LineDown, k.Table.PageUp, k.Table.PageDown},
		{k.Table.GotoTop, k.Table.GotoBottom},
		{k.Detail, k.Sort, k.Filter, k.Clear},
		{k.Help, k.Quit},
	}
}
