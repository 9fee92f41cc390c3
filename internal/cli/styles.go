// Package cli renders mining results and progress for the terminal using lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette shared by every renderer in this package.
var (
	accent  = lipgloss.Color("#F4A261") // toasted crust
	good    = lipgloss.Color("#4ECDC4")
	caution = lipgloss.Color("#FFE66D")
	bad     = lipgloss.Color("#FF6B6B")
	note    = lipgloss.Color("#95E1D3")
	muted   = lipgloss.Color("#666666")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1)
	successStyle = lipgloss.NewStyle().Foreground(good)
	warningStyle = lipgloss.NewStyle().Foreground(caution)
	errorStyle   = lipgloss.NewStyle().Foreground(bad)
	infoStyle    = lipgloss.NewStyle().Foreground(note)
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(1, 2)

	// SubtleStyle dims secondary text such as per-level stats and table borders.
	SubtleStyle = lipgloss.NewStyle().Foreground(muted)

	// BoldStyle labels the fields of a run summary.
	BoldStyle = lipgloss.NewStyle().Bold(true)

	// TableHeaderStyle and TableCellStyle pad itemset and rule tables.
	TableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1)
	TableCellStyle   = lipgloss.NewStyle().Padding(0, 1)

	// BarStyle colours the bars of count charts.
	BarStyle = lipgloss.NewStyle().Foreground(good)
)

const (
	BasketIcon = "🧺"
	ChartIcon  = "📊"
)

// FormatSuccess prefixes message with a check mark.
func FormatSuccess(message string) string {
	return successStyle.Render("✓ " + message)
}

// FormatError prefixes message with a cross.
func FormatError(message string) string {
	return errorStyle.Render("✗ " + message)
}

// FormatWarning prefixes message with a warning sign.
func FormatWarning(message string) string {
	return warningStyle.Render("⚠️ " + message)
}

// FormatInfo prefixes message with an info sign.
func FormatInfo(message string) string {
	return infoStyle.Render("ℹ️ " + message)
}

// FormatTitle renders a section heading with the basket icon.
func FormatTitle(title string) string {
	return titleStyle.Render(BasketIcon + " " + title)
}

// RenderBox draws content under title inside a rounded border.
func RenderBox(title, content string) string {
	heading := titleStyle.UnsetMargins().Render(title)
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, heading, content))
}
