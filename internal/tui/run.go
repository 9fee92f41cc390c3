package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/market-basket/internal/model"
	"github.com/Veraticus/market-basket/internal/tui/themes"
	tea "github.com/charmbracelet/bubbletea"
)

// Config holds browser options.
type Config struct {
	Theme string
}

// Run opens the rules browser for result and blocks until the user quits or
// ctx is canceled.
func Run(ctx context.Context, result *model.RunResult, cfg Config) error {
	if result == nil {
		return fmt.Errorf("result is required")
	}

	m := NewModel(result, themes.GetTheme(cfg.Theme))
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
