package cli

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/market-basket/internal/apriori"
	"github.com/schollz/progressbar/v3"
)

// LevelProgress is an apriori.Observer that draws one progress bar per level
// and prints a summary line when the level finishes.
type LevelProgress struct {
	writer io.Writer
	bar    *progressbar.ProgressBar
	mu     sync.Mutex
}

var _ apriori.Observer = (*LevelProgress)(nil)

// NewLevelProgress creates a progress observer writing to w.
func NewLevelProgress(w io.Writer) *LevelProgress {
	return &LevelProgress{writer: w}
}

// LevelStarted opens a bar sized to the level's candidate count.
func (p *LevelProgress) LevelStarted(k, candidates int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.bar = nil
	if candidates <= 0 {
		return
	}
	p.bar = progressbar.NewOptions(candidates,
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan][bold]Level %d[reset]", k)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// CandidatesCounted advances the current bar. Safe for concurrent use.
func (p *LevelProgress) CandidatesCounted(_ int, n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil {
		return
	}
	if err := p.bar.Add(n); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// LevelFinished closes the bar and prints the level summary.
func (p *LevelProgress) LevelFinished(stats apriori.LevelStats) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar != nil {
		if err := p.bar.Finish(); err != nil {
			slog.Warn("Failed to finish progress bar", "error", err)
		}
		p.bar = nil
	}

	line := fmt.Sprintf("level %d: %d candidates, %d pruned, %d frequent (%s)",
		stats.K, stats.Candidates, stats.Pruned, stats.Frequent, stats.Duration.Round(time.Microsecond))
	if _, err := fmt.Fprintln(p.writer, "\n"+SubtleStyle.Render(line)); err != nil {
		slog.Warn("Failed to write level summary", "error", err)
	}
}
