package apriori

import (
	"log/slog"
	"runtime"
	"time"
)

// LevelStats summarises one pass of the miner.
type LevelStats struct {
	K          int
	Candidates int // candidates generated by the join
	Pruned     int // candidates dropped because a subset was infrequent
	Frequent   int
	Duration   time.Duration
}

// Observer receives level lifecycle events. CandidatesCounted may be called
// from several goroutines at once.
type Observer interface {
	LevelStarted(k, candidates int)
	CandidatesCounted(k, n int)
	LevelFinished(stats LevelStats)
}

type noopObserver struct{}

func (noopObserver) LevelStarted(int, int) {}

func (noopObserver) CandidatesCounted(int, int) {}

func (noopObserver) LevelFinished(LevelStats) {}

type options struct {
	observer  Observer
	logger    *slog.Logger
	workers   int
	maxLength int
}

// Option configures Mine.
type Option func(*options)

// WithWorkers sets the size of the support-counting pool. Values below 1 mean 1.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.workers = n
	}
}

// WithMaxLength caps itemset cardinality. Zero or less means unbounded.
func WithMaxLength(k int) Option {
	return func(o *options) {
		if k < 0 {
			k = 0
		}
		o.maxLength = k
	}
}

// WithObserver registers level callbacks.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithLogger sets the logger used for per-level debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func defaultOptions() options {
	return options{
		observer: noopObserver{},
		logger:   slog.Default(),
		workers:  runtime.GOMAXPROCS(0),
	}
}
