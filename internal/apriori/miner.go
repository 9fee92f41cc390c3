package apriori

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Mine returns every itemset whose support in db is at least minSupport,
// sorted by support descending, cardinality ascending, then item order.
//
// The search is level-wise: level 1 counts singletons from the item tidsets;
// each later level joins, prunes and counts candidates built from the
// previous level's survivors. Every itemset's support is computed once.
func Mine(ctx context.Context, db *Database, minSupport float64, opts ...Option) ([]Itemset, error) {
	if err := ValidateThreshold("min_support", minSupport); err != nil {
		return nil, err
	}
	if db == nil {
		return nil, fmt.Errorf("%w: nil database", ErrInvalidParameter)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	m := &miner{db: db, minSupport: minSupport, opts: o}
	return m.run(ctx)
}

type miner struct {
	db         *Database
	opts       options
	minSupport float64
}

func (m *miner) support(count int) float64 {
	return float64(count) / float64(m.db.Len())
}

func (m *miner) run(ctx context.Context) ([]Itemset, error) {
	levels := make([][]*node, 0, 4)

	current := m.firstLevel()
	k := 1
	for len(current) > 0 {
		levels = append(levels, current)

		k++
		if k > len(m.db.universe) || (m.opts.maxLength > 0 && k > m.opts.maxLength) {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next, err := m.nextLevel(ctx, k, current)
		if err != nil {
			return nil, err
		}
		// The previous level's tidsets are no longer needed once its
		// children have been counted.
		for _, n := range current {
			n.tids = nil
		}
		current = next
	}

	var result []Itemset
	for _, level := range levels {
		for _, n := range level {
			result = append(result, m.itemset(n))
		}
	}
	SortItemsets(result)
	return result, nil
}

func (m *miner) firstLevel() []*node {
	start := time.Now()
	universe := len(m.db.universe)
	m.opts.observer.LevelStarted(1, universe)

	level := make([]*node, 0, universe)
	for col, tids := range m.db.tidsets {
		count := int(tids.Count())
		if !meets(m.support(count), m.minSupport) {
			continue
		}
		level = append(level, &node{cols: []int{col}, tids: tids, count: count})
	}

	m.opts.observer.CandidatesCounted(1, universe)
	m.finishLevel(LevelStats{K: 1, Candidates: universe, Frequent: len(level), Duration: time.Since(start)})
	return level
}

func (m *miner) nextLevel(ctx context.Context, k int, prev []*node) ([]*node, error) {
	start := time.Now()

	candidates, pruned := generateCandidates(prev)
	m.opts.observer.LevelStarted(k, len(candidates))

	if err := m.count(ctx, k, candidates); err != nil {
		return nil, err
	}

	level := make([]*node, 0, len(candidates))
	for _, c := range candidates {
		c.left, c.right = nil, nil
		if !meets(m.support(c.count), m.minSupport) {
			c.tids = nil
			continue
		}
		level = append(level, c)
	}

	m.finishLevel(LevelStats{
		K:          k,
		Candidates: len(candidates) + pruned,
		Pruned:     pruned,
		Frequent:   len(level),
		Duration:   time.Since(start),
	})
	return level, nil
}

// count fills in tids and count for every candidate. Candidates are split
// into one contiguous chunk per worker; each worker writes only its chunk.
func (m *miner) count(ctx context.Context, k int, candidates []*node) error {
	if len(candidates) == 0 {
		return nil
	}

	workers := m.opts.workers
	if workers > len(candidates) {
		workers = len(candidates)
	}
	chunk := (len(candidates) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for lo := 0; lo < len(candidates); lo += chunk {
		hi := min(lo+chunk, len(candidates))
		part := candidates[lo:hi]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for _, c := range part {
				c.tids = c.left.tids.Intersection(c.right.tids)
				c.count = int(c.tids.Count())
			}
			m.opts.observer.CandidatesCounted(k, len(part))
			return nil
		})
	}

	return g.Wait()
}

func (m *miner) finishLevel(stats LevelStats) {
	m.opts.logger.Debug("apriori level complete",
		"k", stats.K,
		"candidates", stats.Candidates,
		"pruned", stats.Pruned,
		"frequent", stats.Frequent,
		"duration", stats.Duration)
	m.opts.observer.LevelFinished(stats)
}

func (m *miner) itemset(n *node) Itemset {
	items := make([]string, len(n.cols))
	for i, col := range n.cols {
		items[i] = m.db.universe[col]
	}
	return Itemset{Items: items, Support: m.support(n.count), Count: n.count}
}
