package model

import (
	"time"

	"github.com/Veraticus/market-basket/internal/apriori"
)

// MiningRun records the parameters and outcome of one mining pass.
type MiningRun struct {
	CreatedAt        time.Time
	ID               string
	Source           string // Human-readable description of the basket filter
	MinSupport       float64
	MinConfidence    float64
	MaxLength        int
	TransactionCount int
	ItemCount        int
	ItemsetCount     int
	RuleCount        int
	Duration         time.Duration
}

// RunResult is a mining run together with everything it produced.
type RunResult struct {
	Itemsets []apriori.Itemset
	Rules    []apriori.Rule
	Run      MiningRun
}
