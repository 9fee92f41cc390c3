// Package model defines the core domain models used throughout the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// LineItem is one cleaned (transaction, item) record from a retail log.
type LineItem struct {
	OccurredAt    time.Time
	TransactionID string
	Item          string // Normalized item label
	Date          string // YYYY-MM-DD, derived from OccurredAt
	Month         string // e.g. "January"
	Weekday       string // e.g. "Monday"
	HourBucket    string // e.g. "9-10"
	Source        string // CSV path or OFX account the record came from
}

// DedupeKey identifies repeated entries of the same item in one
// transaction of one source on one day.
func (l *LineItem) DedupeKey() string {
	data := fmt.Sprintf("%s:%s:%s:%s", l.Source, l.TransactionID, l.Item, l.Date)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// Basket is the set of items bought in one transaction.
type Basket struct {
	Date          time.Time
	TransactionID string
	Source        string
	Items         []string // Sorted, unique
}
