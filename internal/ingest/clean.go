package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/market-basket/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// DateLayout is the format of model.LineItem.Date.
const DateLayout = "2006-01-02"

var placeholders = map[string]struct{}{
	"":      {},
	"none":  {},
	"none.": {},
	"nan":   {},
}

// cleaner normalises item labels. A cases.Caser keeps state, so each reader
// owns its own cleaner.
type cleaner struct {
	lower cases.Caser
}

func newCleaner() *cleaner {
	return &cleaner{lower: cases.Lower(language.Und)}
}

// item returns the cleaned label and false when it is a placeholder.
func (c *cleaner) item(raw string) (string, bool) {
	s := strings.ReplaceAll(raw, ";", ",")
	s = norm.NFKC.String(s)
	s = strings.TrimSpace(s)
	s = c.lower.String(s)
	if _, ok := placeholders[s]; ok {
		return "", false
	}
	return s, true
}

// CleanItem applies the shared label cleaning to a single value.
func CleanItem(raw string) (string, bool) {
	return newCleaner().item(raw)
}

// newLineItem fills in the calendar fields derived from at.
func newLineItem(transactionID, item string, at time.Time, source string) model.LineItem {
	hour := at.Hour()
	return model.LineItem{
		TransactionID: transactionID,
		Item:          item,
		OccurredAt:    at,
		Date:          at.Format(DateLayout),
		Month:         at.Month().String(),
		Weekday:       at.Weekday().String(),
		HourBucket:    fmt.Sprintf("%d-%d", hour, hour+1),
		Source:        source,
	}
}

// deduper keeps the first line item per (transaction, item, date).
type deduper map[string]struct{}

func (d deduper) first(item *model.LineItem) bool {
	key := item.DedupeKey()
	if _, seen := d[key]; seen {
		return false
	}
	d[key] = struct{}{}
	return true
}
