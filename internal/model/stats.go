package model

// Dimension is a calendar field line items can be grouped by.
type Dimension string

// Calendar dimensions derived during ingestion.
const (
	DimensionMonth   Dimension = "month"
	DimensionWeekday Dimension = "weekday"
	DimensionHour    Dimension = "hour"
)

// IsValid reports whether d is a known dimension.
func (d Dimension) IsValid() bool {
	switch d {
	case DimensionMonth, DimensionWeekday, DimensionHour:
		return true
	default:
		return false
	}
}

// ItemCount is the number of line items carrying one label.
type ItemCount struct {
	Item  string
	Count int
}

// PeriodCount is the number of line items falling in one calendar period.
type PeriodCount struct {
	Period string
	Count  int
}
