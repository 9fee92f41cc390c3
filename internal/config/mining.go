package config

import (
	"fmt"
	"time"

	"github.com/Veraticus/market-basket/internal/apriori"
	"github.com/spf13/viper"
)

// Defaults mirror the sliders of the original analysis notebook.
const (
	DefaultMinSupport    = 0.02
	DefaultMinConfidence = 0.3
	DefaultDebounce      = 2 * time.Second
)

// DefaultTimeLayouts are tried in order when parsing date_time columns.
var DefaultTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"01/02/2006 15:04",
}

// Mining holds the thresholds and tuning for one mining run.
type Mining struct {
	MinSupport    float64
	MinConfidence float64
	MaxLength     int
	Workers       int
}

// SetDefaults registers default values with viper.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath())
	v.SetDefault("mining.min_support", DefaultMinSupport)
	v.SetDefault("mining.min_confidence", DefaultMinConfidence)
	v.SetDefault("mining.max_length", 0)
	v.SetDefault("mining.workers", 0)
	v.SetDefault("import.time_layouts", DefaultTimeLayouts)
	v.SetDefault("watch.debounce", DefaultDebounce)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// LoadMining reads and validates the mining section.
func LoadMining(v *viper.Viper) (Mining, error) {
	m := Mining{
		MinSupport:    v.GetFloat64("mining.min_support"),
		MinConfidence: v.GetFloat64("mining.min_confidence"),
		MaxLength:     v.GetInt("mining.max_length"),
		Workers:       v.GetInt("mining.workers"),
	}

	if err := apriori.ValidateThreshold("min_support", m.MinSupport); err != nil {
		return Mining{}, err
	}
	if err := apriori.ValidateThreshold("min_confidence", m.MinConfidence); err != nil {
		return Mining{}, err
	}
	if m.MaxLength < 0 {
		return Mining{}, fmt.Errorf("%w: max_length must not be negative, got %d", apriori.ErrInvalidParameter, m.MaxLength)
	}
	if m.Workers < 0 {
		return Mining{}, fmt.Errorf("%w: workers must not be negative, got %d", apriori.ErrInvalidParameter, m.Workers)
	}
	return m, nil
}

// DatabasePath returns the expanded database location.
func DatabasePath(v *viper.Viper) string {
	return ExpandPath(v.GetString("database.path"))
}
