package dataset

import (
	"time"
)

// Canonical column names after cleaning. Input files are reconciled to
// these headers regardless of the exact spelling they arrive with.
const (
	RegionColumn = "Region"
	DateColumn   = "Date"
	RateColumn   = "Estimated Unemployment Rate (%)"
)

// DateLayout is the explicit day-month-year layout used by the source files.
const DateLayout = "02-01-2006"

// Observation is a single cleaned row: one unemployment reading for one
// region on one date. Rate is nil when the source cell was blank or could
// not be parsed; such rows are kept but excluded from aggregates.
type Observation struct {
	Region string            `json:"region"`
	Date   time.Time         `json:"date"`
	Rate   *float64          `json:"rate"`
	Extra  map[string]string `json:"extra,omitempty"`
}

// Table is the cleaned, immutable observation table. It is built once at
// startup and never mutated afterwards, so it is safe to share across
// goroutines without locking.
type Table struct {
	Columns []string      `json:"columns"`
	Rows    []Observation `json:"rows"`
}

// RegionAverage is a derived (region, mean rate) pair.
type RegionAverage struct {
	Region   string  `json:"region"`
	MeanRate float64 `json:"mean_rate"`
	Count    int     `json:"count"`
}

// Float64 returns a pointer to v. Convenience for building tables in tests.
func Float64(v float64) *float64 {
	return &v
}
