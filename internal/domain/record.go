package domain

import (
	"time"
)

// NeutralMobility is the placeholder mobility index written for every record.
const NeutralMobility = 1.0

// DateLayout is the ISO-8601 calendar date format used on input and output.
const DateLayout = "2006-01-02"

// DailyRecord is one region's observation for one day after derivation.
type DailyRecord struct {
	Date       time.Time
	Region     string
	Infected   float64 // current active cases, never negative
	Recovered  float64 // cumulative recoveries, 0 when unknown
	Population float64 // 1 when unknown
	Mobility   float64
}

// Table is a raw string table as delivered by the dataset provider.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Index returns the position of the named column, or -1.
func (t Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at row i, column col. Short rows and negative
// column indexes read as empty.
func (t Table) Cell(i, col int) string {
	if col < 0 || i < 0 || i >= len(t.Rows) {
		return ""
	}
	row := t.Rows[i]
	if col >= len(row) {
		return ""
	}
	return row[col]
}

// Len returns the number of data rows.
func (t Table) Len() int { return len(t.Rows) }

// Dataset is the result of a provider fetch: the primary case table plus
// the provider's source-attribution table, which is only displayed.
type Dataset struct {
	Data    Table
	Sources Table
}

// Options holds the run parameters passed into Transform.
type Options struct {
	Country         string // ISO 3166-1 alpha-3
	Level           int    // administrative level, 2 = states/provinces
	Start           time.Time
	End             time.Time // inclusive
	ExcludedRegions []string
	Aliases         []FieldAliases
}

// DefaultExcludedRegions lists the aggregate region names dropped from
// subdivision output.
var DefaultExcludedRegions = []string{"Unknown", "US", "United States", "USA"}

// DefaultOptions returns the fixed USA state-level configuration covering
// 2020-03-01 through 2021-12-31.
func DefaultOptions() Options {
	return Options{
		Country:         "USA",
		Level:           2,
		Start:           time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC),
		End:             time.Date(2021, time.December, 31, 0, 0, 0, 0, time.UTC),
		ExcludedRegions: append([]string(nil), DefaultExcludedRegions...),
		Aliases:         DefaultAliases(),
	}
}

// InRange reports whether d falls inside [Start, End]. A zero bound is open.
func (o Options) InRange(d time.Time) bool {
	if !o.Start.IsZero() && d.Before(o.Start) {
		return false
	}
	if !o.End.IsZero() && d.After(o.End) {
		return false
	}
	return true
}
