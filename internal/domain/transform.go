package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DropReason labels why a source row did not become an output record.
type DropReason string

const (
	DropInvalidDate     DropReason = "invalid_date"
	DropOutOfRange      DropReason = "out_of_range"
	DropBlankRegion     DropReason = "blank_region"
	DropAggregateRegion DropReason = "aggregate_region"
)

// Report summarizes one Transform call.
type Report struct {
	Mapping     ColumnMapping
	InputRows   int
	OutputRows  int
	Dropped     map[DropReason]int
	ProcessedAt time.Time
}

// TotalDropped returns the number of rows dropped for any reason.
func (r Report) TotalDropped() int {
	n := 0
	for _, c := range r.Dropped {
		n += c
	}
	return n
}

// Transform resolves columns, derives fields, cleans and sorts. The only
// error it returns is a *MissingColumnError for a required field.
func Transform(t Table, opts Options) ([]DailyRecord, Report, error) {
	report := Report{
		InputRows: t.Len(),
		Dropped:   make(map[DropReason]int),
	}

	mapping, err := ResolveColumns(t.Columns, opts.Aliases)
	if err != nil {
		return nil, report, fmt.Errorf("resolve columns: %w", err)
	}
	report.Mapping = mapping

	records, dropped := DeriveRecords(t, mapping, opts)
	mergeDrops(report.Dropped, dropped)

	records, dropped = CleanRecords(records, opts.ExcludedRegions)
	mergeDrops(report.Dropped, dropped)

	SortRecords(records)

	report.OutputRows = len(records)
	report.ProcessedAt = clock.Now().UTC()
	return records, report, nil
}

// DeriveRecords builds one DailyRecord per source row with a usable date
// inside the options' range.
func DeriveRecords(t Table, m ColumnMapping, opts Options) ([]DailyRecord, map[DropReason]int) {
	dropped := make(map[DropReason]int)
	cols := columnIndexes(t, m)

	records := make([]DailyRecord, 0, t.Len())
	for i := range t.Rows {
		date, ok := ParseDate(t.Cell(i, cols.date))
		if !ok {
			dropped[DropInvalidDate]++
			continue
		}
		if !opts.InRange(date) {
			dropped[DropOutOfRange]++
			continue
		}

		recovered := deriveRecovered(t, i, cols)
		records = append(records, DailyRecord{
			Date:       date,
			Region:     t.Cell(i, cols.region),
			Infected:   deriveInfected(t, i, cols, recovered),
			Recovered:  recovered,
			Population: derivePopulation(t, i, cols),
			Mobility:   NeutralMobility,
		})
	}
	return records, dropped
}

// CleanRecords trims region names and drops blank and aggregate regions.
func CleanRecords(records []DailyRecord, excluded []string) ([]DailyRecord, map[DropReason]int) {
	dropped := make(map[DropReason]int)
	skip := make(map[string]struct{}, len(excluded))
	for _, r := range excluded {
		skip[r] = struct{}{}
	}

	out := records[:0]
	for _, r := range records {
		r.Region = strings.TrimSpace(r.Region)
		if r.Region == "" {
			dropped[DropBlankRegion]++
			continue
		}
		if _, ok := skip[r.Region]; ok {
			dropped[DropAggregateRegion]++
			continue
		}
		out = append(out, r)
	}
	return out, dropped
}

// SortRecords stably orders records by region, then date.
func SortRecords(records []DailyRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Region != records[j].Region {
			return records[i].Region < records[j].Region
		}
		return records[i].Date.Before(records[j].Date)
	})
}

// ParseDate parses the calendar date at the start of s ("2020-03-05" or
// "2020-03-05T00:00:00Z").
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// resolvedColumns holds column positions; -1 marks an unresolved field.
type resolvedColumns struct {
	date, region, confirmed, deaths, recovered, active, population int
}

func columnIndexes(t Table, m ColumnMapping) resolvedColumns {
	idx := func(f Field) int {
		name, ok := m[f]
		if !ok {
			return -1
		}
		return t.Index(name)
	}
	return resolvedColumns{
		date:       idx(FieldDate),
		region:     idx(FieldRegion),
		confirmed:  idx(FieldConfirmed),
		deaths:     idx(FieldDeaths),
		recovered:  idx(FieldRecovered),
		active:     idx(FieldActive),
		population: idx(FieldPopulation),
	}
}

func deriveRecovered(t Table, i int, cols resolvedColumns) float64 {
	if cols.recovered < 0 {
		return 0
	}
	return ParseNumber(t.Cell(i, cols.recovered)).Or(0)
}

// deriveInfected prefers the active column. Without it, active cases are
// estimated as confirmed - deaths - recovered. A provider vintage carrying
// active but not recovered never takes the subtraction path.
func deriveInfected(t Table, i int, cols resolvedColumns, recovered float64) float64 {
	var v float64
	if cols.active >= 0 {
		v = ParseNumber(t.Cell(i, cols.active)).Or(0)
	} else {
		confirmed := ParseNumber(t.Cell(i, cols.confirmed)).Or(0)
		deaths := ParseNumber(t.Cell(i, cols.deaths)).Or(0)
		v = confirmed - deaths - recovered
	}
	if v < 0 {
		return 0
	}
	return v
}

func derivePopulation(t Table, i int, cols resolvedColumns) float64 {
	if cols.population < 0 {
		return 1
	}
	return ParseNumber(t.Cell(i, cols.population)).Or(1)
}

func mergeDrops(dst, src map[DropReason]int) {
	for k, v := range src {
		dst[k] += v
	}
}
