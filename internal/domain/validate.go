package domain

import (
	"fmt"
	"strings"
	"time"
)

// Violation describes one output record breaking a record invariant.
type Violation struct {
	Index  int // position in the record slice
	Region string
	Date   time.Time
	Reason string
}

func (v Violation) String() string {
	return fmt.Sprintf("row %d (%s %s): %s", v.Index, v.Region, v.Date.Format(DateLayout), v.Reason)
}

// ValidateRecords checks records against the output invariants: non-empty,
// non-aggregate regions, dates in range, non-negative infected, positive
// population, neutral mobility, and (region, date) ordering.
func ValidateRecords(records []DailyRecord, opts Options) []Violation {
	excluded := make(map[string]struct{}, len(opts.ExcludedRegions))
	for _, r := range opts.ExcludedRegions {
		excluded[r] = struct{}{}
	}

	var violations []Violation
	add := func(i int, r DailyRecord, format string, args ...any) {
		violations = append(violations, Violation{
			Index:  i,
			Region: r.Region,
			Date:   r.Date,
			Reason: fmt.Sprintf(format, args...),
		})
	}

	for i, r := range records {
		if r.Region == "" || r.Region != strings.TrimSpace(r.Region) {
			add(i, r, "region %q is blank or untrimmed", r.Region)
		}
		if _, ok := excluded[r.Region]; ok {
			add(i, r, "aggregate region %q", r.Region)
		}
		if !opts.InRange(r.Date) {
			add(i, r, "date outside %s..%s", opts.Start.Format(DateLayout), opts.End.Format(DateLayout))
		}
		if r.Infected < 0 {
			add(i, r, "negative infected %g", r.Infected)
		}
		if r.Recovered < 0 {
			add(i, r, "negative recovered %g", r.Recovered)
		}
		if r.Population <= 0 {
			add(i, r, "non-positive population %g", r.Population)
		}
		if r.Mobility != NeutralMobility {
			add(i, r, "mobility %g, want %g", r.Mobility, NeutralMobility)
		}
		if i > 0 && !ordered(records[i-1], r) {
			add(i, r, "out of order after %s %s", records[i-1].Region, records[i-1].Date.Format(DateLayout))
		}
	}
	return violations
}

// ordered reports whether b may follow a. Equal (region, date) pairs are
// allowed; duplicates are the source's concern.
func ordered(a, b DailyRecord) bool {
	if a.Region != b.Region {
		return a.Region < b.Region
	}
	return !b.Date.Before(a.Date)
}
