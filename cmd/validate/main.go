// Command validate checks a generated regional CSV against the output
// invariants: exact header, parseable rows, non-aggregate regions, dates in
// range, non-negative counts, neutral mobility, and (region, date) ordering.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -input covid_usa_regional.csv \
//	  -start 2020-03-01 \
//	  -end 2021-12-31
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/couchcryptid/covid-regional-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/covid-regional-etl/internal/domain"
)

// maxReported caps the detailed errors printed per phase.
const maxReported = 50

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	defaults := domain.DefaultOptions()
	input := flag.String("input", "covid_usa_regional.csv", "path to the generated regional CSV")
	start := flag.String("start", defaults.Start.Format(domain.DateLayout), "first date expected in the output")
	end := flag.String("end", defaults.End.Format(domain.DateLayout), "last date expected in the output")
	flag.Parse()

	opts, err := optionsFor(*start, *end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}

	if code := run(os.Stdout, *input, opts); code != 0 {
		os.Exit(code)
	}
}

func optionsFor(start, end string) (domain.Options, error) {
	opts := domain.DefaultOptions()
	s, err := time.Parse(domain.DateLayout, start)
	if err != nil {
		return opts, fmt.Errorf("invalid -start %q: want YYYY-MM-DD", start)
	}
	e, err := time.Parse(domain.DateLayout, end)
	if err != nil {
		return opts, fmt.Errorf("invalid -end %q: want YYYY-MM-DD", end)
	}
	if e.Before(s) {
		return opts, fmt.Errorf("-end %s is before -start %s", end, start)
	}
	opts.Start, opts.End = s, e
	return opts, nil
}

func run(out io.Writer, input string, opts domain.Options) int {
	fmt.Fprintln(out, "=== Regional CSV Validation ===")
	fmt.Fprintln(out)

	records, err := csvfile.ReadRecords(input)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateInvariants(records, opts),
		validateCoverage(records),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Records: %d rows, %d regions\n", len(records), countRegions(records))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == maxReported {
				fmt.Fprintf(out, "  ... %d more\n", len(p.errors)-maxReported)
				break
			}
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// ── Phase 1: Record Invariants ──

func validateInvariants(records []domain.DailyRecord, opts domain.Options) *phase {
	p := &phase{name: "Phase 1: Record Invariants"}
	for _, v := range domain.ValidateRecords(records, opts) {
		p.errorf("%s", v)
	}
	return p
}

// ── Phase 2: Coverage ──
// Every region should report at most once per day.

func validateCoverage(records []domain.DailyRecord) *phase {
	p := &phase{name: "Phase 2: Coverage (one row per region-day)"}
	if len(records) == 0 {
		p.errorf("no data rows")
		return p
	}

	type key struct {
		region string
		date   time.Time
	}
	seen := make(map[key]int, len(records))
	for i, r := range records {
		k := key{region: r.Region, date: r.Date}
		if first, ok := seen[k]; ok {
			p.errorf("row %d duplicates row %d (%s %s)", i, first, r.Region, r.Date.Format(domain.DateLayout))
			continue
		}
		seen[k] = i
	}
	return p
}

func countRegions(records []domain.DailyRecord) int {
	regions := make(map[string]struct{})
	for _, r := range records {
		regions[r.Region] = struct{}{}
	}
	return len(regions)
}
