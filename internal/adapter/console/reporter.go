// Package console prints run summaries and record previews for a human
// operator.
package console

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/couchcryptid/covid-regional-etl/internal/domain"
)

// maxSourceRows caps the attribution listing.
const maxSourceRows = 25

// Reporter writes the post-run summary: shape, resolved columns, drop counts,
// source attribution, and head/tail previews.
// It implements pipeline.Reporter.
type Reporter struct {
	out         io.Writer
	previewRows int
	outputPath  string
}

// NewReporter creates a Reporter printing previewRows rows at each end.
func NewReporter(out io.Writer, previewRows int, outputPath string) *Reporter {
	return &Reporter{out: out, previewRows: previewRows, outputPath: outputPath}
}

// Report prints the summary of one run.
func (r *Reporter) Report(ds domain.Dataset, records []domain.DailyRecord, report domain.Report) error {
	p := &printer{w: r.out}

	p.printf("Fetched %d rows x %d columns\n", ds.Data.Len(), len(ds.Data.Columns))
	p.printf("Columns: %s\n", strings.Join(ds.Data.Columns, ", "))
	p.printf("Resolved: %s\n", formatMapping(report.Mapping))
	if n := report.TotalDropped(); n > 0 {
		p.printf("Dropped %d rows: %s\n", n, formatDrops(report.Dropped))
	}
	p.printf("Output: %d rows x %d columns -> %s\n", len(records), len(previewHeader), r.outputPath)

	if ds.Sources.Len() > 0 {
		p.printf("\nSources (%d):\n", ds.Sources.Len())
		rows := ds.Sources.Rows
		if len(rows) > maxSourceRows {
			rows = rows[:maxSourceRows]
		}
		p.table(ds.Sources.Columns, rows)
	}

	if r.previewRows > 0 && len(records) > 0 {
		head, tail := previews(records, r.previewRows)
		p.printf("\nFirst %d rows:\n", len(head))
		p.table(previewHeader, recordRows(head))
		p.printf("\nLast %d rows:\n", len(tail))
		p.table(previewHeader, recordRows(tail))
	}
	return p.err
}

var previewHeader = []string{"date", "region", "infected", "recovered", "population", "mobility"}

// previews returns the first and last n records.
func previews(records []domain.DailyRecord, n int) (head, tail []domain.DailyRecord) {
	if n > len(records) {
		n = len(records)
	}
	return records[:n], records[len(records)-n:]
}

func recordRows(records []domain.DailyRecord) [][]string {
	rows := make([][]string, len(records))
	for i, rec := range records {
		rows[i] = []string{
			rec.Date.Format(domain.DateLayout),
			rec.Region,
			strconv.FormatFloat(rec.Infected, 'f', -1, 64),
			strconv.FormatFloat(rec.Recovered, 'f', -1, 64),
			strconv.FormatFloat(rec.Population, 'f', -1, 64),
			strconv.FormatFloat(rec.Mobility, 'f', 1, 64),
		}
	}
	return rows
}

func formatMapping(m domain.ColumnMapping) string {
	fields := []domain.Field{
		domain.FieldDate, domain.FieldRegion, domain.FieldConfirmed, domain.FieldDeaths,
		domain.FieldRecovered, domain.FieldActive, domain.FieldPopulation,
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		col, ok := m[f]
		if !ok {
			col = "-"
		}
		parts = append(parts, fmt.Sprintf("%s=%s", f, col))
	}
	return strings.Join(parts, " ")
}

func formatDrops(d map[domain.DropReason]int) string {
	reasons := make([]string, 0, len(d))
	for k := range d {
		reasons = append(reasons, string(k))
	}
	sort.Strings(reasons)
	parts := make([]string, 0, len(reasons))
	for _, k := range reasons {
		parts = append(parts, fmt.Sprintf("%s=%d", k, d[domain.DropReason(k)]))
	}
	return strings.Join(parts, " ")
}

// printer remembers the first write error so callers check once.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format, args...)
	}
}

func (p *printer) table(header []string, rows [][]string) {
	if p.err != nil {
		return
	}
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  %s\n", strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintf(tw, "  %s\n", strings.Join(row, "\t"))
	}
	p.err = tw.Flush()
}
