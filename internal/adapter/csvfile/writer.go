// Package csvfile writes and reads the six-column regional record CSV.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/couchcryptid/covid-regional-etl/internal/domain"
)

// Header is the exact output column order.
var Header = []string{"date", "region", "infected", "recovered", "population", "mobility"}

// Writer writes records to a CSV file. The file is written to a temp file in
// the same directory and renamed into place, so a failed run leaves any
// previous file untouched and never a partial one.
// It implements pipeline.Loader.
type Writer struct {
	path   string
	logger *slog.Logger
}

// NewWriter creates a Writer targeting path.
func NewWriter(path string, logger *slog.Logger) *Writer {
	return &Writer{path: path, logger: logger}
}

// Name identifies the sink in metrics and logs.
func (w *Writer) Name() string { return "csv" }

// Path returns the target file path.
func (w *Writer) Path() string { return w.path }

// Load writes all records, replacing the target file on success.
func (w *Writer) Load(ctx context.Context, records []domain.DailyRecord) error {
	commit, discard, err := w.Stage(ctx, records)
	if err != nil {
		return err
	}
	if err := commit(); err != nil {
		discard()
		return err
	}
	return nil
}

// Stage writes all records to a temp file next to the target without
// touching the target. commit renames the temp file into place; discard
// removes it. Exactly one of them should be called.
// It implements pipeline.Stager.
func (w *Writer) Stage(ctx context.Context, records []domain.DailyRecord) (func() error, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	f, err := os.CreateTemp(filepath.Dir(w.path), filepath.Base(w.path)+".*")
	if err != nil {
		return nil, nil, fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()
	discard := func() { _ = os.Remove(tmp) }

	if err := Encode(f, records); err != nil {
		f.Close()
		discard()
		return nil, nil, fmt.Errorf("write %s: %w", w.path, err)
	}
	if err := f.Close(); err != nil {
		discard()
		return nil, nil, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		discard()
		return nil, nil, fmt.Errorf("chmod temp file: %w", err)
	}

	commit := func() error {
		if err := os.Rename(tmp, w.path); err != nil {
			return fmt.Errorf("rename into place: %w", err)
		}
		w.logger.Info("csv written", "path", w.path, "rows", len(records), "columns", len(Header))
		return nil
	}
	return commit, discard, nil
}

// Encode writes the header and one line per record to out.
func Encode(out io.Writer, records []domain.DailyRecord) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(Header); err != nil {
		return err
	}
	row := make([]string, len(Header))
	for _, r := range records {
		row[0] = r.Date.Format(domain.DateLayout)
		row[1] = r.Region
		row[2] = formatCount(r.Infected)
		row[3] = formatCount(r.Recovered)
		row[4] = formatCount(r.Population)
		row[5] = strconv.FormatFloat(r.Mobility, 'f', 1, 64)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatCount renders the shortest exact decimal: 118, 2.5.
func formatCount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
