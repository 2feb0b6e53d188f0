package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/covid-regional-etl/internal/domain"
)

// RegionalTransformer implements Transformer using the domain column
// resolution, derivation, and cleaning functions.
type RegionalTransformer struct {
	opts   domain.Options
	logger *slog.Logger
}

// NewTransformer creates a RegionalTransformer for the given options.
func NewTransformer(opts domain.Options, logger *slog.Logger) *RegionalTransformer {
	return &RegionalTransformer{
		opts:   opts,
		logger: logger,
	}
}

func (t *RegionalTransformer) Transform(ctx context.Context, table domain.Table) ([]domain.DailyRecord, domain.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Report{}, err
	}

	records, report, err := domain.Transform(table, t.opts)
	if err != nil {
		return nil, report, err
	}

	t.logger.Info("records transformed",
		"input_rows", report.InputRows,
		"output_rows", report.OutputRows,
		"dropped", report.TotalDropped(),
	)
	for field, col := range report.Mapping {
		t.logger.Debug("column resolved", "field", string(field), "column", col)
	}
	return records, report, nil
}
