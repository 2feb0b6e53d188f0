package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/covid-regional-etl/internal/domain"
	"github.com/couchcryptid/covid-regional-etl/internal/observability"
)

// Extractor downloads the raw case and source tables.
type Extractor interface {
	Fetch(ctx context.Context) (domain.Dataset, error)
}

// Transformer turns the raw case table into clean, ordered records.
type Transformer interface {
	Transform(ctx context.Context, t domain.Table) ([]domain.DailyRecord, domain.Report, error)
}

// Loader writes the final records to one destination.
type Loader interface {
	Name() string
	Load(ctx context.Context, records []domain.DailyRecord) error
}

// Stager is a Loader that can prepare its output without publishing it.
// Staged output is committed only after every loader of the run succeeds
// and discarded otherwise.
type Stager interface {
	Loader
	Stage(ctx context.Context, records []domain.DailyRecord) (commit func() error, discard func(), err error)
}

// Reporter presents the outcome of a successful run.
type Reporter interface {
	Report(ds domain.Dataset, records []domain.DailyRecord, report domain.Report) error
}

// Pipeline orchestrates a single extract-transform-load pass.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loaders     []Loader
	reporter    Reporter
	logger      *slog.Logger
	metrics     *observability.Metrics

	mu    sync.Mutex
	ready atomic.Bool
}

// New creates a Pipeline. Loaders run in the given order and the first
// failure stops the run, discarding any staged output. A nil reporter
// disables reporting.
func New(e Extractor, t Transformer, loaders []Loader, r Reporter, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loaders:     loaders,
		reporter:    r,
		logger:      logger,
		metrics:     metrics,
	}
}

// CheckReadiness returns nil once a run has completed successfully.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a run yet")
	}
	return nil
}

// Run performs one full pass: fetch, transform, load into every sink, report.
// Concurrent calls are serialized.
func (p *Pipeline) Run(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	if err := p.run(ctx); err != nil {
		p.metrics.Runs.WithLabelValues("error").Inc()
		p.logger.Error("pipeline run failed", "error", err, "duration", time.Since(start))
		return err
	}

	p.metrics.Runs.WithLabelValues("success").Inc()
	p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	p.metrics.LastSuccess.Set(float64(domain.Now().Unix()))
	p.ready.Store(true)
	p.logger.Info("pipeline run complete", "duration", time.Since(start))
	return nil
}

func (p *Pipeline) run(ctx context.Context) error {
	p.logger.Info("pipeline started", "sinks", len(p.loaders))

	fetchStart := time.Now()
	ds, err := p.extractor.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	p.metrics.FetchDuration.Observe(time.Since(fetchStart).Seconds())
	p.metrics.RowsFetched.Add(float64(ds.Data.Len()))
	p.logger.Info("extract complete",
		"rows", ds.Data.Len(),
		"columns", len(ds.Data.Columns),
		"sources", ds.Sources.Len(),
	)

	records, report, err := p.transformer.Transform(ctx, ds.Data)
	if err != nil {
		return fmt.Errorf("transform: %w", err)
	}
	for reason, n := range report.Dropped {
		p.metrics.RowsDropped.WithLabelValues(string(reason)).Add(float64(n))
	}

	if err := p.load(ctx, records); err != nil {
		return err
	}

	if p.reporter != nil {
		if err := p.reporter.Report(ds, records, report); err != nil {
			// Output is already written; a broken report stream is not a failed run.
			p.logger.Warn("report failed", "error", err)
		}
	}
	return nil
}

type staged struct {
	name    string
	commit  func() error
	discard func()
}

// load runs every loader. Stagers are committed only once all loaders have
// succeeded.
func (p *Pipeline) load(ctx context.Context, records []domain.DailyRecord) error {
	var pending []staged
	discard := func(from int) {
		for _, s := range pending[from:] {
			s.discard()
		}
	}

	for _, l := range p.loaders {
		if st, ok := l.(Stager); ok {
			commit, d, err := st.Stage(ctx, records)
			if err != nil {
				discard(0)
				return fmt.Errorf("stage %s: %w", l.Name(), err)
			}
			pending = append(pending, staged{name: l.Name(), commit: commit, discard: d})
			continue
		}
		if err := l.Load(ctx, records); err != nil {
			discard(0)
			return fmt.Errorf("load %s: %w", l.Name(), err)
		}
		p.metrics.RecordsLoaded.WithLabelValues(l.Name()).Add(float64(len(records)))
	}

	for i, s := range pending {
		if err := s.commit(); err != nil {
			discard(i)
			return fmt.Errorf("commit %s: %w", s.name, err)
		}
		p.metrics.RecordsLoaded.WithLabelValues(s.name).Add(float64(len(records)))
	}
	return nil
}
