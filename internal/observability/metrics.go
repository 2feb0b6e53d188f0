package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL run.
type Metrics struct {
	RowsFetched     prometheus.Counter
	RowsDropped     *prometheus.CounterVec // labels: reason={invalid_date,out_of_range,blank_region,aggregate_region}
	RecordsLoaded   *prometheus.CounterVec // labels: sink={csv,kafka}
	Runs            *prometheus.CounterVec // labels: outcome={success,error}
	PipelineRunning prometheus.Gauge
	LastSuccess     prometheus.Gauge

	FetchDuration prometheus.Histogram
	RunDuration   prometheus.Histogram

	KafkaEnabled prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RowsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "covid_etl",
			Name:      "rows_fetched_total",
			Help:      "Total rows read from the dataset provider.",
		}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "covid_etl",
			Name:      "rows_dropped_total",
			Help:      "Source rows that did not become output records, by reason.",
		}, []string{"reason"}),
		RecordsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "covid_etl",
			Name:      "records_loaded_total",
			Help:      "Records written, by sink.",
		}, []string{"sink"}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "covid_etl",
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "covid_etl",
			Name:      "pipeline_running",
			Help:      "1 while a run is in progress, 0 otherwise.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "covid_etl",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "covid_etl",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of the dataset download.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "covid_etl",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete extract-transform-load run.",
			Buckets:   []float64{1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		KafkaEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "covid_etl",
			Name:      "kafka_enabled",
			Help:      "1 when the Kafka sink is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.RowsFetched,
		m.RowsDropped,
		m.RecordsLoaded,
		m.Runs,
		m.PipelineRunning,
		m.LastSuccess,
		m.FetchDuration,
		m.RunDuration,
		m.KafkaEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RowsFetched:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "covid_etl", Name: "rows_fetched_total"}),
		RowsDropped:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "covid_etl", Name: "rows_dropped_total"}, []string{"reason"}),
		RecordsLoaded:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "covid_etl", Name: "records_loaded_total"}, []string{"sink"}),
		Runs:            prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "covid_etl", Name: "runs_total"}, []string{"outcome"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "covid_etl", Name: "pipeline_running"}),
		LastSuccess:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "covid_etl", Name: "last_success_timestamp_seconds"}),
		FetchDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "covid_etl", Name: "fetch_duration_seconds"}),
		RunDuration:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "covid_etl", Name: "run_duration_seconds"}),
		KafkaEnabled:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "covid_etl", Name: "kafka_enabled"}),
	}
}
