package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/covid-regional-etl/internal/domain"
)

// Config holds all run settings, populated from environment variables.
type Config struct {
	Country     string
	AdminLevel  int
	StartDate   time.Time
	EndDate     time.Time
	OutputPath  string
	PreviewRows int

	DataHubBaseURL string
	DataHubTimeout time.Duration

	HTTPAddr        string
	Serve           bool
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Kafka sink configuration.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaTopic         string
	BatchSize          int
	BatchFlushInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	timeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("DATAHUB_TIMEOUT", "2m"))
	if err != nil || timeout <= 0 {
		return nil, errors.New("invalid DATAHUB_TIMEOUT")
	}

	level, err := strconv.Atoi(sharedcfg.EnvOrDefault("ADMIN_LEVEL", "2"))
	if err != nil || level < 1 || level > 3 {
		return nil, errors.New("invalid ADMIN_LEVEL: must be 1, 2 or 3")
	}

	startDate, err := parseDate("START_DATE", "2020-03-01")
	if err != nil {
		return nil, err
	}
	endDate, err := parseDate("END_DATE", "2021-12-31")
	if err != nil {
		return nil, err
	}
	if endDate.Before(startDate) {
		return nil, errors.New("END_DATE is before START_DATE")
	}

	previewRows, err := strconv.Atoi(sharedcfg.EnvOrDefault("PREVIEW_ROWS", "10"))
	if err != nil || previewRows < 0 {
		return nil, errors.New("invalid PREVIEW_ROWS")
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		Country:     sharedcfg.EnvOrDefault("COUNTRY", "USA"),
		AdminLevel:  level,
		StartDate:   startDate,
		EndDate:     endDate,
		OutputPath:  sharedcfg.EnvOrDefault("OUTPUT_PATH", "covid_usa_regional.csv"),
		PreviewRows: previewRows,

		DataHubBaseURL: sharedcfg.EnvOrDefault("DATAHUB_BASE_URL", "https://storage.covid19datahub.io"),
		DataHubTimeout: timeout,

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		Serve:           os.Getenv("SERVE") == "true",
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaEnabled:       kafkaEnabled,
		KafkaBrokers:       brokers,
		KafkaTopic:         sharedcfg.EnvOrDefault("KAFKA_TOPIC", "covid-regional-records"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
	}

	if len(cfg.Country) != 3 {
		return nil, errors.New("COUNTRY must be an ISO 3166-1 alpha-3 code")
	}
	if cfg.OutputPath == "" {
		return nil, errors.New("OUTPUT_PATH is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required")
	}

	return cfg, nil
}

// Options converts the run settings into transform options.
func (c *Config) Options() domain.Options {
	opts := domain.DefaultOptions()
	opts.Country = c.Country
	opts.Level = c.AdminLevel
	opts.Start = c.StartDate
	opts.End = c.EndDate
	return opts
}

func parseDate(key, def string) (time.Time, error) {
	v := sharedcfg.EnvOrDefault(key, def)
	d, err := time.Parse(domain.DateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: want YYYY-MM-DD", key, v)
	}
	return d, nil
}
