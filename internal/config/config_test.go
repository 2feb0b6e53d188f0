package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "USA", cfg.Country)
	assert.Equal(t, 2, cfg.AdminLevel)
	assert.Equal(t, time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC), cfg.StartDate)
	assert.Equal(t, time.Date(2021, time.December, 31, 0, 0, 0, 0, time.UTC), cfg.EndDate)
	assert.Equal(t, "covid_usa_regional.csv", cfg.OutputPath)
	assert.Equal(t, 10, cfg.PreviewRows)
	assert.Equal(t, "https://storage.covid19datahub.io", cfg.DataHubBaseURL)
	assert.Equal(t, 2*time.Minute, cfg.DataHubTimeout)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.False(t, cfg.Serve)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.KafkaEnabled)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "covid-regional-records", cfg.KafkaTopic)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("COUNTRY", "CAN")
	t.Setenv("ADMIN_LEVEL", "3")
	t.Setenv("START_DATE", "2021-01-01")
	t.Setenv("END_DATE", "2021-06-30")
	t.Setenv("OUTPUT_PATH", "/tmp/out.csv")
	t.Setenv("PREVIEW_ROWS", "5")
	t.Setenv("DATAHUB_BASE_URL", "http://mirror.local")
	t.Setenv("DATAHUB_TIMEOUT", "30s")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("SERVE", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-topic")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("BATCH_FLUSH_INTERVAL", "1s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "CAN", cfg.Country)
	assert.Equal(t, 3, cfg.AdminLevel)
	assert.Equal(t, time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC), cfg.StartDate)
	assert.Equal(t, time.Date(2021, time.June, 30, 0, 0, 0, 0, time.UTC), cfg.EndDate)
	assert.Equal(t, "/tmp/out.csv", cfg.OutputPath)
	assert.Equal(t, 5, cfg.PreviewRows)
	assert.Equal(t, "http://mirror.local", cfg.DataHubBaseURL)
	assert.Equal(t, 30*time.Second, cfg.DataHubTimeout)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.True(t, cfg.Serve)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-topic", cfg.KafkaTopic)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 1*time.Second, cfg.BatchFlushInterval)
}

func TestLoad_Options(t *testing.T) {
	t.Setenv("COUNTRY", "CAN")
	t.Setenv("START_DATE", "2021-01-01")

	cfg, err := Load()
	require.NoError(t, err)

	opts := cfg.Options()
	assert.Equal(t, "CAN", opts.Country)
	assert.Equal(t, 2, opts.Level)
	assert.Equal(t, cfg.StartDate, opts.Start)
	assert.Equal(t, cfg.EndDate, opts.End)
	assert.Equal(t, []string{"Unknown", "US", "United States", "USA"}, opts.ExcludedRegions)
	assert.NotEmpty(t, opts.Aliases)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	t.Setenv("BATCH_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_SIZE")
}

func TestLoad_InvalidBatchFlushInterval(t *testing.T) {
	t.Setenv("BATCH_FLUSH_INTERVAL", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_FLUSH_INTERVAL")
}

func TestLoad_InvalidDataHubTimeout(t *testing.T) {
	t.Setenv("DATAHUB_TIMEOUT", "-5s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATAHUB_TIMEOUT")
}

func TestLoad_InvalidAdminLevel(t *testing.T) {
	t.Setenv("ADMIN_LEVEL", "4")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_LEVEL")
}

func TestLoad_InvalidStartDate(t *testing.T) {
	t.Setenv("START_DATE", "03/01/2020")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "START_DATE")
}

func TestLoad_EndBeforeStart(t *testing.T) {
	t.Setenv("START_DATE", "2021-01-01")
	t.Setenv("END_DATE", "2020-12-31")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "END_DATE")
}

func TestLoad_InvalidPreviewRows(t *testing.T) {
	t.Setenv("PREVIEW_ROWS", "-1")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PREVIEW_ROWS")
}

func TestLoad_InvalidCountry(t *testing.T) {
	t.Setenv("COUNTRY", "US")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COUNTRY")
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_KafkaBrokersImplyEnabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", testBroker)
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{testBroker}, cfg.KafkaBrokers)
}

func TestLoad_KafkaExplicitlyDisabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", testBroker)
	t.Setenv("KAFKA_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}
