package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/covid-regional-etl/internal/adapter/console"
	"github.com/couchcryptid/covid-regional-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/covid-regional-etl/internal/adapter/datahub"
	"github.com/couchcryptid/covid-regional-etl/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/covid-regional-etl/internal/adapter/kafka"
	"github.com/couchcryptid/covid-regional-etl/internal/config"
	"github.com/couchcryptid/covid-regional-etl/internal/observability"
	"github.com/couchcryptid/covid-regional-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	opts := cfg.Options()

	client := datahub.NewClient(cfg.DataHubBaseURL, cfg.DataHubTimeout, opts, logger)
	csvWriter := csvfile.NewWriter(cfg.OutputPath, logger)
	loaders := []pipeline.Loader{csvWriter}

	// Kafka sink is feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	var kafkaWriter *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		kafkaWriter = kafkaadapter.NewWriter(cfg, logger)
		loaders = append(loaders, kafkaWriter)
		metrics.KafkaEnabled.Set(1)
		logger.Info("kafka sink enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka sink disabled")
	}

	reporter := console.NewReporter(os.Stdout, cfg.PreviewRows, cfg.OutputPath)
	transformer := pipeline.NewTransformer(opts, logger)
	p := pipeline.New(client, transformer, loaders, reporter, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	code := 0
	if cfg.Serve {
		code = serve(ctx, cfg, p, logger)
	} else if err := runPipeline(ctx, p, logger); err != nil {
		code = 1
	}
	stop()

	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	os.Exit(code)
}

// serve runs the pipeline once behind the HTTP server and keeps serving the
// result until the process is signalled.
func serve(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline, logger *slog.Logger) int {
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, cfg.OutputPath, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline. Failures leave /readyz at 503.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
		return 1
	}

	logger.Info("shutdown complete")
	return 0
}

// runner is the part of *pipeline.Pipeline used by runPipeline.
type runner interface {
	Run(ctx context.Context) error
}

// runPipeline performs the one-shot run and logs its failure.
func runPipeline(ctx context.Context, r runner, logger *slog.Logger) error {
	if err := r.Run(ctx); err != nil {
		logger.Error("pipeline error", "error", err)
		return err
	}
	return nil
}
