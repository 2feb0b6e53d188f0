package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/covid-regional-etl/internal/config"
	"github.com/couchcryptid/covid-regional-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes daily records to a Kafka topic.
// It implements pipeline.Loader.
type Writer struct {
	writer    messageWriter
	batchSize int
	logger    *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchFlushInterval,
	}
	return &Writer{writer: w, batchSize: cfg.BatchSize, logger: logger}
}

// Name identifies the sink in metrics and logs.
func (w *Writer) Name() string { return "kafka" }

// Load publishes all records in chunks of the configured batch size. Records
// share the run's processed_at header.
func (w *Writer) Load(ctx context.Context, records []domain.DailyRecord) error {
	if len(records) == 0 {
		return nil
	}
	processedAt := domain.Now().UTC()

	size := w.batchSize
	if size <= 0 {
		size = len(records)
	}
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		msgs := make([]kafkago.Message, 0, end-start)
		for _, r := range records[start:end] {
			msg, err := serializeToMessage(r, processedAt)
			if err != nil {
				return err
			}
			msgs = append(msgs, msg)
		}
		if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
			return fmt.Errorf("publish records %d-%d: %w", start, end-1, err)
		}
	}

	w.logger.Info("records published", "count", len(records))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// recordMessage is the JSON value of a published record.
type recordMessage struct {
	Date       string  `json:"date"`
	Region     string  `json:"region"`
	Infected   float64 `json:"infected"`
	Recovered  float64 `json:"recovered"`
	Population float64 `json:"population"`
	Mobility   float64 `json:"mobility"`
}

// serializeToMessage marshals a DailyRecord into a Kafka message keyed by
// region and date, so republishing a run overwrites under log compaction.
func serializeToMessage(r domain.DailyRecord, processedAt time.Time) (kafkago.Message, error) {
	date := r.Date.Format(domain.DateLayout)
	data, err := json.Marshal(recordMessage{
		Date:       date,
		Region:     r.Region,
		Infected:   r.Infected,
		Recovered:  r.Recovered,
		Population: r.Population,
		Mobility:   r.Mobility,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(r.Region + "|" + date),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "region", Value: []byte(r.Region)},
			{Key: "processed_at", Value: []byte(processedAt.Format(time.RFC3339))},
		},
	}, nil
}
