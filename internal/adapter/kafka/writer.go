package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/accident-data-etl/internal/config"
	"github.com/couchcryptid/accident-data-etl/internal/domain"
)

// messageWriter is the part of kafkago.Writer the sink uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes parsed accidents to a Kafka topic, one message per accident.
// It implements pipeline.Sink.
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
	}
	return newWriter(w, cfg.BatchSize, logger)
}

func newWriter(w messageWriter, batchSize int, logger *slog.Logger) *Writer {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Writer{writer: w, batchSize: batchSize, logger: logger}
}

// Name identifies the writer as a pipeline sink.
func (w *Writer) Name() string { return "kafka" }

// Write publishes every accident of ds in batches of the configured size. Messages
// are keyed by p1 so all versions of one accident land on the same partition.
func (w *Writer) Write(ctx context.Context, ds domain.Dataset) error {
	processedAt := domain.Now()
	for start := 0; start < len(ds.Accidents); start += w.batchSize {
		end := min(start+w.batchSize, len(ds.Accidents))

		msgs := make([]kafkago.Message, 0, end-start)
		for i := start; i < end; i++ {
			msg, err := serializeToMessage(ds.Accidents[i], processedAt)
			if err != nil {
				return err
			}
			msgs = append(msgs, msg)
		}
		if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
			return fmt.Errorf("publish accidents %d-%d: %w", start, end, err)
		}
		w.logger.Debug("batch published", "from", start, "to", end)
	}
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an Accident into a Kafka message.
func serializeToMessage(a domain.Accident, processedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize accident: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(a.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "region", Value: []byte(a.Region)},
			{Key: "processed_at", Value: []byte(processedAt.Format(time.RFC3339))},
		},
	}, nil
}
