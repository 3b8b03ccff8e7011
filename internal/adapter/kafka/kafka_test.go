package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/accident-data-etl/internal/config"
	"github.com/couchcryptid/accident-data-etl/internal/domain"
)

type fakeWriter struct {
	batches [][]kafkago.Message
	err     error
	closed  bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, msgs)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	a := domain.Accident{ID: "190910111", Region: "JHM", Animal: 5}

	msg, err := serializeToMessage(a, now)
	require.NoError(t, err)

	assert.Equal(t, []byte("190910111"), msg.Key)
	assert.Contains(t, string(msg.Value), `"p8a":5`)
	assert.Contains(t, string(msg.Value), `"region":"JHM"`)
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "region", msg.Headers[0].Key)
	assert.Equal(t, []byte("JHM"), msg.Headers[0].Value)
	assert.Equal(t, "processed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestWriter_Batches(t *testing.T) {
	fw := &fakeWriter{}
	w := newWriter(fw, 2, discard())

	ds := domain.Dataset{Accidents: []domain.Accident{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}, {ID: "5"}}}
	require.NoError(t, w.Write(context.Background(), ds))

	require.Len(t, fw.batches, 3)
	assert.Len(t, fw.batches[0], 2)
	assert.Len(t, fw.batches[2], 1)
	assert.Equal(t, []byte("5"), fw.batches[2][0].Key)

	require.NoError(t, w.Close())
	assert.True(t, fw.closed)
}

func TestWriter_Empty(t *testing.T) {
	fw := &fakeWriter{}
	require.NoError(t, newWriter(fw, 10, discard()).Write(context.Background(), domain.Dataset{}))
	assert.Empty(t, fw.batches)
}

func TestWriter_Error(t *testing.T) {
	fw := &fakeWriter{err: errors.New("broker down")}
	err := newWriter(fw, 0, discard()).Write(context.Background(), domain.Dataset{Accidents: []domain.Accident{{ID: "1"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestNewWriter(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "accidents", BatchSize: 100}
	w := NewWriter(cfg, discard())
	assert.Equal(t, "kafka", w.Name())
	assert.Equal(t, 100, w.batchSize)

	kw, ok := w.writer.(*kafkago.Writer)
	require.True(t, ok)
	assert.Equal(t, "accidents", kw.Topic)
}
