package broker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &recordingWriter{}
	p := &KafkaPublisher{writer: w}

	err := p.Publish(context.Background(), EventInvoiceCreated, "inv-1", map[string]string{"invoice_number": "INV-1001"})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "inv-1", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, EventInvoiceCreated, string(msg.Headers[0].Value))

	var decoded struct {
		EventID   string            `json:"event_id"`
		EventType string            `json:"event_type"`
		Payload   map[string]string `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.NotEmpty(t, decoded.EventID)
	assert.Equal(t, EventInvoiceCreated, decoded.EventType)
	assert.Equal(t, "INV-1001", decoded.Payload["invoice_number"])
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := &KafkaPublisher{writer: &recordingWriter{err: errors.New("leader not available")}}
	err := p.Publish(context.Background(), EventInvoiceUpdated, "inv-1", nil)
	assert.EqualError(t, err, "leader not available")
}

func TestNopPublisher(t *testing.T) {
	var p NopPublisher
	assert.NoError(t, p.Publish(context.Background(), EventInvoiceCreated, "k", nil))
	assert.NoError(t, p.Close())
}

func TestKafkaPublisher_PublishBatchIsOneWrite(t *testing.T) {
	w := &countingWriter{}
	p := &KafkaPublisher{writer: w}

	err := p.PublishBatch(context.Background(), EventInvoiceDeleted, []Message{
		{Key: "a", Payload: map[string]string{"id": "a"}},
		{Key: "b", Payload: map[string]string{"id": "b"}},
		{Key: "c", Payload: map[string]string{"id": "c"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, w.calls)
	require.Len(t, w.msgs, 3)
	assert.Equal(t, "c", string(w.msgs[2].Key))
}

func TestKafkaPublisher_PublishBatchEmpty(t *testing.T) {
	w := &countingWriter{}
	p := &KafkaPublisher{writer: w}

	require.NoError(t, p.PublishBatch(context.Background(), EventInvoiceDeleted, nil))
	assert.Zero(t, w.calls)
}

func TestNewKafkaPublisher_FlushesWithoutWaitingForFullBatch(t *testing.T) {
	p := NewKafkaPublisher(&Config{Brokers: []string{"localhost:9092"}, Topic: "invoices.events"})
	t.Cleanup(func() { _ = p.Close() })

	kw, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Greater(t, kw.BatchTimeout, time.Duration(0))
	assert.LessOrEqual(t, kw.BatchTimeout, 10*time.Millisecond)
	assert.IsType(t, &kafka.Hash{}, kw.Balancer)
}

type countingWriter struct {
	recordingWriter
	calls int
}

func (w *countingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.calls++
	return w.recordingWriter.WriteMessages(ctx, msgs...)
}
