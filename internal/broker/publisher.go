package broker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	EventInvoiceCreated = "InvoiceCreated"
	EventInvoiceUpdated = "InvoiceUpdated"
	EventInvoiceDeleted = "InvoiceDeleted"
)

// Event is the envelope every message on the invoices topic carries.
type Event struct {
	EventID   string      `json:"event_id"`
	EventType string      `json:"event_type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// kafka-go waits up to a second for a batch to fill by default.
const batchTimeout = 5 * time.Millisecond

type Config struct {
	Brokers []string
	Topic   string
}

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(cfg *Config) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Topic:                  cfg.Topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			// flush as soon as the caller's messages are queued
			BatchTimeout: batchTimeout,
		},
	}
}

// Message is one keyed payload of a batch.
type Message struct {
	Key     string
	Payload interface{}
}

// Publish wraps payload in an Event and writes it keyed by key, so all events
// for one invoice land on the same partition in order.
func (p *KafkaPublisher) Publish(ctx context.Context, eventType, key string, payload interface{}) error {
	return p.PublishBatch(ctx, eventType, []Message{{Key: key, Payload: payload}})
}

// PublishBatch writes every message in a single round trip.
func (p *KafkaPublisher) PublishBatch(ctx context.Context, eventType string, msgs []Message) error {
	if len(msgs) == 0 {
		return nil
	}

	out := make([]kafka.Message, 0, len(msgs))
	for _, m := range msgs {
		value, err := json.Marshal(Event{
			EventID:   uuid.New().String(),
			EventType: eventType,
			Payload:   m.Payload,
			Timestamp: time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		out = append(out, kafka.Message{
			Key:   []byte(m.Key),
			Value: value,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(eventType)},
			},
		})
	}

	return p.writer.WriteMessages(ctx, out...)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, interface{}) error { return nil }
func (NopPublisher) PublishBatch(context.Context, string, []Message) error      { return nil }
func (NopPublisher) Close() error                                               { return nil }
