package kafka

import (
	"context"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"medbox-sync/internal/config/components"
	"time"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventProducer exports every consumer broadcast to a Kafka topic, keyed by
// event name. Writes are asynchronous; failures are logged and never retried.
type EventProducer struct {
	writer messageWriter
	logger zerolog.Logger
}

func NewEventProducer(cfg components.KafkaConfigImpl, logger zerolog.Logger) *EventProducer {
	p := &EventProducer{logger: logger}

	p.writer = &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafka.Hash{},

		BatchSize:    100,
		BatchTimeout: cfg.BatchTimeout,

		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Compression:  kafka.Snappy,
		Completion:   p.onCompletion,
	}

	return p
}

func newEventProducerWithWriter(writer messageWriter, logger zerolog.Logger) *EventProducer {
	return &EventProducer{writer: writer, logger: logger}
}

func (p *EventProducer) Publish(event string, message []byte) {
	err := p.writer.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(event),
		Value: message,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(event)},
		},
	})
	if err != nil {
		p.logger.Warn().Err(err).Str("event", event).Msg("Failed to queue event for Kafka")
	}
}

func (p *EventProducer) onCompletion(messages []kafka.Message, err error) {
	if err != nil {
		p.logger.Warn().Err(err).Int("messages", len(messages)).Msg("Kafka export failed")
	}
}

func (p *EventProducer) Close() error {
	return p.writer.Close()
}
