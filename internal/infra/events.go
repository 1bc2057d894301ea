package infra

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// TopicLimitExceeded carries one event per fresh over-limit notification.
const TopicLimitExceeded = "playtime.limit_exceeded"

// EventProducer publishes monitoring events to Kafka. If disabled, all
// writes are no-ops so the evaluator can publish unconditionally.
type EventProducer struct {
	writer  *kafka.Writer
	logger  *slog.Logger
	enabled bool
}

// NewEventProducer creates a Kafka event producer. If brokers is empty or
// disabled, writes are no-ops.
func NewEventProducer(brokers string, enabled bool, logger *slog.Logger) *EventProducer {
	if !enabled || brokers == "" {
		logger.Info("event producer disabled")
		return &EventProducer{enabled: false, logger: logger}
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(brokers, ",")...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	logger.Info("event producer initialized", "brokers", brokers)
	return &EventProducer{writer: w, logger: logger, enabled: true}
}

// Publish sends a message to the given topic. No-op if disabled.
func (p *EventProducer) Publish(ctx context.Context, topic string, key, value []byte) error {
	if !p.enabled {
		return nil
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   key,
		Value: value,
	})
}

// Close shuts down the Kafka writer.
func (p *EventProducer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
