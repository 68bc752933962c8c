// Package kafka publishes turn events to a Kafka topic. Events are JSON
// encoded and keyed by user so per-user ordering survives partitioning.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/muninnhq/muninn/pkg/eventstream"
	"github.com/muninnhq/muninn/pkg/logger"
)

// DefaultTopic is the topic turn events land on when none is configured.
const DefaultTopic = "muninn.turns"

// Config holds configuration for the Kafka publisher.
type Config struct {
	// Brokers is the list of bootstrap broker addresses. Required.
	Brokers []string

	// Topic is the destination topic. Defaults to DefaultTopic if empty.
	Topic string

	// Logger is the structured logger. Defaults to a no-op logger.
	Logger *slog.Logger
}

// Publisher writes turn events to Kafka.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka-backed eventstream publisher.
func NewPublisher(cfg Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	writer := &kafkago.Writer{
		Addr:     kafkago.TCP(cfg.Brokers...),
		Topic:    topic,
		Balancer: &kafkago.Hash{},
	}

	return &Publisher{
		writer: writer,
		logger: log,
	}, nil
}

// PublishTurn JSON-encodes the event and writes it keyed by user.
func (p *Publisher) PublishTurn(ctx context.Context, event *eventstream.TurnSavedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding turn event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(event.User),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("publishing turn event: %w", err)
	}

	p.logger.Debug("published turn event",
		"event_id", event.EventID,
		"user", event.User,
		"hash", event.Turn.Hash,
	)

	return nil
}

// Close flushes buffered messages and releases the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Ensure Publisher implements eventstream.Publisher.
var _ eventstream.Publisher = (*Publisher)(nil)
