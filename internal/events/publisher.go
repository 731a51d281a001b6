// Package events publishes service events to Kafka.
//
// Publishing is best-effort: the search pipeline fires events after the
// response is computed, failures are logged and counted, and a broker outage
// never affects a caller.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// TopicSearchCompleted is the default topic for search completion events.
const TopicSearchCompleted = "search.completed"

// SearchCompleted is emitted after an aggregate search finishes.
type SearchCompleted struct {
	// RequestID identifies the search request.
	RequestID string `json:"request_id"`

	// Query is the caller's original query.
	Query string `json:"query"`

	// EnhancedQuery is the query actually sent to the sources.
	EnhancedQuery string `json:"enhanced_query"`

	// SourcesUsed lists the sources that were dispatched.
	SourcesUsed []string `json:"sources_used"`

	// PerSourceCounts maps source name to the number of papers it returned.
	PerSourceCounts map[string]int `json:"per_source_counts"`

	// Total is the number of papers in the final response.
	Total int `json:"total"`

	// DurationMS is the end-to-end search duration in milliseconds.
	DurationMS int64 `json:"duration_ms"`

	// OccurredAt is when the search completed.
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher publishes service events.
type Publisher interface {
	// PublishSearchCompleted publishes a search completion event.
	PublishSearchCompleted(ctx context.Context, event SearchCompleted) error

	// Close releases the publisher's resources.
	Close() error
}

// Config holds Kafka publisher configuration.
type Config struct {
	// Brokers is the list of Kafka broker addresses.
	Brokers []string

	// Topic is the topic for search completion events.
	Topic string

	// WriteTimeout bounds a single publish.
	WriteTimeout time.Duration
}

// applyDefaults sets default values for unset configuration fields.
func (c *Config) applyDefaults() {
	if c.Topic == "" {
		c.Topic = TopicSearchCompleted
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
}

// KafkaPublisher publishes events to Kafka using segmentio/kafka-go.
// It is safe for concurrent use.
type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
	logger zerolog.Logger
}

// Compile-time check that KafkaPublisher implements Publisher.
var _ Publisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a publisher writing to the configured brokers.
func NewKafkaPublisher(cfg Config, logger zerolog.Logger) *KafkaPublisher {
	cfg.applyDefaults()

	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.LeastBytes{},
			WriteTimeout: cfg.WriteTimeout,
			RequiredAcks: kafka.RequireOne,
		},
		topic:  cfg.Topic,
		logger: logger.With().Str("component", "events").Logger(),
	}
}

// PublishSearchCompleted publishes the event keyed by request ID.
func (p *KafkaPublisher) PublishSearchCompleted(ctx context.Context, event SearchCompleted) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling search.completed event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.RequestID),
		Value: value,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publishing to %s: %w", p.topic, err)
	}

	p.logger.Debug().
		Str("request_id", event.RequestID).
		Int("total", event.Total).
		Msg("search.completed event published")

	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher discards all events. Used when event publishing is disabled.
type NopPublisher struct{}

// Compile-time check that NopPublisher implements Publisher.
var _ Publisher = (*NopPublisher)(nil)

// PublishSearchCompleted discards the event.
func (NopPublisher) PublishSearchCompleted(context.Context, SearchCompleted) error { return nil }

// Close is a no-op.
func (NopPublisher) Close() error { return nil }
