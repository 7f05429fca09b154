package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/tri-dashboard/internal/config"
	"github.com/couchcryptid/tri-dashboard/internal/domain"
)

// Publisher produces county summaries to a Kafka topic.
// It implements pipeline.SummaryPublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured summary topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaSummaryTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes and writes all summaries of one dataset in a single
// WriteMessages call. Summaries of the same county hash to the same partition.
func (p *Publisher) Publish(ctx context.Context, summaries []domain.CountySummary) error {
	if len(summaries) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(summaries))
	for i := range summaries {
		msg, err := serializeToMessage(summaries[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write county summaries: %w", err)
	}
	p.logger.Debug("county summaries published", "topic", p.writer.Topic, "count", len(msgs))
	return nil
}

// Close flushes pending writes and closes the producer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// SummaryKey identifies one county summary: variant|year|region|county.
func SummaryKey(s domain.CountySummary) string {
	return strings.Join([]string{s.Variant, fmt.Sprint(s.Year), s.Region, s.County}, "|")
}

// serializeToMessage marshals a CountySummary into a Kafka message.
func serializeToMessage(s domain.CountySummary) (kafkago.Message, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize county summary: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(SummaryKey(s)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "variant", Value: []byte(s.Variant)},
			{Key: "loaded_at", Value: []byte(s.LoadedAt.Format(time.RFC3339))},
		},
	}, nil
}
