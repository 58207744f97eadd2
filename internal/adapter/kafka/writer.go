package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/wetland-risk-monitor/internal/config"
	"github.com/couchcryptid/wetland-risk-monitor/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher produces assessment reports to a Kafka topic.
// It implements monitor.Publisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured assessment topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes an available report and writes it keyed by site ID, so
// reports for one site stay ordered within a partition.
func (p *Publisher) Publish(ctx context.Context, report domain.Report) error {
	msg, err := serializeToMessage(report)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish assessment for %s: %w", report.Site.ID, err)
	}
	p.logger.Debug("assessment published", "site_id", report.Site.ID, "topic", p.writer.Topic)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals an available report into a Kafka message.
func serializeToMessage(report domain.Report) (kafkago.Message, error) {
	if !report.Available() {
		return kafkago.Message{}, errors.New("serialize report: report has no assessment")
	}
	data, err := json.Marshal(report)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize report: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(report.Site.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "site_id", Value: []byte(report.Site.ID)},
			{Key: "evaluated_at", Value: []byte(report.Assessment.EvaluatedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
