// Package kafka publishes refresh snapshots to a Kafka topic so downstream
// consumers can track waiting times without polling the feed themselves.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/ae-wait-service/internal/config"
	"github.com/couchcryptid/ae-wait-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Header keys carried on every snapshot message.
const (
	HeaderSnapshotID = "snapshot_id"
	HeaderFetchedAt  = "fetched_at"
	HeaderUpdateTime = "update_time"
)

// Publisher produces one message per hospital for each snapshot.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured snapshot topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSnapshotTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (p *Publisher) Name() string { return "kafka" }

// PublishSnapshot writes the whole snapshot in a single WriteMessages call.
// Messages are keyed by hospital name so each hospital stays on one partition.
func (p *Publisher) PublishSnapshot(ctx context.Context, snap domain.Snapshot) error {
	msgs, err := snapshotMessages(snap)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish snapshot %s: %w", snap.ID, err)
	}
	p.logger.Debug("snapshot published",
		"snapshot_id", snap.ID.String(),
		"messages", len(msgs),
	)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func snapshotMessages(snap domain.Snapshot) ([]kafkago.Message, error) {
	headers := []kafkago.Header{
		{Key: HeaderSnapshotID, Value: []byte(snap.ID.String())},
		{Key: HeaderFetchedAt, Value: []byte(snap.FetchedAt.UTC().Format(time.RFC3339))},
		{Key: HeaderUpdateTime, Value: []byte(snap.UpdateTime)},
	}

	msgs := make([]kafkago.Message, len(snap.Hospitals))
	for i := range snap.Hospitals {
		data, err := json.Marshal(snap.Hospitals[i])
		if err != nil {
			return nil, fmt.Errorf("serialize hospital %q: %w", snap.Hospitals[i].HospitalName, err)
		}
		msgs[i] = kafkago.Message{
			Key:     []byte(snap.Hospitals[i].HospitalName),
			Value:   data,
			Headers: headers,
		}
	}
	return msgs, nil
}
