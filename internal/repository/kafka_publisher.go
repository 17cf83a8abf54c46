package repository

import (
	"context"

	"ScoreFuse/internal/domain/models"
	domrepo "ScoreFuse/internal/domain/repository"
	pkgkafka "ScoreFuse/pkg/kafka"
)

// KafkaResultPublisher implements ResultPublisher for Kafka. Results are
// keyed by symbol so per-symbol ordering survives partitioning.
type KafkaResultPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaResultPublisher creates a Kafka result publisher.
func NewKafkaResultPublisher(producer *pkgkafka.Producer, topic string) domrepo.ResultPublisher {
	return &KafkaResultPublisher{producer: producer, topic: topic}
}

func (p *KafkaResultPublisher) Publish(ctx context.Context, res models.AggregationResult) error {
	return p.producer.Publish(ctx, p.topic, []byte(res.Symbol), res)
}

func (p *KafkaResultPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopResultPublisher is used when Kafka is disabled.
type NoopResultPublisher struct{}

func (NoopResultPublisher) Publish(ctx context.Context, res models.AggregationResult) error {
	return nil
}

func (NoopResultPublisher) Close() error { return nil }
