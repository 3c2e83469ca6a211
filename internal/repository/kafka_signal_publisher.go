package repository

import (
	"context"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/domain/repository"
	pkgkafka "CoinPulse/pkg/kafka"
)

// KafkaSignalPublisher implements SignalPublisher for Kafka. Signals are
// keyed by market so per-market ordering is preserved within a partition.
type KafkaSignalPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaSignalPublisher creates a Kafka signal publisher.
func NewKafkaSignalPublisher(producer *pkgkafka.Producer, topic string) repository.SignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic}
}

func (p *KafkaSignalPublisher) Publish(ctx context.Context, s *models.Signal) error {
	return p.producer.Publish(ctx, p.topic, []byte(s.Market), map[string]interface{}{
		"market":       s.Market,
		"type":         string(s.Type),
		"strength":     s.Strength,
		"reasoning":    s.Reasoning,
		"degraded":     s.Degraded,
		"generated_at": s.GeneratedAt.Unix(),
	})
}

func (p *KafkaSignalPublisher) Close() error {
	return p.producer.Close()
}
