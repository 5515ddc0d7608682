package repository

import (
	"context"
	"fmt"

	"SmartTrade/internal/domain/models"
	"SmartTrade/internal/domain/repository"
	pkgkafka "SmartTrade/pkg/kafka"
)

// KafkaDecisionPublisher streams finished decisions to a Kafka topic,
// keyed by symbol so per-symbol ordering is preserved.
type KafkaDecisionPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaDecisionPublisher(producer *pkgkafka.Producer, topic string) repository.DecisionPublisher {
	return &KafkaDecisionPublisher{producer: producer, topic: topic}
}

func (p *KafkaDecisionPublisher) PublishDecisions(ctx context.Context, decisions []models.Decision) error {
	if len(decisions) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, 0, len(decisions))
	for _, d := range decisions {
		msgs = append(msgs, pkgkafka.Message{Key: []byte(d.Symbol), Value: d})
	}
	if err := p.producer.PublishBatch(ctx, p.topic, msgs); err != nil {
		return fmt.Errorf("publish decisions: %w", err)
	}
	return nil
}

func (p *KafkaDecisionPublisher) Close() error {
	return p.producer.Close()
}
