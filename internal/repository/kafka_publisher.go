package repository

import (
	"context"
	"fmt"

	"StressPulse/internal/domain/models"
	domrepo "StressPulse/internal/domain/repository"
	pkgkafka "StressPulse/pkg/kafka"
)

// KafkaPublisher emits stress points and findings to a single topic, keyed
// by event kind plus indicator code so per-indicator ordering holds.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

type stressPointEvent struct {
	Kind  string                  `json:"kind"`
	Point models.StressIndexPoint `json:"point"`
}

type findingEvent struct {
	Kind    string         `json:"kind"`
	Finding models.Finding `json:"finding"`
}

func (p *KafkaPublisher) PublishStressPoint(ctx context.Context, point models.StressIndexPoint) error {
	key := []byte("stress_point")
	if err := p.producer.Publish(ctx, p.topic, key, stressPointEvent{Kind: "stress_point", Point: point}); err != nil {
		return fmt.Errorf("publish stress point: %w", err)
	}
	return nil
}

// PublishFindings emits ERROR-severity findings only; lower severities are
// recorded in the feature store but carry no alerting value downstream.
func (p *KafkaPublisher) PublishFindings(ctx context.Context, findings []models.Finding) error {
	msgs := make([]pkgkafka.Message, 0, len(findings))
	for _, f := range findings {
		if f.Severity != models.SeverityError {
			continue
		}
		msgs = append(msgs, pkgkafka.Message{
			Key:   []byte("finding:" + f.IndicatorCode),
			Value: findingEvent{Kind: "finding", Finding: f},
		})
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := p.producer.PublishBatch(ctx, p.topic, msgs); err != nil {
		return fmt.Errorf("publish findings: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher is installed when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishStressPoint(context.Context, models.StressIndexPoint) error { return nil }
func (NoopPublisher) PublishFindings(context.Context, []models.Finding) error           { return nil }
func (NoopPublisher) Close() error                                                      { return nil }

var (
	_ domrepo.EventPublisher = (*KafkaPublisher)(nil)
	_ domrepo.EventPublisher = NoopPublisher{}
)
