package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"carebridge/internal/platform/kafka"
)

// Publisher delivers audit events to a durable sink.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// KafkaPublisher publishes audit events to the audit topic, keyed by family
// id so per-family history stays ordered within a partition.
type KafkaPublisher struct {
	producer *kafka.Producer
}

func NewKafkaPublisher(producer *kafka.Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

func (p *KafkaPublisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	return p.producer.Publish(ctx, []byte(event.FamilyID), payload)
}
