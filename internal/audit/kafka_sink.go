package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"securebank/internal/models"
)

// MessageProducer is satisfied by client.KafkaProducer.
type MessageProducer interface {
	ProduceMessage(ctx context.Context, topic string, key, value []byte, headers map[string]string) error
}

// KafkaSink publishes each entry as a JSON message keyed by username, so one
// user's events stay ordered within a partition.
type KafkaSink struct {
	producer MessageProducer
	topic    string
}

func NewKafkaSink(producer MessageProducer, topic string) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Publish(ctx context.Context, entry models.SecurityLogEntry) error {
	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal security event: %w", err)
	}

	headers := map[string]string{
		"event_type": string(entry.EventType),
		"event_id":   entry.ID,
	}

	if err := s.producer.ProduceMessage(ctx, s.topic, []byte(entry.Username), value, headers); err != nil {
		return fmt.Errorf("kafka publish: %w", err)
	}
	return nil
}
