package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"edgelink.local/internal/app/shortlink"
	"edgelink.local/internal/platform/metrics"
	"github.com/segmentio/kafka-go"
)

// KafkaPublisher ships events to a topic, keyed by code.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
			Async:    true,
			Completion: func(messages []kafka.Message, err error) {
				if err != nil {
					metrics.AuditEventsDropped.Add(float64(len(messages)))
					slog.Error("audit: kafka delivery failed", "count", len(messages), "err", err)
				}
			},
		},
	}
}

func (k *KafkaPublisher) Publish(event shortlink.LinkCreated) {
	data, err := json.Marshal(event)
	if err != nil {
		metrics.AuditEventsDropped.Inc()
		return
	}
	if err := k.writer.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(event.Code),
		Value: data,
	}); err != nil {
		metrics.AuditEventsDropped.Inc()
		slog.Error("audit: kafka write failed", "code", event.Code, "err", err)
	}
}

func (k *KafkaPublisher) Close() {
	if err := k.writer.Close(); err != nil {
		slog.Error("audit: kafka writer close failed", "err", err)
	}
}
