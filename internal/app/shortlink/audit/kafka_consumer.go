package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"edgelink.local/internal/app/shortlink"
	"github.com/segmentio/kafka-go"
)

// KafkaConsumer reads LinkCreated events from a topic into a Sink.
type KafkaConsumer struct {
	reader    *kafka.Reader
	sink      Sink
	batchSize int
	interval  time.Duration
}

func NewKafkaConsumer(brokers []string, topic string, sink Sink) *KafkaConsumer {
	return &KafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  "link-audit-consumer",
			MinBytes: 1,
			MaxBytes: 10e6,
		}),
		sink:      sink,
		batchSize: 100,
		interval:  time.Second,
	}
}

func (k *KafkaConsumer) Run(ctx context.Context) {
	events := make(chan shortlink.LinkCreated, k.batchSize)

	go func() {
		defer close(events)
		for {
			msg, err := k.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Error("audit: kafka read failed", "err", err)
				time.Sleep(500 * time.Millisecond)
				continue
			}
			var event shortlink.LinkCreated
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				slog.Error("audit: decode event failed", "offset", msg.Offset, "err", err)
				continue
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	runBatches(ctx, events, k.sink, k.batchSize, k.interval)
}

func (k *KafkaConsumer) Close() {
	k.reader.Close()
}
