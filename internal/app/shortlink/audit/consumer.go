package audit

import (
	"context"
	"log/slog"
	"time"

	"edgelink.local/internal/app/shortlink"
)

// Consumer drains a ChannelPublisher into a Sink in batches.
type Consumer struct {
	events    <-chan shortlink.LinkCreated
	sink      Sink
	batchSize int
	interval  time.Duration
}

func NewConsumer(publisher *ChannelPublisher, sink Sink) *Consumer {
	return &Consumer{
		events:    publisher.Events(),
		sink:      sink,
		batchSize: 100,
		interval:  time.Second,
	}
}

// Run blocks until ctx ends or the publisher is closed, flushing what is left.
func (c *Consumer) Run(ctx context.Context) {
	runBatches(ctx, c.events, c.sink, c.batchSize, c.interval)
}

func runBatches(ctx context.Context, events <-chan shortlink.LinkCreated, sink Sink, batchSize int, interval time.Duration) {
	batch := make([]shortlink.LinkCreated, 0, batchSize)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flush(sink, batch)
			return
		case event, ok := <-events:
			if !ok {
				flush(sink, batch)
				return
			}
			batch = append(batch, event)
			if len(batch) >= batchSize {
				flush(sink, batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				flush(sink, batch)
				batch = batch[:0]
			}
		}
	}
}

func flush(sink Sink, batch []shortlink.LinkCreated) {
	if len(batch) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sink.Write(ctx, batch); err != nil {
		slog.Error("audit: flush failed", "count", len(batch), "err", err)
		return
	}
	slog.Debug("audit: flushed", "count", len(batch))
}
