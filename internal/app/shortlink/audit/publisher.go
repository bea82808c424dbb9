// Package audit records every allocated link outside the request path.
package audit

import (
	"sync"

	"edgelink.local/internal/app/shortlink"
	"edgelink.local/internal/platform/metrics"
)

// ChannelPublisher buffers events for an in-process Consumer.
// When the buffer is full the event is dropped; allocation never waits on audit.
type ChannelPublisher struct {
	mu     sync.RWMutex
	ch     chan shortlink.LinkCreated
	closed bool
}

func NewChannelPublisher(bufferSize int) *ChannelPublisher {
	return &ChannelPublisher{ch: make(chan shortlink.LinkCreated, bufferSize)}
}

func (p *ChannelPublisher) Publish(event shortlink.LinkCreated) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		metrics.AuditEventsDropped.Inc()
		return
	}
	select {
	case p.ch <- event:
	default:
		metrics.AuditEventsDropped.Inc()
	}
}

func (p *ChannelPublisher) Events() <-chan shortlink.LinkCreated {
	return p.ch
}

func (p *ChannelPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.ch)
}
