package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/taskboard-api/internal/events"
)

// RecordingPublisher implements events.Publisher by recording every notification.
type RecordingPublisher struct {
	mu    sync.Mutex
	items []events.Notification
}

var _ events.Publisher = (*RecordingPublisher)(nil)

// Publish implements events.Publisher.
func (p *RecordingPublisher) Publish(ctx context.Context, n events.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = append(p.items, n)
}

// Messages returns the recorded messages in publish order.
func (p *RecordingPublisher) Messages() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.items))
	for i, n := range p.items {
		out[i] = n.Message
	}
	return out
}

// Kinds returns the recorded notification kinds in publish order.
func (p *RecordingPublisher) Kinds() []events.Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Kind, len(p.items))
	for i, n := range p.items {
		out[i] = n.Kind
	}
	return out
}
