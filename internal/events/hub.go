package events

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/phrazzld/taskboard-api/internal/platform/logger"
)

// DefaultBufferSize is used when NewHub is given a non-positive size.
const DefaultBufferSize = 16

// Hub is an in-memory broadcast channel with any number of publishers and
// subscribers.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uint64]*Subscription
	nextID      uint64
	bufferSize  int
	closed      bool
	logger      *slog.Logger
}

var _ Publisher = (*Hub)(nil)

// NewHub creates a hub whose subscribers buffer up to bufferSize messages.
func NewHub(bufferSize int, logger *slog.Logger) *Hub {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subscribers: make(map[uint64]*Subscription),
		bufferSize:  bufferSize,
		logger:      logger.With("component", "notification_hub"),
	}
}

// Subscription receives notifications published after it was created.
type Subscription struct {
	id      uint64
	ch      chan Notification
	hub     *Hub
	dropped atomic.Uint64
	once    sync.Once
}

// C is closed when the subscription is closed.
func (s *Subscription) C() <-chan Notification {
	return s.ch
}

// Dropped counts messages discarded because the buffer was full.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

// Close unsubscribes. It is safe to call more than once.
func (s *Subscription) Close() {
	s.hub.remove(s)
}

// Subscribe registers a new subscriber. On a closed hub the returned
// subscription's channel is already closed.
func (h *Hub) Subscribe() *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{
		id:  h.nextID,
		ch:  make(chan Notification, h.bufferSize),
		hub: h,
	}
	if h.closed {
		sub.once.Do(func() { close(sub.ch) })
		return sub
	}
	h.subscribers[sub.id] = sub
	h.logger.Debug("subscriber added",
		"subscriber_id", sub.id,
		"subscriber_count", len(h.subscribers))
	return sub
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subscribers[sub.id]; ok {
		delete(h.subscribers, sub.id)
		h.logger.Debug("subscriber removed",
			"subscriber_id", sub.id,
			"subscriber_count", len(h.subscribers))
	}
	sub.once.Do(func() { close(sub.ch) })
}

// Publish offers n to every subscriber without blocking.
func (h *Hub) Publish(ctx context.Context, n Notification) {
	log := logger.FromContextOrDefault(ctx, h.logger)

	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}

	delivered := 0
	for _, sub := range h.subscribers {
		select {
		case sub.ch <- n:
			delivered++
		default:
			total := sub.dropped.Add(1)
			log.Warn("dropping notification for slow subscriber",
				"subscriber_id", sub.id,
				"kind", n.Kind,
				"dropped_total", total)
		}
	}

	log.Debug("notification published",
		"kind", n.Kind,
		"notification_id", n.ID,
		"delivered", delivered,
		"subscriber_count", len(h.subscribers))
}

// SubscriberCount returns the number of live subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close ends every subscription and turns later publishes into no-ops.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subscribers {
		delete(h.subscribers, id)
		sub.once.Do(func() { close(sub.ch) })
	}
	h.logger.Info("notification hub closed")
}
