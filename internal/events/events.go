package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a notification for logging.
type Kind string

const (
	KindTaskCreated Kind = "task.created"
	KindTaskUpdated Kind = "task.updated"
	KindTaskDeleted Kind = "task.deleted"
	KindClient      Kind = "client.notify"
)

// Notification is a human-readable broadcast message. Only Message is sent
// over the wire.
type Notification struct {
	ID        uuid.UUID `json:"-"`
	Kind      Kind      `json:"-"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"-"`
}

// Publisher accepts notifications for broadcast. Implementations must not block.
type Publisher interface {
	Publish(ctx context.Context, n Notification)
}

func newNotification(kind Kind, message string) Notification {
	return Notification{
		ID:        uuid.New(),
		Kind:      kind,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
}

// TaskCreated announces a new task.
func TaskCreated(title string) Notification {
	return newNotification(KindTaskCreated, "🆕 Task created: "+title)
}

// TaskUpdated announces a successful task update.
func TaskUpdated(title string) Notification {
	return newNotification(KindTaskUpdated, "✏️ Task updated: "+title)
}

// TaskDeleted announces a task removal.
func TaskDeleted(title string) Notification {
	return newNotification(KindTaskDeleted, "❌ Task deleted: "+title)
}

// ClientNotice wraps a message published by a connected client.
func ClientNotice(message string) Notification {
	return newNotification(KindClient, "🔔 "+message)
}
