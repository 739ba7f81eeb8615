package events

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, sub *Subscription) Notification {
	t.Helper()
	select {
	case n, ok := <-sub.C():
		require.True(t, ok, "subscription closed unexpectedly")
		return n
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification")
		return Notification{}
	}
}

func TestNotificationMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n    Notification
		kind Kind
		want string
	}{
		{n: TaskCreated("Write docs"), kind: KindTaskCreated, want: "🆕 Task created: Write docs"},
		{n: TaskUpdated("Write docs"), kind: KindTaskUpdated, want: "✏️ Task updated: Write docs"},
		{n: TaskDeleted("Write docs"), kind: KindTaskDeleted, want: "❌ Task deleted: Write docs"},
		{n: ClientNotice("standup in 5"), kind: KindClient, want: "🔔 standup in 5"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.n.Message)
		assert.Equal(t, tt.kind, tt.n.Kind)
		assert.NotEmpty(t, tt.n.ID)
		assert.False(t, tt.n.CreatedAt.IsZero())
	}
}

func TestHubFanOut(t *testing.T) {
	t.Parallel()

	hub := NewHub(4, nil)
	a := hub.Subscribe()
	b := hub.Subscribe()
	assert.Equal(t, 2, hub.SubscriberCount())

	hub.Publish(context.Background(), TaskCreated("one"))

	assert.Equal(t, "🆕 Task created: one", receive(t, a).Message)
	assert.Equal(t, "🆕 Task created: one", receive(t, b).Message)
}

func TestHubLateSubscriberMissesEarlierMessages(t *testing.T) {
	t.Parallel()

	hub := NewHub(4, nil)
	hub.Publish(context.Background(), TaskCreated("before"))

	sub := hub.Subscribe()
	hub.Publish(context.Background(), TaskCreated("after"))

	assert.Equal(t, "🆕 Task created: after", receive(t, sub).Message)
	assert.Empty(t, sub.C())
}

func TestHubSlowSubscriberDoesNotBlock(t *testing.T) {
	t.Parallel()

	hub := NewHub(2, nil)
	slow := hub.Subscribe()
	fast := hub.Subscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5; i++ {
			hub.Publish(context.Background(), TaskUpdated("t"))
			// drain fast so only the slow subscriber overflows
			<-fast.C()
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	assert.Len(t, slow.C(), 2)
	assert.Equal(t, uint64(3), slow.Dropped())
	assert.Zero(t, fast.Dropped())
}

func TestSubscriptionClose(t *testing.T) {
	t.Parallel()

	hub := NewHub(1, nil)
	sub := hub.Subscribe()
	sub.Close()
	sub.Close()

	_, ok := <-sub.C()
	assert.False(t, ok)
	assert.Zero(t, hub.SubscriberCount())

	hub.Publish(context.Background(), TaskDeleted("gone"))
}

func TestHubClose(t *testing.T) {
	t.Parallel()

	hub := NewHub(0, nil)
	sub := hub.Subscribe()
	hub.Close()
	hub.Close()

	_, ok := <-sub.C()
	assert.False(t, ok)

	late := hub.Subscribe()
	_, ok = <-late.C()
	assert.False(t, ok, "subscribing to a closed hub yields a closed channel")

	hub.Publish(context.Background(), TaskCreated("ignored"))
	sub.Close()
}

func TestHubConcurrentPublishers(t *testing.T) {
	t.Parallel()

	const publishers, perPublisher = 8, 25
	hub := NewHub(publishers*perPublisher, nil)
	sub := hub.Subscribe()

	var wg sync.WaitGroup
	for p := 0; p < publishers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perPublisher; i++ {
				hub.Publish(context.Background(), ClientNotice("ping"))
			}
		}()
	}
	wg.Wait()

	assert.Len(t, sub.C(), publishers*perPublisher)
	assert.Zero(t, sub.Dropped())

	n := receive(t, sub)
	assert.True(t, strings.HasPrefix(n.Message, "🔔 "))
}
