package stream

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSubscribeAndBroadcast(t *testing.T) {
	hub := newTestHub()

	id1, ch1 := hub.Subscribe()
	id2, ch2 := hub.Subscribe()
	assert.NotEqual(t, id1, id2)
	assert.Equal(t, 2, hub.SubscriberCount())

	hub.Broadcast(Message{Type: "trades", Data: "payload"})

	msg := <-ch1
	assert.Equal(t, "trades", msg.Type)
	msg = <-ch2
	assert.Equal(t, "trades", msg.Type)
}

func TestUnsubscribe(t *testing.T) {
	hub := newTestHub()

	id, ch := hub.Subscribe()
	hub.Unsubscribe(id)
	assert.Zero(t, hub.SubscriberCount())

	_, open := <-ch
	assert.False(t, open)

	// Double unsubscribe is a no-op.
	hub.Unsubscribe(id)
}

func TestBroadcast_DropsWhenSubscriberFull(t *testing.T) {
	hub := newTestHub()

	_, ch := hub.Subscribe()

	// Fill the buffer and keep going; Broadcast must never block.
	for i := 0; i < subscriberBuffer+10; i++ {
		hub.Broadcast(Message{Type: "book", Data: i})
	}

	require.Len(t, ch, subscriberBuffer)
	first := <-ch
	assert.Equal(t, 0, first.Data)
}
