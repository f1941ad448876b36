package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestClient(hub *Hub, buffer int) *Client {
	return &Client{hub: hub, send: make(chan []byte, buffer)}
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub(zap.NewNop())
	client := newTestClient(hub, 1)

	hub.Register(client)
	assert.Equal(t, 1, hub.ClientCount())

	hub.Unregister(client)
	assert.Equal(t, 0, hub.ClientCount())

	// Unregistering twice must not panic on the closed channel.
	hub.Unregister(client)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	hub := NewHub(zap.NewNop())
	first := newTestClient(hub, 1)
	second := newTestClient(hub, 1)
	hub.Register(first)
	hub.Register(second)

	hub.Broadcast([]byte("reading"))

	assert.Equal(t, []byte("reading"), <-first.send)
	assert.Equal(t, []byte("reading"), <-second.send)
}

func TestHub_BroadcastSkipsFullClient(t *testing.T) {
	hub := NewHub(zap.NewNop())
	full := newTestClient(hub, 1)
	hub.Register(full)

	hub.Broadcast([]byte("one"))
	hub.Broadcast([]byte("two")) // buffer full, dropped

	assert.Equal(t, []byte("one"), <-full.send)
	select {
	case msg := <-full.send:
		t.Fatalf("expected dropped message, got %q", msg)
	default:
	}
}
