package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(userID uint) *Client {
	return &Client{UserID: userID, Role: "CUSTOMER", Send: make(chan []byte, 4)}
}

func TestBroadcastToUserReachesAllConnections(t *testing.T) {
	hub := NewHub()
	c1 := newTestClient(1)
	c2 := newTestClient(1)
	other := newTestClient(2)
	hub.Register(c1)
	hub.Register(c2)
	hub.Register(other)

	hub.BroadcastToUser(1, Event{Type: "wallet.updated", Table: "wallets"})

	for _, c := range []*Client{c1, c2} {
		select {
		case msg := <-c.Send:
			var ev Event
			require.NoError(t, json.Unmarshal(msg, &ev))
			assert.Equal(t, "wallet.updated", ev.Type)
		default:
			t.Fatal("expected event for user 1")
		}
	}
	select {
	case <-other.Send:
		t.Fatal("user 2 should not receive user 1's event")
	default:
	}
}

func TestBroadcastSkipsSlowConsumer(t *testing.T) {
	hub := NewHub()
	slow := &Client{UserID: 1, Send: make(chan []byte)} // unbuffered, nobody reading
	hub.Register(slow)

	// Must return instead of blocking on the full channel.
	hub.BroadcastToUser(1, Event{Type: "notification.created"})
}

func TestCloseUnregisters(t *testing.T) {
	hub := NewHub()
	c := newTestClient(5)
	hub.Register(c)
	assert.Equal(t, 1, hub.ClientCount())

	c.Close()
	assert.Equal(t, 0, hub.ClientCount())
	// Double close is safe.
	c.Close()
}

func TestBroadcastAll(t *testing.T) {
	hub := NewHub()
	c1 := newTestClient(1)
	c2 := newTestClient(2)
	hub.Register(c1)
	hub.Register(c2)

	hub.BroadcastAll(Event{Type: "connected"})

	for _, c := range []*Client{c1, c2} {
		select {
		case <-c.Send:
		default:
			t.Fatalf("client %d missed broadcast", c.UserID)
		}
	}
}
