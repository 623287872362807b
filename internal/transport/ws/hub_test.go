package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func newConn(h *Hub, formID string) *Connection {
	return &Connection{FormID: formID, OwnerID: "owner-1", Send: make(chan []byte, 4), Hub: h}
}

func receive(t *testing.T, c *Connection) Message {
	t.Helper()
	select {
	case data, ok := <-c.Send:
		if !ok {
			t.Fatal("send channel closed")
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
	return Message{}
}

func waitClosed(t *testing.T, c *Connection) {
	t.Helper()
	select {
	case _, ok := <-c.Send:
		if ok {
			t.Fatal("unexpected message on a closed feed")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for close")
	}
}

func TestHubBroadcastToForm(t *testing.T) {
	h := NewHub()
	defer h.Close()

	a := newConn(h, "f1")
	b := newConn(h, "f1")
	other := newConn(h, "f2")
	h.Register(a)
	h.Register(b)
	h.Register(other)

	h.BroadcastToForm("f1", string(MsgResponseSubmitted), map[string]int{"responseCount": 3})

	for _, c := range []*Connection{a, b} {
		msg := receive(t, c)
		if msg.Type != MsgResponseSubmitted || string(msg.Payload) != `{"responseCount":3}` {
			t.Fatalf("unexpected message %s %s", msg.Type, msg.Payload)
		}
	}
	select {
	case data := <-other.Send:
		t.Fatalf("other form received %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnregisterAndDisconnect(t *testing.T) {
	h := NewHub()
	defer h.Close()

	a := newConn(h, "f1")
	b := newConn(h, "f1")
	h.Register(a)
	h.Register(b)

	h.Unregister(a)
	waitClosed(t, a)
	// unregistering twice is harmless
	h.Unregister(a)

	h.DisconnectForm("f1")
	waitClosed(t, b)
	if n := h.Subscribers("f1"); n != 0 {
		t.Fatalf("subscribers = %d", n)
	}
}

func TestHubClose(t *testing.T) {
	h := NewHub()
	a := newConn(h, "f1")
	h.Register(a)
	h.Close()
	waitClosed(t, a)

	// calls after close return instead of blocking
	h.BroadcastToForm("f1", "x", nil)
	h.DisconnectForm("f1")
	late := newConn(h, "f1")
	h.Register(late)
	waitClosed(t, late)
}

func TestRelayConsumeDeliversLocally(t *testing.T) {
	h := NewHub()
	defer h.Close()

	feed := newConn(h, "f1")
	h.Register(feed)

	ch := make(chan *redis.Message, 2)
	ch <- &redis.Message{Channel: FeedChannel, Payload: "not json"}
	ch <- &redis.Message{Channel: FeedChannel, Payload: `{"formId":"f1","message":{"type":"form_updated","payload":{"title":"New"}}}`}
	go h.consume(ch)

	msg := receive(t, feed)
	if msg.Type != MsgFormUpdated || string(msg.Payload) != `{"title":"New"}` {
		t.Fatalf("unexpected message %s %s", msg.Type, msg.Payload)
	}

	ch <- &redis.Message{Channel: FeedChannel, Payload: `{"formId":"f1","disconnect":true}`}
	close(ch)
	waitClosed(t, feed)
}

func TestRelayPublishFailureFallsBackToLocal(t *testing.T) {
	h := NewHub()
	defer h.Close()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	h.relay = &relay{client: client, pubsub: client.Subscribe(context.Background())}

	feed := newConn(h, "f1")
	h.Register(feed)

	h.BroadcastToForm("f1", string(MsgResponseSubmitted), map[string]int{"responseCount": 7})
	msg := receive(t, feed)
	if msg.Type != MsgResponseSubmitted || string(msg.Payload) != `{"responseCount":7}` {
		t.Fatalf("unexpected message %s %s", msg.Type, msg.Payload)
	}

	h.DisconnectForm("f1")
	waitClosed(t, feed)
}
