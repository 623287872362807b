package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"formpulse/pkg/logger"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgSubscribed        MessageType = "subscribed"
	MsgResponseSubmitted MessageType = "response_submitted"
	MsgFormUpdated       MessageType = "form_updated"
	MsgFormDeleted       MessageType = "form_deleted"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Connection is one owner's live feed for a form
type Connection struct {
	FormID  string
	OwnerID string
	Send    chan []byte
	Hub     *Hub
}

// BroadcastMessage is a message to fan out to a form's subscribers
type BroadcastMessage struct {
	FormID  string
	Message *Message
}

// Hub manages WebSocket subscriptions per form. All map mutation happens on
// the run goroutine.
type Hub struct {
	forms map[string]map[*Connection]struct{}
	mu    sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	disconnect chan string
	done       chan struct{}
	closeOnce  sync.Once

	relay *relay // nil delivers in-process only
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		forms:      make(map[string]map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		disconnect: make(chan string),
		done:       make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.forms[conn.FormID] == nil {
				h.forms[conn.FormID] = make(map[*Connection]struct{})
			}
			h.forms[conn.FormID][conn] = struct{}{}
			h.mu.Unlock()
			logger.Log.Debug("live feed subscribed", zap.String("formId", conn.FormID), zap.String("ownerId", conn.OwnerID))

		case conn := <-h.unregister:
			h.mu.Lock()
			h.remove(conn)
			h.mu.Unlock()

		case formID := <-h.disconnect:
			h.mu.Lock()
			for conn := range h.forms[formID] {
				h.remove(conn)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Message)
			if err != nil {
				logger.Log.Error("live feed message encoding failed", zap.Error(err))
				continue
			}
			h.mu.RLock()
			for conn := range h.forms[msg.FormID] {
				select {
				case conn.Send <- data:
				default:
					// slow subscriber, drop
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			for _, conns := range h.forms {
				for conn := range conns {
					h.remove(conn)
				}
			}
			h.mu.Unlock()
			return
		}
	}
}

// remove must be called with mu held.
func (h *Hub) remove(conn *Connection) {
	conns, ok := h.forms[conn.FormID]
	if !ok {
		return
	}
	if _, ok := conns[conn]; !ok {
		return
	}
	delete(conns, conn)
	close(conn.Send)
	if len(conns) == 0 {
		delete(h.forms, conn.FormID)
	}
	logger.Log.Debug("live feed closed", zap.String("formId", conn.FormID), zap.String("ownerId", conn.OwnerID))
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		close(conn.Send)
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Subscribers counts the live feeds open for a form.
func (h *Hub) Subscribers(formID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.forms[formID])
}

// BroadcastToForm sends a message to every subscriber of a form (implements service.Broadcaster)
func (h *Hub) BroadcastToForm(formID string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Log.Error("live feed payload encoding failed", zap.String("type", msgType), zap.Error(err))
		return
	}
	msg := &Message{Type: MessageType(msgType), Payload: data}
	if h.relay != nil && h.relay.publish(envelope{FormID: formID, Message: msg}) {
		return
	}
	h.deliver(formID, msg)
}

// DisconnectForm closes every live feed of a form (implements service.Broadcaster)
func (h *Hub) DisconnectForm(formID string) {
	if h.relay != nil && h.relay.publish(envelope{FormID: formID, Disconnect: true}) {
		return
	}
	h.disconnectLocal(formID)
}

func (h *Hub) deliver(formID string, msg *Message) {
	select {
	case h.broadcast <- &BroadcastMessage{FormID: formID, Message: msg}:
	case <-h.done:
	}
}

func (h *Hub) disconnectLocal(formID string) {
	select {
	case h.disconnect <- formID:
	case <-h.done:
	}
}

// Close stops the hub and closes all connections.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		if h.relay != nil {
			h.relay.close()
		}
		close(h.done)
	})
}
