// Package stream fans simulation events out to websocket subscribers:
// trades and book snapshots after each step batch.
package stream

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Message is the envelope pushed to subscribers.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

const subscriberBuffer = 64

// Hub tracks subscribers and broadcasts messages to them. Slow
// subscribers drop messages rather than stalling the broadcaster.
type Hub struct {
	mu       sync.RWMutex
	subs     map[string]chan Message
	upgrader websocket.Upgrader
	log      *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs: make(map[string]chan Message),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log: logger.With("component", "stream"),
	}
}

// Subscribe registers a new subscriber and returns its id and channel.
func (h *Hub) Subscribe() (string, <-chan Message) {
	id := uuid.New().String()
	ch := make(chan Message, subscriberBuffer)

	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

// Broadcast delivers a message to every subscriber without blocking.
func (h *Hub) Broadcast(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}

// SubscriberCount returns the number of live subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// ServeWS upgrades the request to a websocket and streams broadcast
// messages to the client until it disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	id, ch := h.Subscribe()
	h.log.Info("subscriber connected", "subscriber_id", id)

	defer func() {
		h.Unsubscribe(id)
		conn.Close()
		h.log.Info("subscriber disconnected", "subscriber_id", id)
	}()

	// Drain the read side so close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for msg := range ch {
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
