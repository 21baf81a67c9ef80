package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Hub tracks the WebSocket connections subscribed to each party's live feed.
type Hub struct {
	mu      sync.RWMutex
	parties map[uint]map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{parties: make(map[uint]map[*websocket.Conn]bool)}
}

// Register adds a connection to a party's subscriber set.
func (h *Hub) Register(partyID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.parties[partyID] == nil {
		h.parties[partyID] = make(map[*websocket.Conn]bool)
	}
	h.parties[partyID][conn] = true
}

// Unregister drops a connection, pruning the party entry when empty.
func (h *Hub) Unregister(partyID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.parties[partyID]; ok {
		delete(clients, conn)
		if len(clients) == 0 {
			delete(h.parties, partyID)
		}
	}
}

// BroadcastRefresh tells every subscriber of a party that its data changed.
// Failed connections are dropped.
func (h *Hub) BroadcastRefresh(partyID uint, title, body string) {
	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.parties[partyID]))
	for conn := range h.parties[partyID] {
		clients = append(clients, conn)
	}
	h.mu.RUnlock()

	for _, conn := range clients {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			slog.Warn("Failed to set write deadline for broadcast", "party_id", partyID, "error", err)
			continue
		}

		err := conn.WriteJSON(map[string]interface{}{
			"type":     "refresh",
			"party_id": partyID,
			"title":    title,
			"body":     body,
		})
		if err != nil {
			slog.Warn("Failed to broadcast to client", "party_id", partyID, "error", err)
			h.Unregister(partyID, conn)
			conn.Close()
		}
	}
}
