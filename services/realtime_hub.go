package services

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"macrolog/models"
)

type WSClient struct {
	Conn *websocket.Conn
}

// RealtimeHub pushes notices to connected UI clients over websocket.
type RealtimeHub struct {
	mu      sync.RWMutex
	clients map[*WSClient]struct{}
}

func NewRealtimeHub() *RealtimeHub {
	return &RealtimeHub{clients: make(map[*WSClient]struct{})}
}

func (h *RealtimeHub) Register(c *WSClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *RealtimeHub) Unregister(c *WSClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	_ = c.Conn.Close()
}

// Notify broadcasts a notice to every connected client. Write errors are
// ignored; the read loop tears the client down.
func (h *RealtimeHub) Notify(n models.Notice) {
	msg, _ := json.Marshal(map[string]any{
		"kind":   "notice",
		"notice": n,
	})
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		_ = c.Conn.WriteMessage(websocket.TextMessage, msg)
	}
}
