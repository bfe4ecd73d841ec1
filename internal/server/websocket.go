package server

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/loomknot/loom/internal/engine"
)

// Hub fans link events out to connected websocket clients. Slow clients are
// dropped rather than allowed to block the linker.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan engine.LinkEvent
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]chan engine.LinkEvent)}
}

// Broadcast queues an event for every connected client. Non-blocking: a
// client with a full queue misses the event.
func (h *Hub) Broadcast(event engine.LinkEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.clients {
		select {
		case ch <- event:
		default:
		}
	}
}

func (h *Hub) add(conn *websocket.Conn) chan engine.LinkEvent {
	ch := make(chan engine.LinkEvent, 32)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()
	return ch
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

// handleWebSocket upgrades the connection and streams link events until the
// client disconnects.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("Server: websocket accept failed: %v", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	events := s.hub.add(conn)
	defer s.hub.remove(conn)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-events:
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := wsjson.Write(writeCtx, conn, event)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
