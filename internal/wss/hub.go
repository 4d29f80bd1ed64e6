// Package wss pushes live feed events (lifecycle transitions,
// accepted solves) to connected dashboard clients.
package wss

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ctfquest07/ctf-server1-sub000/internal/model"
)

type Hub struct {
	mu       sync.RWMutex
	wmu      sync.Mutex // serializes writes, gorilla conns allow one writer
	clients  map[*websocket.Conn]bool
	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Serve upgrades the request and keeps the connection registered until
// the peer goes away. The read loop only drains control frames; the
// feed is one-way.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends the event to every connected client. Fire and
// forget: a failed write drops that client, nothing is retried.
func (h *Hub) Broadcast(event model.FeedEvent) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	h.wmu.Lock()
	defer h.wmu.Unlock()
	for _, conn := range conns {
		if err := conn.WriteJSON(event); err != nil {
			h.remove(conn)
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[conn] {
		conn.Close()
		delete(h.clients, conn)
	}
}
