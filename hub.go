package main

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const hubIdlePingInterval = 30 * time.Second

type hubPing struct {
	Type string `json:"type"`
}

// Hub fans search analytics out to websocket subscribers. Slow or dead
// clients are dropped on write error. When no analytics flow for a
// while, an idle ping keeps the connections alive.
type Hub struct {
	mu        sync.Mutex
	clients   map[*websocket.Conn]struct{}
	lastWrite time.Time
	done      chan struct{}
	log       zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	h := &Hub{
		clients:   make(map[*websocket.Conn]struct{}),
		lastWrite: time.Now(),
		done:      make(chan struct{}),
		log:       log,
	}
	go h.heartbeatLoop()
	return h
}

func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Debug().Int("clients", n).Msg("analytics client connected")
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
	h.mu.Unlock()
}

func (h *Hub) Broadcast(v interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.writeAllLocked(v)
}

func (h *Hub) writeAllLocked(v interface{}) {
	for conn := range h.clients {
		if err := conn.WriteJSON(v); err != nil {
			h.log.Debug().Err(err).Msg("dropping analytics client")
			delete(h.clients, conn)
			conn.Close()
		}
	}
	h.lastWrite = time.Now()
}

// heartbeatLoop pings subscribers that have seen no traffic for a full
// idle interval, so intermediaries don't reap quiet connections.
func (h *Hub) heartbeatLoop() {
	ticker := time.NewTicker(hubIdlePingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.mu.Lock()
			if len(h.clients) > 0 && time.Since(h.lastWrite) >= hubIdlePingInterval {
				h.writeAllLocked(hubPing{Type: "ping"})
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) Close() {
	close(h.done)
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}
