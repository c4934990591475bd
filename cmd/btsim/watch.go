package main

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/zeusync/behave/internal/core/agent"
	"github.com/zeusync/behave/internal/core/observability/log"
)

// TickFrame is one agent's state after a driver tick, as streamed on /ws.
type TickFrame struct {
	Tick     uint64              `json:"tick"`
	Agent    string              `json:"agent"`
	State    string              `json:"state"`
	Branches []agent.BranchState `json:"branches"`
	Keys     []string            `json:"blackboard_keys"`
	Error    string              `json:"error,omitempty"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// watchHub fans frames out to websocket clients. Slow clients drop frames.
type watchHub struct {
	mu       sync.RWMutex
	clients  map[*wsClient]struct{}
	upgrader websocket.Upgrader
	logger   log.Log
}

func newWatchHub(logger log.Log) *watchHub {
	return &watchHub{
		clients:  make(map[*wsClient]struct{}),
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		logger:   logger,
	}
}

func (h *watchHub) add(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *watchHub) remove(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *watchHub) len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *watchHub) broadcast(b []byte) {
	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
		}
	}
	h.mu.RUnlock()
}

// publish encodes frame and broadcasts it.
func (h *watchHub) publish(frame TickFrame) {
	b, err := json.Marshal(frame)
	if err != nil {
		h.logger.Warn("encode tick frame", log.Error(err))
		return
	}
	h.broadcast(b)
}

// closeAll disconnects every client.
func (h *watchHub) closeAll() {
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *watchHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", log.Error(err))
		return
	}
	c := &wsClient{conn: conn, send: make(chan []byte, 64)}
	h.add(c)
	defer func() {
		h.remove(c)
		_ = conn.Close()
	}()

	// the feed is one-way; reading only detects the peer going away
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.remove(c)
				return
			}
		}
	}()

	for b := range c.send {
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			return
		}
	}
}
