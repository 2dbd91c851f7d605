package web

import (
	"net/http"
	"sync"
	"time"

	"ammonit/internal/live"
	"ammonit/internal/telemetry"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// DisconnectCounter is broadcast to the remaining clients when one leaves.
const DisconnectCounter = -1

type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

type hub struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

func newHub() *hub {
	return &hub{clients: map[*wsClient]struct{}{}}
}

func (h *hub) add(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *hub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

func (h *hub) snapshot() []*wsClient {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c)
	}
	return out
}

func (h *hub) broadcast(v any) {
	for _, c := range h.snapshot() {
		if err := c.send(v); err != nil {
			telemetry.LogDebug("Broadcast to counter client failed", "error", err)
		}
	}
}

func (h *hub) closeAll() {
	for _, c := range h.snapshot() {
		c.conn.Close()
	}
}

func (h *hub) size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// handleCounter streams an incrementing counter, starting at 1, to each
// client every tick. When a client goes away the others receive -1.
func (s *Server) handleCounter(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		telemetry.LogWarn("Counter upgrade failed", "error", err)
		return
	}

	c := &wsClient{conn: conn}
	s.hub.add(c)
	telemetry.LogInfo("Counter client connected", "remote", r.RemoteAddr, "clients", s.hub.size())
	defer func() {
		s.hub.remove(c)
		conn.Close()
		s.hub.broadcast(live.CounterMessage{Counter: DisconnectCounter})
		telemetry.LogInfo("Counter client disconnected", "remote", r.RemoteAddr)
	}()

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for i := 1; ; i++ {
		if err := c.send(live.CounterMessage{Counter: i}); err != nil {
			return
		}
		select {
		case <-ticker.C:
		case <-gone:
			return
		case <-s.done:
			return
		}
	}
}
