// Package stream fans plan-list updates out to websocket consumers.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"tradeplan/internal/models"
)

// HubConfig holds configuration for the plan feed hub.
type HubConfig struct {
	// SendBuffer is the size of each client's outbound frame buffer.
	SendBuffer int
	// WriteTimeout bounds a single frame write to a client.
	WriteTimeout time.Duration
	// PingInterval is how often idle clients are pinged.
	PingInterval time.Duration
}

// DefaultHubConfig returns the default hub configuration.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		SendBuffer:   8,
		WriteTimeout: 5 * time.Second,
		PingInterval: 30 * time.Second,
	}
}

// Frame is one message on the plan feed: the full sorted plan list as of
// the latest change. Consumers replace their view wholesale; frames are
// never deltas.
type Frame struct {
	Type  string        `json:"type"`
	Plans []models.Plan `json:"plans"`
	At    time.Time     `json:"at"`
}

// Hub accepts websocket consumers and broadcasts every plan-list change
// to all of them. Slow consumers get dropped rather than blocking the
// broadcast.
type Hub struct {
	config   HubConfig
	logger   zerolog.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	last    []byte
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

// NewHub creates a plan feed hub with default configuration.
func NewHub(logger zerolog.Logger) *Hub {
	return NewHubWithConfig(logger, DefaultHubConfig())
}

// NewHubWithConfig creates a plan feed hub with custom configuration.
func NewHubWithConfig(logger zerolog.Logger, config HubConfig) *Hub {
	defaults := DefaultHubConfig()
	if config.SendBuffer <= 0 {
		config.SendBuffer = defaults.SendBuffer
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = defaults.WriteTimeout
	}
	if config.PingInterval <= 0 {
		config.PingInterval = defaults.PingInterval
	}

	return &Hub{
		config: config,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Broadcast sends the plan list to every connected consumer and retains
// it as the greeting frame for consumers that connect later.
func (h *Hub) Broadcast(plans []models.Plan) {
	frame := Frame{Type: "plans", Plans: plans, At: time.Now().UTC()}
	data, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode plan frame")
		return
	}

	// Sends happen under the lock so a concurrent drop can never close a
	// channel this loop is about to use.
	h.mu.Lock()
	h.last = data
	var stalled []*client
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Full buffer means the consumer stopped reading.
			stalled = append(stalled, c)
		}
	}
	h.mu.Unlock()

	for _, c := range stalled {
		h.drop(c)
	}
}

// ServeHTTP upgrades the request and streams plan frames until the client
// disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("Websocket upgrade failed")
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, h.config.SendBuffer),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.send <- h.last
	}
	h.mu.Unlock()

	h.logger.Debug().Str("remote", r.RemoteAddr).Msg("Plan feed consumer connected")

	go h.writePump(c)
	go h.readPump(c)
}

// writePump drains the client's send channel onto the wire.
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.config.PingInterval)
	defer ticker.Stop()
	defer h.drop(c)

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(h.config.WriteTimeout))
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound messages; the feed is one-way. It exists to
// notice disconnects and answer close handshakes.
func (h *Hub) readPump(c *client) {
	defer h.drop(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()

	// Close strictly after the map removal so broadcasts never hit a
	// closed channel.
	c.once.Do(func() {
		c.conn.Close()
		close(c.send)
	})
}

// ClientCount reports the number of connected consumers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects all consumers and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for _, c := range targets {
		c.once.Do(func() {
			c.conn.Close()
			close(c.send)
		})
	}
}

// Server wraps the hub in its own HTTP listener. The feed lives on a
// dedicated listener because the upgrade takes over the raw connection.
type Server struct {
	hub  *Hub
	http *http.Server
}

// NewServer mounts the hub at /ws/plans on the given address.
func NewServer(hub *Hub, addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/ws/plans", hub)

	return &Server{
		hub: hub,
		http: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// ListenAndServe blocks serving the feed until Shutdown.
func (s *Server) ListenAndServe() error {
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the listener and disconnects all consumers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.http.Shutdown(ctx)
}
