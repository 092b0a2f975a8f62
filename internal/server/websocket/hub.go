// Package websocket delivers feed events to WebSocket clients. Each client
// is attached to exactly one feed's relay for the lifetime of its
// connection.
package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/relay"
	"github.com/agentstation/relay/pkg/constants"
)

// Registrar resolves the relay that serves a named feed.
type Registrar interface {
	Relay(feed string) (relay.Relay, bool)
}

// Hub tracks WebSocket clients and tends their feed attachments.
type Hub struct {
	registrar  Registrar
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	stopped    chan struct{}
	mu         sync.RWMutex
	logger     *zerolog.Logger
}

// NewHub creates a hub that attaches clients through reg.
func NewHub(reg Registrar, logger *zerolog.Logger) *Hub {
	return &Hub{
		registrar:  reg,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, constants.RegistrationBuffer),
		unregister: make(chan *Client, constants.RegistrationBuffer),
		stopped:    make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the hub's main loop. Should be called in a goroutine.
// The hub runs until the context is cancelled, then detaches and
// releases every remaining client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			// Unblock read pumps still queueing registrations; anything
			// queued after this point is released by the select in
			// Register/Unregister instead.
			close(h.stopped)
			h.mu.Lock()
			for client := range h.clients {
				h.detach(client)
				close(client.done)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info().Msg("WebSocket hub shut down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()

			h.attach(client)
			h.logger.Info().
				Str("client_id", client.id).
				Str("feed", client.feed).
				Int("total_clients", total).
				Msg("WebSocket client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			_, known := h.clients[client]
			if known {
				delete(h.clients, client)
			}
			total := len(h.clients)
			h.mu.Unlock()
			if !known {
				continue
			}

			h.detach(client)
			close(client.done)
			h.logger.Info().
				Str("client_id", client.id).
				Str("feed", client.feed).
				Int("total_clients", total).
				Msg("WebSocket client disconnected")
		}
	}
}

// attach registers the client as a handler on its feed's relay and queues
// a greeting frame.
func (h *Hub) attach(client *Client) {
	rel, ok := h.registrar.Relay(client.feed)
	if !ok {
		// The HTTP handler validates the feed before upgrading, so an
		// unknown feed here means it raced a configuration change.
		h.logger.Warn().
			Str("client_id", client.id).
			Str("feed", client.feed).
			Msg("Feed vanished before attach")
		client.drop()
		return
	}

	if err := rel.Add(client, client.enqueue); err != nil {
		h.logger.Error().Err(err).
			Str("client_id", client.id).
			Str("feed", client.feed).
			Msg("Failed to attach WebSocket client")
		client.drop()
		return
	}

	greeting := Message{
		Feed:      client.feed,
		Type:      "connected",
		Timestamp: time.Now().UTC(),
		Data:      map[string]any{"message": "attached to feed " + client.feed},
	}
	select {
	case client.send <- greeting:
	default:
	}
}

// detach removes the client's handler from its feed's relay. Removing a
// key the relay no longer holds (the feed completed first) is a no-op.
func (h *Hub) detach(client *Client) {
	rel, ok := h.registrar.Relay(client.feed)
	if !ok {
		return
	}
	if err := rel.Remove(client); err != nil {
		h.logger.Error().Err(err).
			Str("client_id", client.id).
			Str("feed", client.feed).
			Msg("Failed to detach WebSocket client")
	}
}

// Register queues the client for attachment to its feed. After the hub has
// shut down the client is never attached, so there is nothing to queue.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.stopped:
	}
}

// Unregister queues the client for detachment. After the hub has shut down
// every client was already detached in Run, so the call returns instead of
// blocking on a loop that no longer drains the queue.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Message is the JSON frame sent to WebSocket clients.
type Message struct {
	Feed      string    `json:"feed"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Client is one WebSocket connection attached to a single feed.
type Client struct {
	id       string
	feed     string
	hub      *Hub
	conn     *websocket.Conn
	send     chan Message
	done     chan struct{}
	dropOnce sync.Once
}

// NewClient wraps an upgraded connection for the named feed.
func NewClient(id, feed string, hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   id,
		feed: feed,
		hub:  hub,
		conn: conn,
		send: make(chan Message, constants.ClientEventBuffer),
		done: make(chan struct{}),
	}
}

// enqueue is the client's relay handler. It runs on the feed's publish
// goroutine, so it must never block: a client whose buffer is full is
// dropped rather than allowed to stall the feed.
func (c *Client) enqueue(sender, payload any) {
	msg := Message{
		Feed:      c.feed,
		Type:      "event",
		Timestamp: time.Now().UTC(),
		Data:      payload,
	}
	if name, ok := sender.(string); ok && name != "" {
		msg.Feed = name
	}

	select {
	case c.send <- msg:
	default:
		c.hub.logger.Warn().
			Str("client_id", c.id).
			Str("feed", c.feed).
			Msg("WebSocket client too slow, dropping")
		c.drop()
	}
}

// drop schedules the client for unregistration without blocking the
// caller. Safe to call more than once.
func (c *Client) drop() {
	c.dropOnce.Do(func() {
		go c.hub.Unregister(c)
	})
}

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// ReadPump pumps control messages from the WebSocket connection and
// unregisters the client when the peer goes away.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Error().Err(err).Str("client_id", c.id).Msg("WebSocket read error")
			}
			break
		}
	}
}

// WritePump pumps queued feed events to the WebSocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			data, err := json.Marshal(message)
			if err != nil {
				c.hub.logger.Error().Err(err).Msg("Failed to marshal WebSocket message")
				continue
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
