// Package handlers provides HTTP request handlers for the relay API.
package handlers

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/agentstation/relay/internal/bridge"
	"github.com/agentstation/relay/internal/server/sse"
	ws "github.com/agentstation/relay/internal/server/websocket"
)

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	bridge         *bridge.Bridge
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	upgrader       websocket.Upgrader
	startTime      time.Time
}

// New creates a new Handlers instance.
func New(
	b *bridge.Bridge,
	wsHub *ws.Hub,
	sseBroadcaster *sse.Broadcaster,
	upgrader websocket.Upgrader,
	startTime time.Time,
) *Handlers {
	return &Handlers{
		bridge:         b,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		upgrader:       upgrader,
		startTime:      startTime,
	}
}
