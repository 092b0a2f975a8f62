package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/agentstation/relay/internal/server/response"
	ws "github.com/agentstation/relay/internal/server/websocket"
	"github.com/agentstation/relay/pkg/logging"
)

// HandleWebSocket handles GET /api/v1/feeds/{name}/ws. It upgrades the
// connection and hands it to the hub, which attaches it to the feed's
// relay for the lifetime of the socket.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request, feed string) {
	if _, err := h.bridge.Feeds().Lookup(feed); err != nil {
		response.ErrorFromType(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("feed", feed).Msg("WebSocket upgrade failed")
		return
	}

	clientID := fmt.Sprintf("%s-%d", r.RemoteAddr, time.Now().UnixNano())
	client := ws.NewClient(clientID, feed, h.wsHub, conn)
	h.wsHub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

// HandleSSE handles GET /api/v1/feeds/{name}/stream, serving the feed as
// a Server-Sent Events stream.
func (h *Handlers) HandleSSE(w http.ResponseWriter, r *http.Request, feed string) {
	h.sseBroadcaster.ServeFeed(w, r, feed)
}
