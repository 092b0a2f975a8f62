package handlers

import (
	"net/http"
	"time"

	"github.com/agentstation/relay/internal/server/response"
)

// HandleHealth handles GET /health and GET /api/v1/health. It is the
// liveness probe and carries a small activity summary.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":      "healthy",
		"service":     "relay-api",
		"version":     "v1",
		"uptime":      time.Since(h.startTime).Round(time.Second).String(),
		"feeds":       len(h.bridge.Feeds().Names()),
		"attachments": h.bridge.Size(),
	})
}

// HandleReady handles GET /api/v1/ready. Readiness reports live handler
// counts per feed plus per-transport client totals.
func (h *Handlers) HandleReady(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":            "ready",
		"feeds":             h.bridge.Attachments(),
		"websocket_clients": h.wsHub.ClientCount(),
		"sse_clients":       h.sseBroadcaster.ClientCount(),
	})
}
