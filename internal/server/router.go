package server

import (
	"net/http"
	"strings"

	"github.com/agentstation/relay/internal/server/handlers"
	"github.com/agentstation/relay/internal/server/middleware"
	"github.com/agentstation/relay/internal/server/response"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	// Create handlers instance
	h := handlers.New(
		s.bridge,
		s.wsHub,
		s.sseBroadcaster,
		s.upgrader,
		s.startTime,
	)

	// Register routes
	s.registerRoutes(mux, h)

	// Apply middleware chain
	return s.applyMiddleware(mux)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	prefix := s.config.PathPrefix

	// Favicon handler (return 204 No Content to avoid 404 logs)
	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Health endpoints
	mux.HandleFunc("/health", h.HandleHealth)
	mux.HandleFunc(prefix+"/health", h.HandleHealth)
	mux.HandleFunc(prefix+"/ready", h.HandleReady)

	// Feeds listing
	mux.HandleFunc(prefix+"/feeds", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			response.MethodNotAllowed(w, r.Method)
			return
		}
		h.HandleListFeeds(w, r)
	})

	// Per-feed endpoints: detail, WebSocket, SSE stream
	mux.HandleFunc(prefix+"/feeds/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			response.MethodNotAllowed(w, r.Method)
			return
		}

		parts := splitPath(strings.TrimPrefix(r.URL.Path, prefix+"/feeds/"))
		switch {
		case len(parts) == 1:
			h.HandleGetFeed(w, r, parts[0])
		case len(parts) == 2 && parts[1] == "ws":
			h.HandleWebSocket(w, r, parts[0])
		case len(parts) == 2 && parts[1] == "stream":
			h.HandleSSE(w, r, parts[0])
		default:
			response.NotFound(w, "Not found", "")
		}
	})
}

// applyMiddleware wraps handler with middleware chain.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	cfg := s.config

	// CORS (if enabled)
	if cfg.CORSEnabled {
		corsConfig := middleware.DefaultCORSConfig()
		if len(cfg.CORSOrigins) > 0 {
			corsConfig.AllowedOrigins = cfg.CORSOrigins
			corsConfig.AllowAll = false
		} else {
			corsConfig.AllowAll = true
		}
		handler = middleware.CORS(corsConfig)(handler)
	}

	// Logging and recovery (always enabled)
	handler = middleware.Logger(s.logger)(handler)
	handler = middleware.Recovery(s.logger)(handler)

	return handler
}

// splitPath splits a URL path into parts, removing empty strings.
func splitPath(path string) []string {
	parts := []string{}
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
