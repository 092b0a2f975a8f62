// Package server provides the HTTP server for the relay API. It exposes
// configured feeds over WebSocket and Server-Sent Events, with each
// connected client held as one handler attachment on its feed's relay.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/relay/internal/bridge"
	"github.com/agentstation/relay/internal/server/sse"
	ws "github.com/agentstation/relay/internal/server/websocket"
	"github.com/agentstation/relay/pkg/errors"
	"github.com/agentstation/relay/pkg/logging"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	bridge         *bridge.Bridge
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	upgrader       websocket.Upgrader
	logger         *zerolog.Logger
	config         Config
	ctx            context.Context
	cancel         context.CancelFunc
	startTime      time.Time
}

// New creates a new server instance over the given bridge.
func New(b *bridge.Bridge, cfg Config, logger *zerolog.Logger) (*Server, error) {
	if b == nil {
		return nil, errors.NewInvalidArgumentError("bridge", "cannot be nil")
	}
	if logger == nil {
		return nil, errors.NewInvalidArgumentError("logger", "cannot be nil")
	}

	logger.Debug().Msg("Creating new server instance")

	wsHub := ws.NewHub(b, logger)
	sseBroadcaster := sse.NewBroadcaster(b, logger)

	// Context for managing background services. It carries the server's
	// logger so the feeds log through it.
	ctx, cancel := context.WithCancel(logging.WithLogger(context.Background(), logger))

	return &Server{
		bridge:         b,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true // Allow all origins for WebSocket
			},
		},
		logger:    logger,
		config:    cfg,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}, nil
}

// Start launches the feeds and transport loops.
func (s *Server) Start() {
	s.logger.Debug().Msg("Starting background services")

	go s.bridge.Run(logging.WithComponent(s.ctx, "feeds"))
	go s.wsHub.Run(s.ctx)
	go s.sseBroadcaster.Run(s.ctx)

	s.logger.Info().
		Strs("feeds", s.bridge.Feeds().Names()).
		Msg("Feeds publishing")
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// Shutdown stops the feeds and waits for every attachment to be
// released. Cancelling the run context completes each feed's stream,
// which detaches all remaining handlers, so the attachment count must
// drain to zero.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down server background services")

	s.cancel()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		if s.bridge.Size() == 0 {
			s.logger.Info().Msg("All feed attachments released")
			return nil
		}
		select {
		case <-ctx.Done():
			s.logger.Warn().
				Int("attachments", s.bridge.Size()).
				Msg("Shutdown timed out with live attachments")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Bridge returns the feed bridge.
func (s *Server) Bridge() *bridge.Bridge {
	return s.bridge
}

// WSHub returns the WebSocket hub.
func (s *Server) WSHub() *ws.Hub {
	return s.wsHub
}

// SSEBroadcaster returns the SSE broadcaster.
func (s *Server) SSEBroadcaster() *sse.Broadcaster {
	return s.sseBroadcaster
}

// StartTime returns the server start time for uptime calculations.
func (s *Server) StartTime() time.Time {
	return s.startTime
}
