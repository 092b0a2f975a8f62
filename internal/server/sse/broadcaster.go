// Package sse streams feed events to clients over Server-Sent Events.
// Each connection holds one attachment on its feed's relay for as long as
// the request lives.
package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/relay"
	"github.com/agentstation/relay/pkg/constants"
	"github.com/agentstation/relay/pkg/logging"
)

// Registrar resolves the relay that serves a named feed.
type Registrar interface {
	Relay(feed string) (relay.Relay, bool)
}

// Broadcaster serves per-feed SSE streams.
type Broadcaster struct {
	registrar Registrar
	logger    *zerolog.Logger
	done      chan struct{}
	stop      sync.Once
	mu        sync.RWMutex
	clients   int
}

// NewBroadcaster creates a broadcaster that attaches connections through reg.
func NewBroadcaster(reg Registrar, logger *zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		registrar: reg,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Run blocks until ctx is cancelled, then releases every connected client.
// Should be called in a goroutine.
func (b *Broadcaster) Run(ctx context.Context) {
	<-ctx.Done()
	b.stop.Do(func() {
		close(b.done)
		b.logger.Info().Msg("SSE broadcaster shut down")
	})
}

// ClientCount returns the number of connected SSE clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.clients
}

// ServeFeed streams the named feed to one client. The connection's event
// channel doubles as its handler key on the feed's relay; the attachment
// is released when the client disconnects or the broadcaster shuts down.
func (b *Broadcaster) ServeFeed(w http.ResponseWriter, r *http.Request, feed string) {
	rel, ok := b.registrar.Relay(feed)
	if !ok {
		http.NotFound(w, r)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	ctx := logging.WithFeed(r.Context(), feed)
	log := logging.Ctx(ctx)

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	events := make(chan Event, constants.ClientEventBuffer)

	// The handler runs on the feed's publish goroutine and must not
	// block; a client whose buffer is full misses events instead.
	err := rel.Add(events, func(sender, payload any) {
		select {
		case events <- Event{Event: "event", Data: payload}:
		default:
			log.Warn().Msg("SSE client buffer full, event skipped")
		}
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to attach SSE client")
		http.Error(w, "Failed to attach to feed", http.StatusInternalServerError)
		return
	}
	defer func() {
		_ = rel.Remove(events)
	}()

	b.connected(feed)
	defer b.disconnected(feed)

	b.writeEvent(w, flusher, Event{
		Event: "connected",
		Data: map[string]any{
			"feed":      feed,
			"timestamp": time.Now().UTC(),
		},
	})

	var id uint64
	for {
		select {
		case event := <-events:
			id++
			event.ID = strconv.FormatUint(id, 10)
			b.writeEvent(w, flusher, event)

		case <-ctx.Done():
			return

		case <-b.done:
			return
		}
	}
}

func (b *Broadcaster) connected(feed string) {
	b.mu.Lock()
	b.clients++
	total := b.clients
	b.mu.Unlock()
	b.logger.Info().
		Str("feed", feed).
		Int("total_clients", total).
		Msg("SSE client connected")
}

func (b *Broadcaster) disconnected(feed string) {
	b.mu.Lock()
	b.clients--
	total := b.clients
	b.mu.Unlock()
	b.logger.Info().
		Str("feed", feed).
		Int("total_clients", total).
		Msg("SSE client disconnected")
}

// writeEvent writes an SSE event to the response writer.
func (b *Broadcaster) writeEvent(w http.ResponseWriter, flusher http.Flusher, event Event) {
	// Write event type if specified
	if event.Event != "" {
		_, _ = fmt.Fprintf(w, "event: %s\n", event.Event)
	}

	// Write event ID if specified
	if event.ID != "" {
		_, _ = fmt.Fprintf(w, "id: %s\n", event.ID)
	}

	// Write data as JSON
	data, err := json.Marshal(event.Data)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to marshal SSE event data")
		return
	}
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)

	// Flush the response
	flusher.Flush()
}

// Event represents an SSE event.
type Event struct {
	Event string `json:"event,omitempty"` // Event type (optional)
	ID    string `json:"id,omitempty"`    // Event ID (optional)
	Data  any    `json:"data"`            // Event data
}
