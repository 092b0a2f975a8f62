package handlers

import (
	"net/http"

	"github.com/agentstation/relay/internal/feed"
	"github.com/agentstation/relay/internal/server/response"
)

// feedSummary is the JSON shape of one feed in API responses.
type feedSummary struct {
	Name        string `json:"name"`
	Interval    string `json:"interval"`
	Label       string `json:"label,omitempty"`
	Events      uint64 `json:"events"`
	Attachments int    `json:"attachments"`
}

func (h *Handlers) summarize(f *feed.Feed) feedSummary {
	summary := feedSummary{
		Name:     f.Name(),
		Interval: f.Every().String(),
		Label:    f.Label(),
		Events:   f.Sequence(),
	}
	if rel, ok := h.bridge.Relay(f.Name()); ok {
		summary.Attachments = rel.Size()
	}
	return summary
}

// HandleListFeeds handles GET /api/v1/feeds. It lists every configured
// feed with its live event and attachment counters.
func (h *Handlers) HandleListFeeds(w http.ResponseWriter, _ *http.Request) {
	all := h.bridge.Feeds().All()
	feeds := make([]feedSummary, 0, len(all))
	for _, f := range all {
		feeds = append(feeds, h.summarize(f))
	}

	response.OK(w, map[string]any{
		"feeds": feeds,
		"count": len(feeds),
	})
}

// HandleGetFeed handles GET /api/v1/feeds/{name}.
func (h *Handlers) HandleGetFeed(w http.ResponseWriter, _ *http.Request, name string) {
	f, err := h.bridge.Feeds().Lookup(name)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, h.summarize(f))
}
