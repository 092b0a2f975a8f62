// Package bridge wires feed streams into relays so that transports can
// attach and detach per-connection handlers by feed name.
package bridge

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/relay"
	"github.com/agentstation/relay/internal/feed"
	"github.com/agentstation/relay/pkg/errors"
)

// Bridge owns one relay per feed. Each feed publishes through its subject
// into its relay; transports resolve a feed's relay by name and register
// handlers on it for the lifetime of a client connection.
type Bridge struct {
	feeds  *feed.Set
	relays map[string]relay.Relay
}

// New builds a relay for every feed in the set. When logger is non-nil,
// each relay gets it plus a fault handler that logs stream faults as
// errors instead of panicking the publishing goroutine. Callers may still
// override either through opts.
func New(set *feed.Set, logger *zerolog.Logger, opts ...relay.Option) (*Bridge, error) {
	if set == nil {
		return nil, errors.NewInvalidArgumentError("set", "cannot be nil")
	}

	relays := make(map[string]relay.Relay, len(set.Names()))
	for _, f := range set.All() {
		feedOpts := opts
		if logger != nil {
			name := f.Name()
			feedOpts = append([]relay.Option{
				relay.WithLogger(logger),
				relay.WithFaultHandler(func(err error) {
					fault := errors.NewStreamFaultError(name, err)
					logger.Error().Err(fault).Str("feed", name).Msg("Unhandled stream fault")
				}),
			}, opts...)
		}

		rel, err := relay.New(f.Subject(), feedOpts...)
		if err != nil {
			return nil, err
		}
		relays[f.Name()] = rel
	}

	return &Bridge{
		feeds:  set,
		relays: relays,
	}, nil
}

// Relay returns the relay serving the named feed.
func (b *Bridge) Relay(name string) (relay.Relay, bool) {
	rel, ok := b.relays[name]
	return rel, ok
}

// Feeds returns the underlying feed set.
func (b *Bridge) Feeds() *feed.Set {
	return b.feeds
}

// Attachments reports the live handler count for each feed.
func (b *Bridge) Attachments() map[string]int {
	counts := make(map[string]int, len(b.relays))
	for name, rel := range b.relays {
		counts[name] = rel.Size()
	}
	return counts
}

// Size reports the total number of live attachments across all feeds.
func (b *Bridge) Size() int {
	total := 0
	for _, rel := range b.relays {
		total += rel.Size()
	}
	return total
}

// Run publishes every feed until ctx is cancelled, then completes their
// streams. Completion detaches any handlers still registered, so Size
// drains to zero once Run returns.
func (b *Bridge) Run(ctx context.Context) {
	b.feeds.Run(ctx)
}
