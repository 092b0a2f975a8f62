package feed

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/agentstation/relay/pkg/logging"
	"github.com/agentstation/relay/pkg/stream"
)

// Payload is the value pushed on every feed tick.
type Payload struct {
	Seq     uint64    `json:"seq"`
	Emitted time.Time `json:"emitted"`
	Label   string    `json:"label,omitempty"`
}

// Feed owns one hot subject and publishes a numbered event per tick.
type Feed struct {
	def     Definition
	every   time.Duration
	subject *stream.Subject
	seq     atomic.Uint64
}

// New creates a feed from a validated definition.
func New(def Definition) (*Feed, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &Feed{
		def:     def,
		every:   def.Every(),
		subject: stream.NewSubject(),
	}, nil
}

// Every returns the publish interval.
func (f *Feed) Every() time.Duration {
	return f.every
}

// Label returns the fixed label carried on every event, if any.
func (f *Feed) Label() string {
	return f.def.Payload
}

// Name returns the feed name.
func (f *Feed) Name() string {
	return f.def.Name
}

// Subject returns the stream this feed publishes to.
func (f *Feed) Subject() *stream.Subject {
	return f.subject
}

// Sequence returns the number of events published so far.
func (f *Feed) Sequence() uint64 {
	return f.seq.Load()
}

// Run publishes until ctx is canceled, then completes the subject. The
// completion is what detaches this feed's handlers: it drives every live
// attachment through its terminal path, disposing each owned subscription.
func (f *Feed) Run(ctx context.Context) {
	logger := logging.FromContext(ctx).With().Str("feed", f.def.Name).Logger()
	logger.Info().Dur("interval", f.every).Msg("Feed started")

	ticker := time.NewTicker(f.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			f.subject.Complete()
			logger.Info().Uint64("events", f.seq.Load()).Msg("Feed completed")
			return
		case now := <-ticker.C:
			f.publish(now)
		}
	}
}

// publish pushes one numbered event to the subject.
func (f *Feed) publish(now time.Time) {
	f.subject.Next(stream.Event{
		Sender: f.def.Name,
		Payload: Payload{
			Seq:     f.seq.Add(1),
			Emitted: now.UTC(),
			Label:   f.def.Payload,
		},
	})
}
