// Package relay bridges push-based event streams to a classic
// handler-registration API. Callers attach and detach opaque handler
// identities; the relay owns the underlying stream subscription for each
// attachment and tears it down on detach or on stream termination.
//
// A handler identity may be attached more than once, and each attachment is
// independently detachable in last-attached-first-detached order. The stream
// may deliver values, or even terminate, synchronously inside Subscribe,
// before the subscription resource is known; the relay resolves that race so
// that every resource it owns is disposed exactly once and none leak.
//
// Example usage:
//
//	subject := stream.NewSubject()
//	r, err := relay.New(subject)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Attach a handler identity to the stream
//	err = r.Add("metrics", func(sender, payload any) {
//	    fmt.Printf("event from %v: %v\n", sender, payload)
//	})
//
//	// Values published to the subject now reach the handler
//	subject.Next(stream.Event{Sender: "feed", Payload: 42})
//
//	// Detach the most recent attachment for the identity
//	err = r.Remove("metrics")
package relay

import (
	"github.com/agentstation/relay/pkg/errors"
	"github.com/agentstation/relay/pkg/stream"
)

// Key identifies a handler attachment. Keys are compared by Go equality, so
// a key's dynamic type must be comparable (strings, ints, pointers, and
// comparable structs all work). The relay does not interpret keys beyond
// identity comparison; the caller retains the key to later request removal.
type Key = any

// InvokeFunc delivers one stream event to a handler. It receives the event's
// sender and payload and is called on whatever goroutine delivered the event.
// The relay does not catch panics raised by the invocation.
type InvokeFunc func(sender, payload any)

// FaultHandler receives errors delivered by the stream. It runs after registry
// bookkeeping for the erroring attachment has completed, on the goroutine that
// delivered the error. The default handler panics with the original error.
type FaultHandler func(error)

// Compile-time interface check to ensure proper implementation.
var _ Relay = (*relay)(nil)

// Relay bridges one event stream to handler add/remove registration.
type Relay interface {

	// Add attaches key to the stream. The invoke function is called once per
	// value the stream delivers, for each live attachment of key.
	Add(key Key, invoke InvokeFunc) error

	// Remove detaches the most recently attached live attachment for key and
	// disposes its subscription resource. Removing a key with no live
	// attachments is a no-op.
	Remove(key Key) error

	// Attachments reports the number of live attachments for key.
	Attachments(key Key) int

	// Size reports the total number of live attachments across all keys.
	Size() int
}

// relay is the internal implementation of the Relay interface.
type relay struct {

	// options are the configured options for the relay
	options *options

	// source is the stream every attachment observes
	source stream.Stream

	// registry tracks the subscription resources owned per handler key
	registry *registry
}

// New creates a new Relay bridging the given source stream.
func New(source stream.Stream, opts ...Option) (Relay, error) {
	if source == nil {
		return nil, errors.NewInvalidArgumentError("source", "must not be nil")
	}

	return &relay{
		options:  defaults().apply(opts...),
		source:   source,
		registry: newRegistry(),
	}, nil
}

// Add attaches key to the stream.
//
// Subscribing happens first and resource resolution second, so the stream is
// free to deliver values, or even a terminal signal, synchronously inside
// Subscribe before the resource handle exists. The attachment records which
// side of that race happened and either registers the resource or drops it.
func (r *relay) Add(key Key, invoke InvokeFunc) error {
	if key == nil {
		return errors.NewInvalidArgumentError("key", "must not be nil")
	}
	if invoke == nil {
		return errors.NewInvalidArgumentError("invoke", "must not be nil")
	}

	att := &attachment{relay: r, key: key, invoke: invoke}
	res := r.source.Subscribe(att)
	att.setResource(res)

	r.options.logger.Debug().
		Interface("key", key).
		Int("attachments", r.registry.count(key)).
		Msg("Handler attached")
	return nil
}

// Remove detaches the most recently attached live attachment for key.
//
// Both explicit removal and stream-driven terminal cleanup pop from the same
// registry, so whichever arrives first wins the resource and the later one
// observes nothing. Disposal happens after the registry lock is released.
func (r *relay) Remove(key Key) error {
	if key == nil {
		return errors.NewInvalidArgumentError("key", "must not be nil")
	}

	res, ok := r.registry.removeOne(key)
	if !ok {
		return nil
	}
	res.Dispose()

	r.options.logger.Debug().
		Interface("key", key).
		Int("attachments", r.registry.count(key)).
		Msg("Handler detached")
	return nil
}

// Attachments reports the number of live attachments for key.
func (r *relay) Attachments(key Key) int {
	return r.registry.count(key)
}

// Size reports the total number of live attachments across all keys.
func (r *relay) Size() int {
	return r.registry.size()
}
