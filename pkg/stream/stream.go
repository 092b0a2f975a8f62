// Package stream defines the push-based event stream contract consumed by the
// relay core.
//
// A Stream delivers a sequence of sender/payload pairs to each subscribed
// Observer, optionally ending with a single terminal signal (completion or
// error). Subscribing yields a Resource that owns the subscription; disposing
// the Resource detaches the observer and halts further delivery.
//
// Delivery may be synchronous: a Stream is allowed to push events, and even
// the terminal signal, from inside the Subscribe call itself, before the
// Resource handle has been returned to the subscriber. Consumers that hold
// the Resource for later cleanup must tolerate that ordering (the relay
// package exists to resolve exactly this race).
package stream

// Event is one occurrence pushed through a stream: the sender that raised it
// paired with its payload.
type Event struct {
	// Sender identifies the origin of the event.
	Sender any

	// Payload carries the event data.
	Payload any
}

// Observer receives stream notifications.
//
// OnNext may be called any number of times. After OnError or OnCompleted has
// been called, no further notifications are delivered to the observer.
type Observer interface {
	// OnNext delivers the next event.
	OnNext(Event)

	// OnError signals that the stream terminated with an error.
	OnError(error)

	// OnCompleted signals that the stream terminated normally.
	OnCompleted()
}

// Stream is a push-based source of events.
type Stream interface {
	// Subscribe attaches o to the stream and returns the Resource owning the
	// subscription. The stream may deliver events, and at most one terminal
	// signal, synchronously before Subscribe returns.
	Subscribe(o Observer) Resource
}

// Resource is an opaque disposable handle on one live subscription.
// Disposing it detaches the subscription; callers are expected to dispose
// each Resource at most once.
type Resource interface {
	Dispose()
}
