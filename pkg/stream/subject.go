package stream

import "sync"

// Subject is a hot, thread-safe stream that is driven manually through Next,
// Error, and Complete. Every event is fanned out to all observers subscribed
// at the time of delivery.
//
// Once terminated, a Subject stays terminated: later Next calls are dropped,
// and later Subscribe calls deliver the terminal signal synchronously inside
// Subscribe and return a no-op Resource.
type Subject struct {
	mu    sync.Mutex
	sinks []*sink
	done  bool
	err   error
}

// sink is one live subscription slot. Slots are tracked by pointer identity
// so the same Observer value may be subscribed more than once.
type sink struct {
	obs Observer
}

// NewSubject creates an empty, live Subject.
func NewSubject() *Subject {
	return &Subject{}
}

// Subscribe implements Stream.
//
// Subscribing to a terminated Subject invokes the observer's terminal
// callback before Subscribe returns, so callers see the subscription end
// before they ever hold its Resource.
func (s *Subject) Subscribe(o Observer) Resource {
	s.mu.Lock()
	if s.done {
		err := s.err
		s.mu.Unlock()
		if err != nil {
			o.OnError(err)
		} else {
			o.OnCompleted()
		}
		return Nop()
	}
	sk := &sink{obs: o}
	s.sinks = append(s.sinks, sk)
	s.mu.Unlock()

	return DisposeFunc(func() {
		s.unsubscribe(sk)
	})
}

// Next pushes an event to all current observers. Events pushed after
// termination are dropped.
func (s *Subject) Next(e Event) {
	s.mu.Lock()
	sinks := make([]*sink, len(s.sinks))
	copy(sinks, s.sinks)
	s.mu.Unlock()

	// Deliver outside the lock so observers may subscribe, dispose, or push
	// further events without deadlocking against the Subject.
	for _, sk := range sinks {
		sk.obs.OnNext(e)
	}
}

// Error terminates the Subject with err and notifies all observers.
// Subsequent terminal calls are no-ops.
func (s *Subject) Error(err error) {
	if err == nil {
		return
	}
	for _, sk := range s.terminate(err) {
		sk.obs.OnError(err)
	}
}

// Complete terminates the Subject normally and notifies all observers.
// Subsequent terminal calls are no-ops.
func (s *Subject) Complete() {
	for _, sk := range s.terminate(nil) {
		sk.obs.OnCompleted()
	}
}

// Observers returns the number of currently subscribed observers.
func (s *Subject) Observers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sinks)
}

// terminate marks the Subject done and detaches every sink, returning the
// detached set for out-of-lock terminal delivery.
func (s *Subject) terminate(err error) []*sink {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return nil
	}
	s.done = true
	s.err = err

	sinks := s.sinks
	s.sinks = nil
	return sinks
}

// unsubscribe detaches a single subscription slot. Detaching a slot that is
// no longer subscribed is a no-op.
func (s *Subject) unsubscribe(sk *sink) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.sinks {
		if existing == sk {
			s.sinks = append(s.sinks[:i], s.sinks[i+1:]...)
			return
		}
	}
}
